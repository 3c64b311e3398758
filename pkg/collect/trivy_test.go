package collect

import (
	"testing"

	"github.com/dockgrade/dockgrade/pkg/types"
)

const trivyFixture = `{
  "CreatedAt": "2026-08-20T10:30:00Z",
  "Results": [
    {
      "Target": "app:latest (debian 12.5)",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2024-0001",
          "PkgName": "openssl",
          "InstalledVersion": "3.0.11",
          "FixedVersion": "3.0.13",
          "Severity": "CRITICAL",
          "Title": "openssl: something bad"
        },
        {
          "VulnerabilityID": "CVE-2024-0002",
          "PkgName": "libc6",
          "InstalledVersion": "2.36-9",
          "Severity": "HIGH"
        }
      ]
    },
    {
      "Target": "usr/local/bin/app",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2024-0003",
          "PkgName": "golang.org/x/net",
          "InstalledVersion": "0.17.0",
          "FixedVersion": "0.23.0",
          "Severity": "MEDIUM"
        }
      ]
    }
  ]
}`

func TestParseTrivyOutput(t *testing.T) {
	report, err := parseTrivyOutput([]byte(trivyFixture), "app:latest")
	if err != nil {
		t.Fatalf("parseTrivyOutput() error = %v", err)
	}

	if report.Image != "app:latest" {
		t.Errorf("Image = %q, want app:latest", report.Image)
	}
	if len(report.Vulnerabilities) != 3 {
		t.Fatalf("got %d vulnerabilities, want 3", len(report.Vulnerabilities))
	}

	// Scanner order is preserved across targets.
	first := report.Vulnerabilities[0]
	if first.ID != "CVE-2024-0001" || first.Severity != types.SeverityCritical || first.Package != "openssl" {
		t.Errorf("unexpected first vulnerability: %+v", first)
	}
	if report.Vulnerabilities[1].FixedVersion != "" {
		t.Error("missing FixedVersion should stay empty")
	}
	if report.Vulnerabilities[2].ID != "CVE-2024-0003" {
		t.Errorf("last vulnerability = %s, want CVE-2024-0003", report.Vulnerabilities[2].ID)
	}
	if report.ScannedAt.IsZero() {
		t.Error("ScannedAt should be taken from the report timestamp")
	}
}

func TestParseTrivyOutput_CleanScan(t *testing.T) {
	clean := `{"CreatedAt": "2026-08-20T10:30:00Z", "Results": []}`
	report, err := parseTrivyOutput([]byte(clean), "app:latest")
	if err != nil {
		t.Fatalf("parseTrivyOutput() error = %v", err)
	}
	// A verified clean scan yields a present report with zero entries,
	// distinct from a missing report.
	if report == nil {
		t.Fatal("expected non-nil report for a clean scan")
	}
	if len(report.Vulnerabilities) != 0 {
		t.Errorf("got %d vulnerabilities, want 0", len(report.Vulnerabilities))
	}
}

func TestParseTrivyOutput_Errors(t *testing.T) {
	if _, err := parseTrivyOutput([]byte("not json"), "app"); err == nil {
		t.Error("expected error for malformed JSON")
	}
	// A report with no results section is insufficient data, not a
	// clean scan.
	if _, err := parseTrivyOutput([]byte(`{"CreatedAt": "2026-08-20T10:30:00Z"}`), "app"); err == nil {
		t.Error("expected error for missing results section")
	}
	if _, err := parseTrivyOutput([]byte(`{"Results": null}`), "app"); err == nil {
		t.Error("expected error for null results section")
	}
}
