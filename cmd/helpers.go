package cmd

import (
	"fmt"
	"os/exec"
	"strings"
)

// checkToolStatus returns a string indicating the status of required tools.
func checkToolStatus() string {
	var status strings.Builder
	status.WriteString("\nPrerequisites:\n")

	if _, err := exec.LookPath("docker"); err == nil {
		status.WriteString("  [OK] docker\n")
	} else if _, err := exec.LookPath("podman"); err == nil {
		status.WriteString("  [OK] podman\n")
	} else {
		status.WriteString("  [MISSING] docker or podman (required for image inspection)\n")
	}

	if path, err := exec.LookPath("trivy"); err == nil {
		fmt.Fprintf(&status, "  [OK] trivy (%s)\n", path)
	} else {
		status.WriteString("  [MISSING] trivy (required for vulnerability scanning; use --skip-scan without it)\n")
	}
	return status.String()
}
