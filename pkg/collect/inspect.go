package collect

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/types"
)

// InspectCollector builds the image metadata snapshot from
// 'docker|podman inspect' (size, healthcheck, user) and
// 'docker|podman history' (ordered layers with originating commands).
type InspectCollector struct {
	binary string
}

// Name returns the display name for this collector.
func (c *InspectCollector) Name() string {
	if c.binary != "" {
		return c.binary
	}
	return "runtime"
}

// IsAvailable checks whether a container runtime (docker or podman) is installed.
func (c *InspectCollector) IsAvailable() bool {
	binary, err := runtimeBinary()
	if err != nil {
		return false
	}
	c.binary = binary
	return true
}

// Collect inspects the image and assembles the metadata snapshot.
func (c *InspectCollector) Collect(ctx context.Context, image string, verbose bool) (*Result, error) {
	if c.binary == "" {
		if !c.IsAvailable() {
			return nil, fmt.Errorf("no container runtime found (docker or podman)")
		}
	}

	inspectCtx, cancel := context.WithTimeout(ctx, TimeoutInspect)
	defer cancel()
	inspectOut, err := runCommand(exec.CommandContext(inspectCtx, c.binary, "inspect", "--type=image", image), verbose)
	if err != nil {
		return nil, err
	}

	historyCtx, cancel := context.WithTimeout(ctx, TimeoutInspect)
	defer cancel()
	historyOut, err := runCommand(exec.CommandContext(historyCtx,
		c.binary, "history", "--no-trunc", "--format", "{{json .}}", image), verbose)
	if err != nil {
		return nil, err
	}

	meta, err := parseInspectOutput(inspectOut, image, c.binary)
	if err != nil {
		return nil, err
	}
	layers, err := parseHistoryOutput(historyOut)
	if err != nil {
		return nil, err
	}
	meta.Layers = layers

	// Layer-text heuristics first, then the inspect config as an
	// authoritative positive signal for healthcheck and user.
	meta.Features = grade.DetectFeatures(layers).Merge(configFeatures(inspectOut))

	return &Result{Metadata: meta}, nil
}

// inspectEntry is the subset of the runtime inspect document we read.
type inspectEntry struct {
	Size   int64 `json:"Size"`
	Config struct {
		User        string `json:"User"`
		Healthcheck *struct {
			Test []string `json:"Test"`
		} `json:"Healthcheck"`
	} `json:"Config"`
}

func parseInspect(output []byte, image, binary string) (*inspectEntry, error) {
	var entries []inspectEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s inspect output: %w", binary, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no inspect data returned for image %s", image)
	}
	return &entries[0], nil
}

// parseInspectOutput extracts image size from the inspect document.
func parseInspectOutput(output []byte, image, binary string) (*types.ImageMetadata, error) {
	entry, err := parseInspect(output, image, binary)
	if err != nil {
		return nil, err
	}
	if entry.Size < 0 {
		return nil, fmt.Errorf("negative image size reported for %s", image)
	}
	return &types.ImageMetadata{
		Image:     image,
		SizeBytes: entry.Size,
	}, nil
}

// configFeatures reads the authoritative practice signals straight from the
// image config: a non-null healthcheck (other than NONE) and a non-root USER.
func configFeatures(inspectOutput []byte) types.Features {
	var f types.Features
	entry, err := parseInspect(inspectOutput, "", "")
	if err != nil {
		return f
	}

	hc := entry.Config.Healthcheck
	if hc != nil && !(len(hc.Test) == 1 && hc.Test[0] == "NONE") {
		f.HealthCheck = true
	}

	user := entry.Config.User
	if cut := strings.IndexByte(user, ':'); cut >= 0 {
		user = user[:cut]
	}
	if user != "" && user != "root" && user != "0" {
		f.NonRootUser = true
	}
	return f
}

// historyEntry is one line of 'history --format {{json .}}'. Size arrives
// as a human-readable string and must parse cleanly; a malformed size is an
// error rather than a silent zero.
type historyEntry struct {
	CreatedBy string `json:"CreatedBy"`
	Size      string `json:"Size"`
}

// parseHistoryOutput parses the newline-delimited JSON history into layers
// ordered earliest-first (the runtime prints newest first).
func parseHistoryOutput(output []byte) ([]types.Layer, error) {
	var layers []types.Layer

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry historyEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history line: %w", err)
		}
		size, err := types.ParseSize(entry.Size)
		if err != nil {
			return nil, fmt.Errorf("layer size: %w", err)
		}
		layers = append(layers, types.Layer{
			SizeBytes: size,
			Command:   entry.CreatedBy,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history output: %w", err)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("no history data returned")
	}

	// Reverse into build order, earliest instruction first.
	for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
		layers[i], layers[j] = layers[j], layers[i]
	}
	return layers, nil
}
