package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Command timeouts. Scans can trigger a vulnerability database download on
// first run, so they get far more headroom than a local inspect.
const (
	TimeoutInspect = 30 * time.Second
	TimeoutScan    = 10 * time.Minute
	TimeoutPull    = 15 * time.Minute
	TimeoutBuild   = 30 * time.Minute
)

// runCommand executes a command, capturing stdout as data and surfacing
// stderr from failed runs in the error.
func runCommand(cmd *exec.Cmd, verbose bool) ([]byte, error) {
	if verbose {
		slog.Debug("running command", "cmd", cmd.String())
	}

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("command failed: %w\nstderr: %s", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("command failed: %w", err)
	}

	if verbose {
		slog.Debug("command output", "bytes", len(output))
	}
	return output, nil
}

// runtimeBinary resolves the container runtime, preferring docker and
// falling back to podman.
func runtimeBinary() (string, error) {
	if _, err := exec.LookPath("docker"); err == nil {
		return "docker", nil
	}
	if _, err := exec.LookPath("podman"); err == nil {
		return "podman", nil
	}
	return "", fmt.Errorf("no container runtime found (docker or podman)")
}

// EnsureImage checks that an image exists locally and pulls it if not.
func EnsureImage(ctx context.Context, image string, verbose bool) error {
	binary, err := runtimeBinary()
	if err != nil {
		return err
	}

	checkCtx, cancel := context.WithTimeout(ctx, TimeoutInspect)
	defer cancel()
	if err := exec.CommandContext(checkCtx, binary, "image", "inspect", image).Run(); err == nil {
		if verbose {
			slog.Debug("image found locally", "image", image)
		}
		return nil
	}

	slog.Info("pulling image", "image", image)
	pullCtx, cancel := context.WithTimeout(ctx, TimeoutPull)
	defer cancel()
	if _, err := runCommand(exec.CommandContext(pullCtx, binary, "pull", image), verbose); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", image, err)
	}
	return nil
}
