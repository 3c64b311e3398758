package collect

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// BuildOptions describe one timed image build.
type BuildOptions struct {
	Dockerfile string
	Context    string
	Image      string
	NoCache    bool
}

// BuildStats are the measured outcomes of a completed build. Cache counts
// come from the builder's progress output; a failed build produces an error
// and no stats.
type BuildStats struct {
	Duration   time.Duration
	CacheHits  int
	TotalSteps int
}

// BuildImage runs 'docker|podman build' for the given options, timing the
// run and counting cache hits from the build output.
func BuildImage(ctx context.Context, opts BuildOptions, verbose bool) (BuildStats, error) {
	binary, err := runtimeBinary()
	if err != nil {
		return BuildStats{}, err
	}

	args := []string{"build", "-f", opts.Dockerfile, "-t", opts.Image}
	if opts.NoCache {
		args = append(args, "--no-cache")
	}
	args = append(args, opts.Context)

	buildCtx, cancel := context.WithTimeout(ctx, TimeoutBuild)
	defer cancel()
	cmd := exec.CommandContext(buildCtx, binary, args...)
	if verbose {
		slog.Debug("running command", "cmd", cmd.String())
	}

	// Builders split progress between stdout and stderr depending on the
	// backend, so both streams feed the cache-hit count.
	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)
	if err != nil {
		return BuildStats{}, fmt.Errorf("build failed after %s: %w\noutput: %s",
			duration.Round(time.Millisecond), err, string(output))
	}

	hits, steps := parseBuildOutput(output)
	return BuildStats{Duration: duration, CacheHits: hits, TotalSteps: steps}, nil
}

var (
	// "#5 [2/6] RUN apt-get update" — one header line per BuildKit step.
	buildkitStep = regexp.MustCompile(`^#\d+ \[\d+/\d+\] `)
	// "#5 CACHED"
	buildkitCached = regexp.MustCompile(`^#\d+ CACHED$`)
)

// parseBuildOutput counts build steps and cache hits from builder progress
// output. Both the classic builder ("Step 3/9", "Using cache") and BuildKit
// ("#5 [2/6] RUN ...", "#5 CACHED") are recognized.
func parseBuildOutput(output []byte) (cacheHits, totalSteps int) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Step "):
			totalSteps++
		case strings.Contains(line, "Using cache"):
			cacheHits++
		case buildkitStep.MatchString(line):
			totalSteps++
		case buildkitCached.MatchString(line):
			cacheHits++
		}
	}
	return cacheHits, totalSteps
}
