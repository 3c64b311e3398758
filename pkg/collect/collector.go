// Package collect gathers raw image facts by shelling out to a container
// runtime and the trivy scanner. Collection either succeeds with a complete
// snapshot or fails as a whole; a missing tool or unparseable output is a
// fatal error, never an empty result that could masquerade as a clean image.
package collect

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// Collector defines one external tool integration.
type Collector interface {
	Name() string
	IsAvailable() bool
	Collect(ctx context.Context, image string, verbose bool) (*Result, error)
}

// Result is the merged outcome of a collection run. Report stays nil when
// no scanner ran; that is distinct from a report with zero vulnerabilities.
type Result struct {
	Metadata *types.ImageMetadata
	Report   *types.VulnerabilityReport
}

// DefaultCollectors returns the standard collector set for a full grade.
func DefaultCollectors() []Collector {
	return []Collector{
		&InspectCollector{},
		&TrivyCollector{},
	}
}

// CollectImage runs every collector against one image concurrently and
// merges the results. Any collector error fails the whole run.
func CollectImage(ctx context.Context, image string, collectors []Collector, verbose bool) (*Result, error) {
	if image == "" {
		return nil, fmt.Errorf("image tag is required")
	}

	final := &Result{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range collectors {
		if !c.IsAvailable() {
			return nil, fmt.Errorf("%s is not installed or not in PATH", c.Name())
		}
		g.Go(func() error {
			res, err := c.Collect(gctx, image, verbose)
			if err != nil {
				return fmt.Errorf("%s failed: %w", c.Name(), err)
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Metadata != nil {
				final.Metadata = res.Metadata
			}
			if res.Report != nil {
				final.Report = res.Report
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return final, nil
}

// CollectImages collects several independent images in parallel. Results
// are returned in input order. newCollectors is called once per image:
// collectors cache resolved binary paths, so instances cannot be shared
// across concurrent runs.
func CollectImages(ctx context.Context, images []string, newCollectors func() []Collector, verbose bool) ([]*Result, error) {
	results := make([]*Result, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, image := range images {
		collectors := newCollectors()
		g.Go(func() error {
			res, err := CollectImage(gctx, image, collectors, verbose)
			if err != nil {
				return fmt.Errorf("collecting %s: %w", image, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
