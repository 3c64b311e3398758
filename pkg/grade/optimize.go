package grade

import (
	"fmt"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// Size and layer thresholds for the optimization rules.
const (
	sizeLargeBytes  = 500 * 1024 * 1024
	sizeMediumBytes = 200 * 1024 * 1024

	layersHigh     = 25
	layersElevated = 20
	layersModerate = 15
)

// Penalty weights for the optimization rules.
const (
	penaltySizeLarge      = 20
	penaltySizeMedium     = 10
	penaltyLayersHigh     = 15
	penaltyLayersElevated = 10
	penaltyLayersModerate = 5
	penaltyNoMultiStage   = 20
	penaltyNoNonRoot      = 10
	penaltyNoHealthCheck  = 5
)

// EvaluateOptimization applies the build-hygiene rule set to one metadata
// snapshot and returns the ordered finding sequence. Within each category
// conditions are evaluated top down, first match wins. A nil snapshot is
// an error: insufficient data must never look like a perfect image.
func EvaluateOptimization(meta *types.ImageMetadata) ([]Finding, error) {
	if meta == nil {
		return nil, ErrNoMetadata
	}

	findings := make([]Finding, 0, 6)
	findings = append(findings, sizeFinding(meta.SizeBytes))
	findings = append(findings, layerFinding(meta.LayerCount()))
	findings = append(findings, practiceFindings(meta.Features)...)
	return findings, nil
}

func sizeFinding(sizeBytes int64) Finding {
	human := types.FormatSize(sizeBytes)
	switch {
	case sizeBytes > sizeLargeBytes:
		return Finding{
			Category: CategorySize,
			Status:   StatusLarge,
			Message:  fmt.Sprintf("image is %s; consider a slimmer base image or multi-stage build", human),
			Penalty:  penaltySizeLarge,
		}
	case sizeBytes > sizeMediumBytes:
		return Finding{
			Category: CategorySize,
			Status:   StatusMedium,
			Message:  fmt.Sprintf("image is %s; there is likely room to trim", human),
			Penalty:  penaltySizeMedium,
		}
	default:
		return Finding{
			Category: CategorySize,
			Status:   StatusOK,
			Message:  fmt.Sprintf("image size %s is within budget", human),
		}
	}
}

func layerFinding(count int) Finding {
	switch {
	case count > layersHigh:
		return Finding{
			Category: CategoryLayerCount,
			Status:   StatusHigh,
			Message:  fmt.Sprintf("%d layers; consolidate RUN instructions", count),
			Penalty:  penaltyLayersHigh,
		}
	case count > layersElevated:
		return Finding{
			Category: CategoryLayerCount,
			Status:   StatusHigh,
			Message:  fmt.Sprintf("%d layers; consolidate RUN instructions", count),
			Penalty:  penaltyLayersElevated,
		}
	case count > layersModerate:
		return Finding{
			Category: CategoryLayerCount,
			Status:   StatusModerate,
			Message:  fmt.Sprintf("%d layers; some instructions could be merged", count),
			Penalty:  penaltyLayersModerate,
		}
	default:
		return Finding{
			Category: CategoryLayerCount,
			Status:   StatusOK,
			Message:  fmt.Sprintf("%d layers is reasonable", count),
		}
	}
}

func practiceFindings(f types.Features) []Finding {
	findings := make([]Finding, 0, 4)

	if f.MultiStage {
		findings = append(findings, Finding{
			Category: CategoryMultiStage, Status: StatusOK,
			Message: "multi-stage build detected",
		})
	} else {
		findings = append(findings, Finding{
			Category: CategoryMultiStage, Status: StatusMissing,
			Message: "no multi-stage build; build tooling likely ships in the final image",
			Penalty: penaltyNoMultiStage,
		})
	}

	// Cache cleanup is advisory: it counts as a recommendation but does
	// not weigh on the score.
	if f.CacheCleanup {
		findings = append(findings, Finding{
			Category: CategoryCacheCleanup, Status: StatusOK,
			Message: "package-manager cache cleanup detected",
		})
	} else {
		findings = append(findings, Finding{
			Category: CategoryCacheCleanup, Status: StatusMissing,
			Message:  "no package-manager cache cleanup detected; caches bloat layers",
			Advisory: true,
		})
	}

	if f.NonRootUser {
		findings = append(findings, Finding{
			Category: CategoryNonRootUser, Status: StatusOK,
			Message: "container runs as a non-root user",
		})
	} else {
		findings = append(findings, Finding{
			Category: CategoryNonRootUser, Status: StatusMissing,
			Message: "container runs as root; add a USER instruction",
			Penalty: penaltyNoNonRoot,
		})
	}

	if f.HealthCheck {
		findings = append(findings, Finding{
			Category: CategoryHealthCheck, Status: StatusOK,
			Message: "HEALTHCHECK configured",
		})
	} else {
		findings = append(findings, Finding{
			Category: CategoryHealthCheck, Status: StatusMissing,
			Message: "no HEALTHCHECK configured",
			Penalty: penaltyNoHealthCheck,
		})
	}

	return findings
}
