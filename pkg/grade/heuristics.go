package grade

import (
	"strings"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// DetectFeatures scans recorded layer commands for build-practice markers
// using case-insensitive substring matching. These are heuristic signals,
// not ground truth: an image built with a practice whose instruction text
// was truncated or reformatted out of the layer history will read as a
// false negative. Parsing the Dockerfile (pkg/dockerfile) is authoritative
// when one is available; positive signals from both sources merge.
func DetectFeatures(layers []types.Layer) types.Features {
	var f types.Features
	for _, layer := range layers {
		cmd := strings.ToLower(layer.Command)
		if !f.MultiStage && isMultiStageMarker(cmd) {
			f.MultiStage = true
		}
		if !f.NonRootUser && isNonRootUser(cmd) {
			f.NonRootUser = true
		}
		if !f.HealthCheck && strings.Contains(cmd, "healthcheck") {
			f.HealthCheck = true
		}
		if !f.CacheCleanup && isCacheCleanup(cmd) {
			f.CacheCleanup = true
		}
	}
	return f
}

// isMultiStageMarker matches "FROM ... AS <stage>" instruction text.
func isMultiStageMarker(cmd string) bool {
	return strings.Contains(cmd, "from ") && strings.Contains(cmd, " as ")
}

// isNonRootUser matches a USER instruction that switches away from root.
// The match is anchored to the instruction position (start of the command,
// or right after the runtime's "#(nop)" marker) so shell commands that
// merely mention users, like "RUN adduser app", do not count.
func isNonRootUser(cmd string) bool {
	rest := cmd
	if i := strings.Index(rest, "#(nop)"); i >= 0 {
		rest = rest[i+len("#(nop)"):]
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "user ") {
		return false
	}
	user := strings.TrimSpace(rest[len("user "):])
	if cut := strings.IndexAny(user, " \t:"); cut >= 0 {
		user = user[:cut]
	}
	return user != "" && user != "root" && user != "0"
}

// isCacheCleanup matches the package-manager cache cleanup patterns the
// optimization rules reward: apt cache purges, apk --no-cache installs,
// and pip --no-cache-dir installs.
func isCacheCleanup(cmd string) bool {
	switch {
	case strings.Contains(cmd, "apt-get") && strings.Contains(cmd, "clean"):
		return true
	case strings.Contains(cmd, "rm") && strings.Contains(cmd, "apt/lists"):
		return true
	case strings.Contains(cmd, "apk") && strings.Contains(cmd, "--no-cache"):
		return true
	case strings.Contains(cmd, "pip") && strings.Contains(cmd, "--no-cache-dir"):
		return true
	}
	return false
}
