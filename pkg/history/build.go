package history

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// BuildEntry is one recorded timed build.
type BuildEntry struct {
	TimestampUTC    string  `json:"timestampUtc"`
	Image           string  `json:"image"`
	Commit          string  `json:"commit,omitempty"`
	NoCache         bool    `json:"noCache"`
	DurationSeconds float64 `json:"durationSeconds"`
	DurationHuman   string  `json:"durationHuman"`
	CacheHits       int     `json:"cacheHits"`
	TotalSteps      int     `json:"totalSteps"`
	CacheHitRate    float64 `json:"cacheHitRate"`
	SizeBytes       int64   `json:"sizeBytes"`
	SizeHuman       string  `json:"sizeHuman"`
}

// BuildIndex is the on-disk build history file.
type BuildIndex struct {
	Builds []BuildEntry `json:"builds"`
}

// BuildTrend summarizes duration movement between the previous build of the
// same image and this one. Lower is better.
type BuildTrend struct {
	PreviousSeconds float64
	CurrentSeconds  float64
	DeltaSeconds    float64
	Label           string // FASTER / SLOWER / SAME / FIRST_RUN
}

// LoadBuilds reads the build index at path, returning an empty index when
// the file does not exist yet.
func LoadBuilds(path string) (*BuildIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &BuildIndex{}, nil
		}
		return nil, fmt.Errorf("failed to read build history %s: %w", path, err)
	}

	var idx BuildIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse build history %s: %w", path, err)
	}
	return &idx, nil
}

// RecordBuild appends a build entry, persists the index, and returns the
// duration trend against the previous recorded build of the same image.
func RecordBuild(path string, entry BuildEntry) (BuildTrend, error) {
	idx, err := LoadBuilds(path)
	if err != nil {
		return BuildTrend{}, err
	}

	prev := -1.0
	for i := len(idx.Builds) - 1; i >= 0; i-- {
		if idx.Builds[i].Image == entry.Image {
			prev = idx.Builds[i].DurationSeconds
			break
		}
	}

	if entry.TimestampUTC == "" {
		entry.TimestampUTC = time.Now().UTC().Format(time.RFC3339)
	}
	if entry.DurationHuman == "" {
		entry.DurationHuman = FormatDuration(entry.DurationSeconds)
	}
	if entry.CacheHitRate == 0 && entry.TotalSteps > 0 {
		entry.CacheHitRate = float64(entry.CacheHits) / float64(entry.TotalSteps) * 100
	}
	if entry.SizeHuman == "" && entry.SizeBytes > 0 {
		entry.SizeHuman = types.FormatSize(entry.SizeBytes)
	}

	idx.Builds = append(idx.Builds, entry)
	if len(idx.Builds) > maxEntries {
		idx.Builds = idx.Builds[len(idx.Builds)-maxEntries:]
	}

	raw, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return BuildTrend{}, err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return BuildTrend{}, fmt.Errorf("failed to write build history %s: %w", path, err)
	}

	tr := BuildTrend{PreviousSeconds: prev, CurrentSeconds: entry.DurationSeconds, Label: "FIRST_RUN"}
	if prev >= 0 {
		tr.DeltaSeconds = tr.CurrentSeconds - tr.PreviousSeconds
		switch {
		case tr.DeltaSeconds < 0:
			tr.Label = "FASTER"
		case tr.DeltaSeconds > 0:
			tr.Label = "SLOWER"
		default:
			tr.Label = "SAME"
		}
	}
	return tr, nil
}

// FormatDuration renders seconds the way build logs usually do: raw seconds
// under a minute, then minutes, then hours.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", int(seconds)/60, int(seconds)%60)
	default:
		return fmt.Sprintf("%dh %dm", int(seconds)/3600, int(seconds)%3600/60)
	}
}

// ExportCSV writes the build index as CSV rows.
func (idx *BuildIndex) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "image", "commit", "duration_seconds", "cache_hits", "total_steps", "cache_hit_rate", "size_bytes", "no_cache"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, b := range idx.Builds {
		row := []string{
			b.TimestampUTC,
			b.Image,
			b.Commit,
			strconv.FormatFloat(b.DurationSeconds, 'f', 2, 64),
			strconv.Itoa(b.CacheHits),
			strconv.Itoa(b.TotalSteps),
			strconv.FormatFloat(b.CacheHitRate, 'f', 1, 64),
			strconv.FormatInt(b.SizeBytes, 10),
			strconv.FormatBool(b.NoCache),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
