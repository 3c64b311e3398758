// Package history records graded runs in an append-only JSON index so size
// and score movement can be tracked across builds.
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

// maxEntries caps the index so it cannot grow without bound.
const maxEntries = 200

// Entry is one recorded run for one image.
type Entry struct {
	TimestampUTC string `json:"timestampUtc"`
	Image        string `json:"image"`
	Commit       string `json:"commit,omitempty"`
	SizeBytes    int64  `json:"sizeBytes"`
	SizeHuman    string `json:"sizeHuman"`
	Layers       int    `json:"layers"`
	Score        int    `json:"score"`
	Band         string `json:"band"`
}

// Index is the on-disk history file.
type Index struct {
	Entries []Entry `json:"entries"`
}

// Trend summarizes score movement between the previous run and this one.
type Trend struct {
	Previous int
	Current  int
	Delta    int
	// Percent is the delta relative to the previous score; zero when there
	// is no previous run or the previous score was zero.
	Percent float64
	Label   string // IMPROVING / DECLINING / SAME / FIRST_RUN
}

// Load reads the index at path, returning an empty index when the file
// does not exist yet.
func Load(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Index{}, nil
		}
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}

	var idx Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	return &idx, nil
}

// Record appends an entry for the image, persists the index, and returns
// the score trend against the previous recorded run of the same image.
func Record(path string, entry Entry) (Trend, error) {
	idx, err := Load(path)
	if err != nil {
		return Trend{}, err
	}

	prev := -1
	for i := len(idx.Entries) - 1; i >= 0; i-- {
		if idx.Entries[i].Image == entry.Image {
			prev = idx.Entries[i].Score
			break
		}
	}

	if entry.TimestampUTC == "" {
		entry.TimestampUTC = time.Now().UTC().Format(time.RFC3339)
	}
	if entry.SizeHuman == "" {
		entry.SizeHuman = types.FormatSize(entry.SizeBytes)
	}

	idx.Entries = append(idx.Entries, entry)
	if len(idx.Entries) > maxEntries {
		idx.Entries = idx.Entries[len(idx.Entries)-maxEntries:]
	}

	raw, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return Trend{}, err
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return Trend{}, fmt.Errorf("failed to write history %s: %w", path, err)
	}

	tr := Trend{Previous: prev, Current: entry.Score, Label: "FIRST_RUN"}
	if prev >= 0 {
		tr.Delta = tr.Current - tr.Previous
		if prev > 0 {
			tr.Percent = float64(tr.Delta) / float64(prev) * 100
		}
		switch {
		case tr.Delta > 0:
			tr.Label = "IMPROVING"
		case tr.Delta < 0:
			tr.Label = "DECLINING"
		default:
			tr.Label = "SAME"
		}
	}
	return tr, nil
}

// Recent returns the last n entries for an image, oldest first. An empty
// image selects across all images.
func (idx *Index) Recent(image string, n int) []Entry {
	var matched []Entry
	for _, e := range idx.Entries {
		if image == "" || e.Image == image {
			matched = append(matched, e)
		}
	}
	if n > 0 && len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	return matched
}

// ExportCSV writes the index as CSV rows.
func (idx *Index) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "image", "commit", "size_bytes", "size_human", "layers", "score", "band"}); err != nil {
		return err
	}
	for _, e := range idx.Entries {
		row := []string{
			e.TimestampUTC,
			e.Image,
			e.Commit,
			strconv.FormatInt(e.SizeBytes, 10),
			e.SizeHuman,
			strconv.Itoa(e.Layers),
			strconv.Itoa(e.Score),
			e.Band,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
