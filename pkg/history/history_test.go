package history

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.json")
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	idx, err := Load(historyPath(t))
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)
}

func TestRecord_FirstRun(t *testing.T) {
	path := historyPath(t)

	trend, err := Record(path, Entry{Image: "app:latest", SizeBytes: 150 * 1024 * 1024, Layers: 9, Score: 90, Band: "Excellent"})
	require.NoError(t, err)
	assert.Equal(t, "FIRST_RUN", trend.Label)
	assert.Equal(t, 90, trend.Current)

	idx, err := Load(path)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 1)
	assert.NotEmpty(t, idx.Entries[0].TimestampUTC, "timestamp should be filled in")
	assert.Equal(t, "150MiB", idx.Entries[0].SizeHuman, "human size should be derived from bytes")
}

func TestRecord_Trend(t *testing.T) {
	path := historyPath(t)

	_, err := Record(path, Entry{Image: "app:latest", Score: 70})
	require.NoError(t, err)

	trend, err := Record(path, Entry{Image: "app:latest", Score: 85})
	require.NoError(t, err)
	assert.Equal(t, "IMPROVING", trend.Label)
	assert.Equal(t, 15, trend.Delta)
	assert.InDelta(t, 21.43, trend.Percent, 0.01)

	trend, err = Record(path, Entry{Image: "app:latest", Score: 60})
	require.NoError(t, err)
	assert.Equal(t, "DECLINING", trend.Label)
	assert.Equal(t, -25, trend.Delta)

	trend, err = Record(path, Entry{Image: "app:latest", Score: 60})
	require.NoError(t, err)
	assert.Equal(t, "SAME", trend.Label)
	assert.Equal(t, 0, trend.Delta)
}

func TestRecord_TrendIsPerImage(t *testing.T) {
	path := historyPath(t)

	_, err := Record(path, Entry{Image: "app:latest", Score: 40})
	require.NoError(t, err)

	// A different image gets its own baseline.
	trend, err := Record(path, Entry{Image: "worker:latest", Score: 90})
	require.NoError(t, err)
	assert.Equal(t, "FIRST_RUN", trend.Label)
}

func TestRecord_CapsEntries(t *testing.T) {
	path := historyPath(t)

	for i := 0; i < maxEntries+25; i++ {
		_, err := Record(path, Entry{Image: "app:latest", Score: i % 100})
		require.NoError(t, err)
	}

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, idx.Entries, maxEntries)
}

func TestRecent(t *testing.T) {
	idx := &Index{Entries: []Entry{
		{Image: "a:1", Score: 10},
		{Image: "b:1", Score: 20},
		{Image: "a:1", Score: 30},
		{Image: "a:1", Score: 40},
	}}

	got := idx.Recent("a:1", 2)
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].Score, "oldest of the window comes first")
	assert.Equal(t, 40, got[1].Score)

	assert.Len(t, idx.Recent("", 0), 4, "empty image selects everything")
	assert.Empty(t, idx.Recent("c:1", 5))
}

func TestExportCSV(t *testing.T) {
	idx := &Index{Entries: []Entry{
		{TimestampUTC: "2026-08-20T10:00:00Z", Image: "app:latest", Commit: "abc1234", SizeBytes: 1024, SizeHuman: "1KiB", Layers: 5, Score: 88, Band: "Good"},
	}}

	var buf bytes.Buffer
	require.NoError(t, idx.ExportCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,image,commit,size_bytes,size_human,layers,score,band", lines[0])
	assert.Equal(t, "2026-08-20T10:00:00Z,app:latest,abc1234,1024,1KiB,5,88,Good", lines[1])
}
