package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirscan/internal/dirscan"
)

func sampleReport() *dirscan.Report {
	largest := dirscan.FileStat{Path: "/r/big.bin", Size: 2048}
	smallest := dirscan.FileStat{Path: "/r/Makefile", Size: 12}

	return &dirscan.Report{
		Root:         "/r",
		DepthLimit:   2,
		TotalEntries: 5,
		TotalBytes:   2060,
		Files:        2,
		Dirs:         2,
		Symlinks:     1,
		ExtStats: map[string]dirscan.ExtStat{
			"bin":               {Count: 1, Size: 2048},
			dirscan.NoExtension: {Count: 1, Size: 12},
		},
		DepthCounts: map[int]int64{0: 1, 1: 3, 2: 1},
		MaxDepth:    2,
		Largest:     &largest,
		Smallest:    &smallest,
		TopFiles:    []dirscan.FileStat{largest, smallest},
		TopDirs:     []dirscan.FileStat{{Path: "/r", Size: 2060}},
		OldestFiles: []dirscan.FileStat{
			{Path: "/r/Makefile", Size: 12, ModTime: time.Date(2020, 5, 1, 10, 30, 0, 0, time.UTC)},
		},
		Errors:  []dirscan.ScanError{{Path: "/r/locked", Reason: "permission denied"}},
		Elapsed: 3 * time.Millisecond,
		TopN:    10,
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintTable(sampleReport(), &buf, TableOptions{}))

	out := buf.String()
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "2.0 KiB (2060 bytes)")
	assert.Contains(t, out, "2 (limit 2)")
	assert.Contains(t, out, "'/r/big.bin'")
	assert.Contains(t, out, noExtensionLabel)
	assert.Contains(t, out, "99.4%")
	assert.Contains(t, out, "Oldest files:")
	assert.Contains(t, out, "2020-05-01 10:30")
	assert.Contains(t, out, "Errors:")
	assert.Contains(t, out, "/r/locked")
	assert.Contains(t, out, "permission denied")
	assert.NotContains(t, out, "Top directories:")
}

func TestPrintTableDirs(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintTable(sampleReport(), &buf, TableOptions{Dirs: true}))

	out := buf.String()
	assert.Contains(t, out, "Top directories:")
	assert.NotContains(t, out, "Top files:")
	assert.NotContains(t, out, "Oldest files:")
}

func TestPrintPaths(t *testing.T) {
	var files, dirs bytes.Buffer

	require.NoError(t, PrintPaths(sampleReport(), false, &files))
	require.NoError(t, PrintPaths(sampleReport(), true, &dirs))

	assert.Equal(t, "/r/big.bin\n/r/Makefile\n", files.String())
	assert.Equal(t, "/r\n", dirs.String())
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintYAML(sampleReport(), &buf))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "/r", decoded["root"])
	assert.Equal(t, 2060, decoded["total_bytes"])
	assert.Contains(t, decoded, "ext_stats")
	assert.Contains(t, decoded, "errors")
}

func TestShare(t *testing.T) {
	assert.Equal(t, "0.0%", share(10, 0))
	assert.Equal(t, "50.0%", share(1, 2))
}
