package dirscan

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(path string, size int64) Entry {
	return Entry{Path: path, Kind: KindFile, Size: size, Depth: 1}
}

func TestKeepTop(t *testing.T) {
	var list []FileStat

	for _, f := range []FileStat{
		{Path: "c", Size: 5},
		{Path: "a", Size: 1},
		{Path: "d", Size: 9},
		{Path: "b", Size: 5},
		{Path: "e", Size: 3},
	} {
		list = keepTop(list, f, 3, largerFile)
	}

	require.Len(t, list, 3)
	assert.Equal(t, "d", list[0].Path)
	assert.Equal(t, "b", list[1].Path, "equal sizes are ordered by path")
	assert.Equal(t, "c", list[2].Path)

	assert.Empty(t, keepTop(nil, FileStat{Path: "x"}, 0, largerFile))
}

func TestCollectorTieBreakIgnoresVisitOrder(t *testing.T) {
	orders := [][]Entry{
		{file("/r/b.txt", 10), file("/r/a.txt", 10), file("/r/z.txt", 1), file("/r/y.txt", 1)},
		{file("/r/y.txt", 1), file("/r/z.txt", 1), file("/r/a.txt", 10), file("/r/b.txt", 10)},
	}

	for _, entries := range orders {
		c := newCollector("/r", NoDepthLimit, DefaultTopN)
		for _, e := range entries {
			c.add(e)
		}

		report := c.finalize()

		require.NotNil(t, report.Largest)
		require.NotNil(t, report.Smallest)
		assert.Equal(t, "/r/a.txt", report.Largest.Path)
		assert.Equal(t, "/r/y.txt", report.Smallest.Path)
		assert.Equal(t, []string{"/r/a.txt", "/r/b.txt", "/r/y.txt", "/r/z.txt"}, paths(report.TopFiles))
	}
}

func TestCollectorAccounting(t *testing.T) {
	c := newCollector("/r", NoDepthLimit, 2)

	c.add(Entry{Path: "/r", Kind: KindDir, Depth: 0})
	c.add(Entry{Path: "/r/sub", Kind: KindDir, Depth: 1})
	c.add(Entry{Path: "/r/link", Kind: KindSymlink, Depth: 1})
	c.add(Entry{Path: "/r/fifo", Kind: KindOther, Depth: 1})
	c.add(file("/r/a.go", 100))
	c.add(file("/r/README", 7))
	c.add(Entry{Path: "/r/sub/b.GO", Kind: KindFile, Size: 50, Depth: 2})
	c.addError("/r/sub/locked", &fs.PathError{Op: "open", Path: "/r/sub/locked", Err: fs.ErrPermission})
	c.addError("/r/gone", errors.New("vanished"))
	c.filter()

	report := c.finalize()

	assert.Equal(t, int64(7), report.TotalEntries)
	assert.Equal(t, int64(157), report.TotalBytes)
	assert.Equal(t, int64(3), report.Files)
	assert.Equal(t, int64(2), report.Dirs)
	assert.Equal(t, int64(1), report.Symlinks)
	assert.Equal(t, int64(1), report.Others)
	assert.Equal(t, int64(1), report.Filtered)
	assert.Equal(t, 2, report.MaxDepth)
	assert.Equal(t, map[int]int64{0: 1, 1: 5, 2: 1}, report.DepthCounts)
	assert.Equal(t, map[string]ExtStat{
		"go":        {Count: 2, Size: 150},
		NoExtension: {Count: 1, Size: 7},
	}, report.ExtStats)

	var extTotal int64
	for _, stat := range report.ExtStats {
		extTotal += stat.Size
	}

	assert.Equal(t, report.TotalBytes, extTotal)

	assert.Equal(t, []string{"/r/a.go", "/r/sub/b.GO"}, paths(report.TopFiles))
	assert.Equal(t, []FileStat{{Path: "/r", Size: 107}, {Path: "/r/sub", Size: 50}}, report.TopDirs)
	assert.Equal(t, []ScanError{
		{Path: "/r/gone", Reason: "vanished"},
		{Path: "/r/sub/locked", Reason: "permission denied"},
	}, report.Errors)

	assert.Equal(t, []ExtSummary{
		{Ext: "go", ExtStat: ExtStat{Count: 2, Size: 150}},
		{Ext: NoExtension, ExtStat: ExtStat{Count: 1, Size: 7}},
	}, report.Extensions())
	assert.Equal(t, []int{0, 1, 2}, report.Depths())
}

func TestCollectorOldestFiles(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := newCollector("/r", NoDepthLimit, 2)
	c.add(Entry{Path: "/r/new", Kind: KindFile, Depth: 1, ModTime: base.Add(time.Hour)})
	c.add(Entry{Path: "/r/old-b", Kind: KindFile, Depth: 1, ModTime: base})
	c.add(Entry{Path: "/r/old-a", Kind: KindFile, Depth: 1, ModTime: base})

	report := c.finalize()

	assert.Equal(t, []string{"/r/old-a", "/r/old-b"}, paths(report.OldestFiles))
}

func TestCollectorEmpty(t *testing.T) {
	report := newCollector("/r", 0, DefaultTopN).finalize()

	assert.Nil(t, report.Largest)
	assert.Nil(t, report.Smallest)
	assert.Empty(t, report.TopFiles)
	assert.Empty(t, report.TopDirs)
	assert.NotNil(t, report.Errors)
	assert.Equal(t, 0, report.DepthLimit)
}

func TestProgressReporter(t *testing.T) {
	c := newCollector("/r", NoDepthLimit, DefaultTopN)
	c.add(file("/r/a", 42))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type tick struct{ entries, bytes int64 }

	ticks := make(chan tick, 1)

	startProgressReporter(ctx, c, func(entries, bytes int64) {
		select {
		case ticks <- tick{entries, bytes}:
		default:
		}
	}, time.Millisecond)

	select {
	case got := <-ticks:
		assert.Equal(t, tick{1, 42}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no progress reported")
	}
}

func paths(list []FileStat) []string {
	out := make([]string, 0, len(list))
	for _, f := range list {
		out = append(out, f.Path)
	}

	return out
}
