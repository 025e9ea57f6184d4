package dirscan

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// ExtStat represents statistics for a file extension.
type ExtStat struct {
	// Count is the number of files with this extension.
	Count int64 `json:"count" yaml:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// ExtSummary pairs an extension with its statistics.
type ExtSummary struct {
	Ext string `json:"ext" yaml:"ext"`
	ExtStat
}

// FileStat represents a single file or directory path and its size.
type FileStat struct {
	// Path is the file or directory path.
	Path string `json:"path" yaml:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// ModTime is the modification time of a file.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Report holds aggregate statistics for one directory scan.
type Report struct {
	// Root is the scanned directory.
	Root string `json:"root" yaml:"root"`
	// DepthLimit is the configured depth limit, NoDepthLimit if unbounded.
	DepthLimit int `json:"depth_limit" yaml:"depth_limit"`
	// TotalEntries is the number of entries recorded, the root included.
	TotalEntries int64 `json:"total_entries" yaml:"total_entries"`
	// TotalBytes is the cumulative size of all recorded files.
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
	// Files is the number of regular files.
	Files int64 `json:"files" yaml:"files"`
	// Dirs is the number of directories, the root included.
	Dirs int64 `json:"dirs" yaml:"dirs"`
	// Symlinks is the number of symbolic links.
	Symlinks int64 `json:"symlinks" yaml:"symlinks"`
	// Others is the number of devices, sockets, pipes and similar nodes.
	Others int64 `json:"others" yaml:"others"`
	// ExtStats maps lower-case extensions to their statistics.
	// Files without an extension are under NoExtension.
	ExtStats map[string]ExtStat `json:"ext_stats" yaml:"ext_stats"`
	// DepthCounts maps a depth to the number of entries at that depth.
	DepthCounts map[int]int64 `json:"depth_counts" yaml:"depth_counts"`
	// MaxDepth is the deepest depth at which an entry was recorded.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
	// Largest is the largest file, nil if no file was recorded.
	Largest *FileStat `json:"largest,omitempty" yaml:"largest,omitempty"`
	// Smallest is the smallest file, nil if no file was recorded.
	Smallest *FileStat `json:"smallest,omitempty" yaml:"smallest,omitempty"`
	// TopFiles contains the N largest files, largest first.
	TopFiles []FileStat `json:"top_files" yaml:"top_files"`
	// TopDirs contains the N directories with the most direct file bytes.
	TopDirs []FileStat `json:"top_dirs" yaml:"top_dirs"`
	// OldestFiles contains the N least recently modified files, oldest first.
	OldestFiles []FileStat `json:"oldest_files" yaml:"oldest_files"`
	// Errors lists the entries that could not be read, sorted by path.
	Errors []ScanError `json:"errors" yaml:"errors"`
	// Filtered is the number of files dropped by size or extension filters.
	Filtered int64 `json:"filtered" yaml:"filtered"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	// TopN is the length limit of the ranked lists.
	TopN int `json:"top_n" yaml:"top_n"`
}

// Extensions returns the extension statistics sorted by descending size.
// Ties are broken by descending count, then by extension.
func (r *Report) Extensions() []ExtSummary {
	list := make([]ExtSummary, 0, len(r.ExtStats))
	for ext, stat := range r.ExtStats {
		list = append(list, ExtSummary{Ext: ext, ExtStat: stat})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Size != list[j].Size {
			return list[i].Size > list[j].Size
		}

		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}

		return list[i].Ext < list[j].Ext
	})

	return list
}

// Depths returns the recorded depths in ascending order.
func (r *Report) Depths() []int {
	depths := make([]int, 0, len(r.DepthCounts))
	for depth := range r.DepthCounts {
		depths = append(depths, depth)
	}

	slices.Sort(depths)

	return depths
}

// largerFile orders files by descending size, then by path.
func largerFile(a, b FileStat) bool {
	if a.Size != b.Size {
		return a.Size > b.Size
	}

	return a.Path < b.Path
}

// smallerFile orders files by ascending size, then by path.
func smallerFile(a, b FileStat) bool {
	if a.Size != b.Size {
		return a.Size < b.Size
	}

	return a.Path < b.Path
}

// olderFile orders files by ascending modification time, then by path.
func olderFile(a, b FileStat) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.Before(b.ModTime)
	}

	return a.Path < b.Path
}

// keepTop inserts f into list, which is sorted by before, and trims the
// list to n elements.
func keepTop(list []FileStat, f FileStat, n int, before func(a, b FileStat) bool) []FileStat {
	if n <= 0 {
		return list
	}

	idx := sort.Search(len(list), func(i int) bool { return before(f, list[i]) })
	if idx >= n {
		return list
	}

	list = slices.Insert(list, idx, f)
	if len(list) > n {
		list = list[:n]
	}

	return list
}

// collector aggregates entries into a Report. It is safe for concurrent use:
// the parallel driver calls it from several goroutines and the progress
// reporter reads the running totals.
type collector struct {
	mu       sync.Mutex // Protect concurrent access
	topN     int
	report   Report
	dirSizes map[string]int64
}

// newCollector creates a collector with the requested configuration.
func newCollector(root string, depthLimit, topN int) *collector {
	return &collector{
		topN: topN,
		report: Report{
			Root:        root,
			DepthLimit:  depthLimit,
			ExtStats:    make(map[string]ExtStat),
			DepthCounts: make(map[int]int64),
			TopFiles:    make([]FileStat, 0),
			OldestFiles: make([]FileStat, 0),
			Errors:      make([]ScanError, 0),
			TopN:        topN,
		},
		dirSizes: make(map[string]int64),
	}
}

// add records an entry.
func (c *collector) add(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &c.report

	r.TotalEntries++
	r.DepthCounts[entry.Depth]++

	if entry.Depth > r.MaxDepth {
		r.MaxDepth = entry.Depth
	}

	switch entry.Kind {
	case KindDir:
		r.Dirs++

		return
	case KindSymlink:
		r.Symlinks++

		return
	case KindOther:
		r.Others++

		return
	case KindFile:
	}

	r.Files++
	r.TotalBytes += entry.Size

	ext := Extension(entry.Path)
	stat := r.ExtStats[ext]
	stat.Count++
	stat.Size += entry.Size
	r.ExtStats[ext] = stat

	c.dirSizes[filepath.Dir(entry.Path)] += entry.Size

	file := FileStat{Path: entry.Path, Size: entry.Size, ModTime: entry.ModTime}

	if r.Largest == nil || largerFile(file, *r.Largest) {
		largest := file
		r.Largest = &largest
	}

	if r.Smallest == nil || smallerFile(file, *r.Smallest) {
		smallest := file
		r.Smallest = &smallest
	}

	r.TopFiles = keepTop(r.TopFiles, file, c.topN, largerFile)
	r.OldestFiles = keepTop(r.OldestFiles, file, c.topN, olderFile)
}

// addError records a non-fatal failure for path.
func (c *collector) addError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report.Errors = append(c.report.Errors, ScanError{Path: path, Reason: reason(err)})
}

// addBrokenLink records a symlink whose target cannot be resolved.
func (c *collector) addBrokenLink(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report.Errors = append(c.report.Errors, ScanError{Path: path, Reason: "broken symlink: " + reason(err)})
}

// filter counts a file dropped by a size or extension filter.
func (c *collector) filter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.report.Filtered++
}

// progress returns the running entry and byte totals.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.report.TotalEntries, c.report.TotalBytes
}

// finalize produces the final Report from the collected data.
// It ranks directories by direct file size and sorts the error list.
func (c *collector) finalize() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := c.report

	topDirs := make([]FileStat, 0, len(c.dirSizes))
	for dir, size := range c.dirSizes {
		topDirs = append(topDirs, FileStat{Path: dir, Size: size})
	}

	sort.Slice(topDirs, func(i, j int) bool { return largerFile(topDirs[i], topDirs[j]) })

	if len(topDirs) > c.topN {
		topDirs = topDirs[:c.topN]
	}

	report.TopDirs = topDirs

	report.Errors = slices.Clone(c.report.Errors)
	slices.SortStableFunc(report.Errors, func(a, b ScanError) int {
		return strings.Compare(a.Path, b.Path)
	})

	return &report
}
