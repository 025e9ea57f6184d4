package dirscan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// NoDepthLimit disables the depth limit.
	NoDepthLimit = -1
	// DefaultTopN is the default length of the ranked lists.
	DefaultTopN = 10
	// DefaultProgressInterval is the default interval for progress updates.
	DefaultProgressInterval = 500 * time.Millisecond
)

// ErrParallelFs is returned when the parallel driver is asked to walk a
// filesystem other than the OS one.
var ErrParallelFs = errors.New("parallel scanning requires the OS filesystem")

// Options configures a scan.
type Options struct {
	// Path is the directory to scan.
	Path string
	// MaxDepth is the inclusive depth limit, NoDepthLimit for none.
	// A directory at the limit is recorded but not listed.
	MaxDepth int
	// Extensions to include (empty = all). A '!' prefix excludes.
	Extensions []string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// TopN is the number of ranked files and directories to track.
	TopN int
	// Parallel selects the concurrent fastwalk driver.
	Parallel bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Fs is the filesystem to scan. Nil means the OS filesystem.
	Fs afero.Fs
	// Logger receives debug traces. Nil disables logging.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns options for an unbounded scan of the current directory.
func DefaultOptions() Options {
	return Options{
		Path:     ".",
		MaxDepth: NoDepthLimit,
		TopN:     DefaultTopN,
	}
}

// scanner holds the state shared by the traversal drivers.
type scanner struct {
	fsys       afero.Fs
	root       string
	maxDepth   int
	minSize    int64
	extInclude map[string]struct{}
	extExclude map[string]struct{}
	excludes   []*regexp.Regexp
	collector  *collector
	log        *zap.SugaredLogger
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath, err := filepath.Rel(root, path)
	if err != nil || relPath == "." {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// descend reports whether a directory at depth should be listed.
func (s *scanner) descend(depth int) bool {
	return s.maxDepth < 0 || depth < s.maxDepth
}

// excluded checks if path matches any exclusion regex.
func (s *scanner) excluded(path string) *regexp.Regexp {
	if len(s.excludes) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range s.excludes {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// keepFile checks a file against the size and extension filters.
func (s *scanner) keepFile(path string, size int64) bool {
	if size < s.minSize {
		return false
	}

	for ext := range s.extExclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if len(s.extInclude) == 0 {
		return true
	}

	for ext := range s.extInclude {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// record applies the exclusion and file filters to an entry and, if it
// survives, adds it to the collector. It reports whether the entry was recorded.
func (s *scanner) record(entry Entry) bool {
	if re := s.excluded(entry.Path); re != nil {
		s.log.Debugw("excluding entry", "path", entry.Path, "kind", entry.Kind, "regex", re.String())

		return false
	}

	if entry.Kind == KindFile && !s.keepFile(entry.Path, entry.Size) {
		s.log.Debugw("filtering file", "path", entry.Path, "size", entry.Size)
		s.collector.filter()

		return false
	}

	s.collector.add(entry)

	return true
}

// startProgressReporter invokes hook(entries, bytes) on each tick until ctx is done.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// validateRoot checks that root exists, is a directory and can be opened.
func validateRoot(fsys afero.Fs, root string) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return rootError(root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrNotADirectory, root)
	}

	f, err := fsys.Open(root)
	if err != nil {
		return rootError(root, err)
	}

	return f.Close()
}

// Run scans the directory tree at opt.Path and returns the aggregated report.
//
// The root must exist, be a directory and be listable; otherwise Run fails
// with ErrNotFound, ErrNotADirectory or ErrPermissionDenied and returns no
// report. Failures below the root are recorded in Report.Errors and the
// scan continues.
//
// The scan can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	if opt.MaxDepth < 0 {
		opt.MaxDepth = NoDepthLimit
	}

	if opt.TopN <= 0 {
		opt.TopN = DefaultTopN
	}

	fsys := opt.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	if opt.Parallel {
		if _, ok := fsys.(*afero.OsFs); !ok {
			return nil, ErrParallelFs
		}
	}

	if err := validateRoot(fsys, opt.Path); err != nil {
		return nil, err
	}

	// setup extension set for quick lookup
	extInclude := make(map[string]struct{}, len(opt.Extensions))
	extExclude := make(map[string]struct{}, len(opt.Extensions))

	for _, e := range opt.Extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(e, "'\"")

		if strings.HasPrefix(e, "!") {
			extExclude[strings.TrimPrefix(e, "!")] = struct{}{}
		} else {
			extInclude[e] = struct{}{}
		}
	}

	excludes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	s := &scanner{
		fsys:       fsys,
		root:       opt.Path,
		maxDepth:   opt.MaxDepth,
		minSize:    opt.MinSize,
		extInclude: extInclude,
		extExclude: extExclude,
		excludes:   excludes,
		collector:  newCollector(opt.Path, opt.MaxDepth, opt.TopN),
		log:        log,
	}

	log.Debugw("starting scan",
		"root", opt.Path,
		"max_depth", opt.MaxDepth,
		"parallel", opt.Parallel,
		"include", opt.Extensions,
		"exclude", opt.Excludes,
		"min_size", opt.MinSize,
	)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, s.collector, progressHook, opt.ProgressInterval)

	start := time.Now()

	var err error
	if opt.Parallel {
		err = s.walkParallel(ctx)
	} else {
		err = s.walkSequential(ctx)
	}

	if err != nil {
		return nil, err
	}

	report := s.collector.finalize()
	report.Elapsed = time.Since(start)

	log.Debugw("scan finished",
		"entries", report.TotalEntries,
		"bytes", report.TotalBytes,
		"errors", len(report.Errors),
		"elapsed", report.Elapsed,
	)

	return report, nil
}
