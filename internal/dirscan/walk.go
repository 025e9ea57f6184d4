package dirscan

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
)

// rootEntry records the scan root itself at depth 0.
func (s *scanner) rootEntry() error {
	info, err := s.fsys.Stat(s.root)
	if err != nil {
		return rootError(s.root, err)
	}

	s.collector.add(newEntry(s.root, info, 0))

	return nil
}

// checkLink records a traversal error if the symlink at path is dangling.
func (s *scanner) checkLink(path string) {
	if _, err := s.fsys.Stat(path); err != nil {
		s.log.Debugw("broken symlink", "path", path, "error", err)
		s.collector.addBrokenLink(path, err)
	}
}

// readDirNames lists the names in dir, sorted.
func (s *scanner) readDirNames(dir string) ([]string, error) {
	f, err := s.fsys.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	slices.Sort(names)

	return names, nil
}

// lstat stats path without following a final symlink when the filesystem
// supports it.
func (s *scanner) lstat(path string) (fs.FileInfo, error) {
	if lstater, ok := s.fsys.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)

		return info, err
	}

	return s.fsys.Stat(path)
}

// normalize rewrites a path reported by fastwalk into the form the
// sequential driver produces, so "./a" under root "." becomes "a".
func (s *scanner) normalize(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.Clean(path)
	}

	return filepath.Join(s.root, rel)
}

// walkSequential walks the tree depth-first in the calling goroutine.
// Siblings are visited in name order.
func (s *scanner) walkSequential(ctx context.Context) error {
	if err := s.rootEntry(); err != nil {
		return err
	}

	if !s.descend(0) {
		return nil
	}

	return s.walkDir(ctx, s.root, 0)
}

// walkDir lists dir, located at depth, and records its children.
func (s *scanner) walkDir(ctx context.Context, dir string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names, err := s.readDirNames(dir)
	if err != nil {
		if depth == 0 {
			return rootError(dir, err)
		}

		s.log.Debugw("error listing directory", "path", dir, "error", err)
		s.collector.addError(dir, err)

		return nil
	}

	childDepth := depth + 1

	for _, name := range names {
		path := filepath.Join(dir, name)

		info, err := s.lstat(path)
		if err != nil {
			s.log.Debugw("error reading entry", "path", path, "error", err)
			s.collector.addError(path, err)

			continue
		}

		entry := newEntry(path, info, childDepth)

		if !s.record(entry) {
			continue
		}

		switch entry.Kind {
		case KindSymlink:
			s.checkLink(entry.Path)
		case KindDir:
			if !s.descend(childDepth) {
				s.log.Debugw("not descending (depth limit)", "path", entry.Path, "depth", childDepth)

				continue
			}

			if err := s.walkDir(ctx, entry.Path, childDepth); err != nil {
				return err
			}
		case KindFile, KindOther:
		}
	}

	return nil
}

// walkParallel walks the OS filesystem with fastwalk. The callback runs on
// several goroutines; the collector serializes the updates.
//
//nolint:varnamelen // d is standard for DirEntry
func (s *scanner) walkParallel(ctx context.Context) error {
	if err := s.rootEntry(); err != nil {
		return err
	}

	if !s.descend(0) {
		return nil
	}

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	return fastwalk.Walk(conf, s.root, func(path string, d fs.DirEntry, err error) error {
		path = s.normalize(path)

		if err != nil {
			if path == s.root {
				return rootError(path, err)
			}

			s.log.Debugw("error accessing path", "path", path, "error", err)
			s.collector.addError(path, err)

			return nil
		}

		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == s.root {
			return nil
		}

		depth := calculateDepth(path, s.root)

		info, err := d.Info()
		if err != nil {
			s.collector.addError(path, err)

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		entry := newEntry(path, info, depth)

		if !s.record(entry) {
			if entry.Kind == KindDir {
				return filepath.SkipDir
			}

			return nil
		}

		switch entry.Kind {
		case KindSymlink:
			s.checkLink(path)
		case KindDir:
			if !s.descend(depth) {
				return filepath.SkipDir
			}
		case KindFile, KindOther:
		}

		return nil
	})
}
