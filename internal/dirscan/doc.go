// Package dirscan provides directory scanning and aggregation.
//
// It walks a directory tree up to an optional depth limit, classifies
// every entry as a file, directory, symlink or other node, and aggregates
// the results into a Report: totals, sizes by extension, depth
// distribution, the largest, smallest and oldest files, and the entries
// that could not be read.
//
// Two traversal drivers share the same semantics: a sequential walk over
// an afero filesystem, and a parallel walk of the OS filesystem using
// fastwalk.
package dirscan
