package dirscan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// NoExtension is the extension bucket for files without an extension.
const NoExtension = ""

// Kind classifies a filesystem entry.
type Kind int

const (
	// KindFile is a regular file.
	KindFile Kind = iota
	// KindDir is a directory.
	KindDir
	// KindSymlink is a symbolic link. Links are never followed.
	KindSymlink
	// KindOther is a device, socket, named pipe or similar node.
	KindOther
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf classifies a file mode. The mode is expected to come from lstat.
func KindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Entry is one filesystem node observed during a scan.
type Entry struct {
	// Path is the path as walked, rooted at the scan root.
	Path string
	// Kind is the classification of the node.
	Kind Kind
	// Size is the size in bytes. Only files carry a size.
	Size int64
	// Depth is the number of levels below the scan root (root = 0).
	Depth int
	// ModTime is the modification time reported by lstat.
	ModTime time.Time
}

// newEntry builds an Entry from lstat information.
func newEntry(path string, info fs.FileInfo, depth int) Entry {
	entry := Entry{
		Path:    path,
		Kind:    KindOf(info.Mode()),
		Depth:   depth,
		ModTime: info.ModTime(),
	}

	if entry.Kind == KindFile {
		entry.Size = info.Size()
	}

	return entry
}

// Extension returns the lower-cased extension of a file name without the
// leading dot, or NoExtension.
//
// Dotfiles such as ".bashrc" have no extension, while ".bashrc.bak" has
// "bak". A trailing dot yields NoExtension.
func Extension(name string) string {
	base := filepath.Base(name)

	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return NoExtension
	}

	return strings.ToLower(base[idx+1:])
}
