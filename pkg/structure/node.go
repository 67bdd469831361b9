// Package structure models the directory tree recorded by a scan and its
// JSON serialization (the structure artifact).
package structure

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// Reserved JSON keys. They describe the tree and can never be file names.
const (
	KeyFolders         = "folders"
	KeySeparator       = "separator"
	KeyTableOfContents = "generateTableOfContent"
	KeyOutputFormat    = "outputFormat"
	KeyLargeFiles      = "largeTextContentFiles"
)

var reservedKeys = map[string]bool{
	KeyFolders:         true,
	KeySeparator:       true,
	KeyTableOfContents: true,
	KeyOutputFormat:    true,
	KeyLargeFiles:      true,
}

var (
	// ErrReservedName is returned when a file name collides with a structural key.
	ErrReservedName = errors.New("name is reserved")
	// ErrNameConflict is returned when a name is already used by an entry of the other kind.
	ErrNameConflict = errors.New("name already used by a different entry")
)

// IsReserved reports whether name is one of the structural keys.
func IsReserved(name string) bool {
	return reservedKeys[name]
}

// Node is either a *File or a *Folder.
type Node interface {
	node()
}

// File is a leaf pointing to the absolute path of a scanned file.
type File struct {
	Path string
}

// Folder is one directory level.
type Folder struct {
	children map[string]Node
}

func (*File) node()   {}
func (*Folder) node() {}

// NewFolder returns an empty folder.
func NewFolder() *Folder {
	return &Folder{children: map[string]Node{}}
}

// Insert places absPath at the position described by segments, creating
// intermediate folders as needed. The last segment is the file name.
func (f *Folder) Insert(segments []string, absPath string) error {
	if len(segments) == 0 {
		return fmt.Errorf("insert %q: empty relative path", absPath)
	}

	current := f
	for _, seg := range segments[:len(segments)-1] {
		next, err := current.ensureFolder(seg)
		if err != nil {
			return err
		}
		current = next
	}

	name := segments[len(segments)-1]
	if IsReserved(name) {
		return fmt.Errorf("insert %q: %w: %s", absPath, ErrReservedName, name)
	}
	if existing, ok := current.children[name]; ok {
		if _, isFile := existing.(*File); !isFile {
			return fmt.Errorf("insert %q: %w: %s", absPath, ErrNameConflict, name)
		}
	}
	current.children[name] = &File{Path: absPath}
	return nil
}

// ensureFolder returns the child folder called name, creating it when absent.
func (f *Folder) ensureFolder(name string) (*Folder, error) {
	switch existing := f.children[name].(type) {
	case *Folder:
		return existing, nil
	case *File:
		return nil, fmt.Errorf("%w: %s", ErrNameConflict, name)
	}
	child := NewFolder()
	f.children[name] = child
	return child, nil
}

// Files returns the sorted file names at this level.
func (f *Folder) Files() []string {
	return f.sortedNames(func(n Node) bool {
		_, ok := n.(*File)
		return ok
	})
}

// Folders returns the sorted subfolder names at this level.
func (f *Folder) Folders() []string {
	return f.sortedNames(func(n Node) bool {
		_, ok := n.(*Folder)
		return ok
	})
}

func (f *Folder) sortedNames(keep func(Node) bool) []string {
	names := make([]string, 0, len(f.children))
	for name, child := range f.children {
		if keep(child) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// File returns the file entry called name.
func (f *Folder) File(name string) (*File, bool) {
	file, ok := f.children[name].(*File)
	return file, ok
}

// Folder returns the subfolder called name.
func (f *Folder) Folder(name string) (*Folder, bool) {
	folder, ok := f.children[name].(*Folder)
	return folder, ok
}

// Lookup resolves a slash separated relative path to a file entry.
func (f *Folder) Lookup(rel string) (*File, bool) {
	segments := strings.Split(rel, "/")
	current := f
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current.Folder(seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current.File(segments[len(segments)-1])
}

// Entry is a file visited by Walk.
type Entry struct {
	DisplayPath string // Relative path with segments joined by '/'
	Name        string // Base name
	Path        string // Absolute path recorded at scan time
}

// Walk visits every file depth first: the files of a folder in sorted order,
// then each subfolder in sorted order. Returning false from fn stops the walk.
func (f *Folder) Walk(fn func(Entry) bool) {
	f.walk("", fn)
}

func (f *Folder) walk(prefix string, fn func(Entry) bool) bool {
	for _, name := range f.Files() {
		file, _ := f.File(name)
		if !fn(Entry{DisplayPath: path.Join(prefix, name), Name: name, Path: file.Path}) {
			return false
		}
	}
	for _, name := range f.Folders() {
		child, _ := f.Folder(name)
		if !child.walk(path.Join(prefix, name), fn) {
			return false
		}
	}
	return true
}

// Entries returns all files in Walk order.
func (f *Folder) Entries() []Entry {
	var entries []Entry
	f.Walk(func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// Count returns the number of files in the subtree.
func (f *Folder) Count() int {
	n := 0
	for _, child := range f.children {
		switch c := child.(type) {
		case *File:
			n++
		case *Folder:
			n += c.Count()
		}
	}
	return n
}

// Empty reports whether the folder has no children.
func (f *Folder) Empty() bool {
	return len(f.children) == 0
}
