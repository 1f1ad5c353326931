// Package storage defines the site-tree file-system abstraction.
package storage

import "io/fs"

// Provider is the interface for site-tree file operations. Every path is
// relative to the tree root.
type Provider interface {
	// Root returns the absolute tree root.
	Root() string
	// Exists reports whether path exists. Only unexpected stat errors are returned.
	Exists(path string) (bool, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// ReadDir lists the entries of dir sorted by name.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
	// Rename moves oldPath to newPath and refuses to replace an existing newPath.
	Rename(oldPath, newPath string) error
	// RemoveDir removes dir, which must be empty.
	RemoveDir(dir string) error
}
