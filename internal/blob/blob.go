// Package blob provides the BlobStore capability the engine persists
// through: flat read/write/remove of byte blobs plus single-level
// directory listing, addressed by slash-separated paths relative to a
// drive root.
//
// The engine and gateway only ever see this interface. The OS
// implementation is the production drive; the Memory implementation
// backs tests. Remote object stores could satisfy the same contract.
package blob

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
)

// ErrNotFound is returned when a path has no blob or directory behind it.
// Callers match it with errors.Is.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidPath is returned for any path that does not stay relative to
// the drive root: absolute paths, or paths whose cleaned form escapes
// through ".." segments.
var ErrInvalidPath = errors.New("path not relative to drive root")

// cleanPath normalizes a slash path and enforces the root confinement
// contract. The empty path (and ".") addresses the root itself.
func cleanPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	c := path.Clean(p)
	if c == "." {
		return "", nil
	}
	if !fs.ValidPath(c) {
		return "", fmt.Errorf("resolve %s: %w", p, ErrInvalidPath)
	}
	return c, nil
}

// Entry is one name in a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Store is the persistence capability consumed by the gateway.
//
// Paths are slash-separated and relative to the store's root ("" names
// the root itself); paths that resolve outside the root are rejected
// with ErrInvalidPath. Write creates missing parent directories
// idempotently. Remove of a missing path returns ErrNotFound; the caller
// decides whether that matters.
type Store interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Remove(path string) error
	List(path string) ([]Entry, error)
}
