package blob

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OS is a Store rooted at a directory on the local filesystem.
type OS struct {
	root string
}

// NewOS creates a filesystem store rooted at root, creating the root
// directory if it does not exist.
func NewOS(root string) (*OS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create drive root %s: %w", root, err)
	}
	return &OS{root: root}, nil
}

// Root returns the absolute root directory of the store.
func (s *OS) Root() string {
	return s.root
}

// resolve maps a store path onto the filesystem, confining it to the
// root. Anything cleanPath rejects never reaches the OS.
func (s *OS) resolve(path string) (string, error) {
	c, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(c)), nil
}

// Read returns the blob at path, or ErrNotFound.
func (s *OS) Read(path string) ([]byte, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Write stores data at path, creating parent directories as needed and
// overwriting any existing blob.
func (s *OS) Write(path string, data []byte) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dirs for %s: %w", path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Remove deletes the blob at path. Missing paths return ErrNotFound.
func (s *OS) Remove(path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// List returns the immediate entries of the directory at path.
// A missing directory returns ErrNotFound.
func (s *OS) List(path string) ([]Entry, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		entries = append(entries, Entry{Name: d.Name(), IsDir: d.IsDir()})
	}
	return entries, nil
}
