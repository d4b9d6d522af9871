package blob

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Store used by tests.
//
// Directories are implicit: they exist whenever some blob's path passes
// through them, which matches how the gateway treats the drive (it never
// creates empty directories it doesn't immediately write into).
//
// FailWrites and FailRemoves inject IO errors for failure-path tests.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte

	FailWrites  bool
	FailRemoves bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Read returns the blob at path, or ErrNotFound.
func (s *Memory) Read(path string) ([]byte, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores data at path.
func (s *Memory) Write(path string, data []byte) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("write %s: injected failure", path)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = stored
	return nil
}

// Remove deletes the blob at path.
func (s *Memory) Remove(path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRemoves {
		return fmt.Errorf("remove %s: injected failure", path)
	}
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("remove %s: %w", path, ErrNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// List returns the immediate children of path, directories first by
// implication of deeper blobs.
func (s *Memory) List(path string) ([]Entry, error) {
	dir, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seen := make(map[string]bool)
	var entries []Entry
	for p := range s.blobs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, isDir := rest, false
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name, isDir = rest[:i], true
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, IsDir: isDir})
	}
	if len(entries) == 0 && prefix != "" {
		return nil, fmt.Errorf("list %s: %w", path, ErrNotFound)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Exists reports whether a blob is present at path. Test helper.
func (s *Memory) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok
}

// Len returns the number of stored blobs. Test helper.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
