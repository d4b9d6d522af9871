package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both implementations must satisfy the same contract.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	osStore, err := NewOS(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"os":     osStore,
		"memory": NewMemory(),
	}
}

func TestStore_WriteRead(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("2024-01-05/INV-0001/document.json", []byte(`{"id":"x"}`)))

			data, err := s.Read("2024-01-05/INV-0001/document.json")
			require.NoError(t, err)
			assert.Equal(t, `{"id":"x"}`, string(data))
		})
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("a/b", []byte("one")))
			require.NoError(t, s.Write("a/b", []byte("two")))

			data, err := s.Read("a/b")
			require.NoError(t, err)
			assert.Equal(t, "two", string(data))
		})
	}
}

func TestStore_ReadMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read("nope/document.json")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RemoveMissing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Remove("nope"), ErrNotFound)
		})
	}
}

func TestStore_RemoveThenRead(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("a/b/c", []byte("data")))
			require.NoError(t, s.Remove("a/b/c"))

			_, err := s.Read("a/b/c")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_ListTwoLevels(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write("settings.json", []byte("{}")))
			require.NoError(t, s.Write("2024-01-05/INV-0001/document.json", []byte("{}")))
			require.NoError(t, s.Write("2024-01-05/INV-0002/document.json", []byte("{}")))
			require.NoError(t, s.Write("2024-02-01/Retainer/document.json", []byte("{}")))

			root, err := s.List("")
			require.NoError(t, err)

			names := map[string]bool{}
			for _, e := range root {
				names[e.Name] = e.IsDir
			}
			assert.True(t, names["2024-01-05"])
			assert.True(t, names["2024-02-01"])
			assert.False(t, names["settings.json"])

			level2, err := s.List("2024-01-05")
			require.NoError(t, err)
			assert.Len(t, level2, 2)
			for _, e := range level2 {
				assert.True(t, e.IsDir)
			}
		})
	}
}

func TestStore_ListMissingDir(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.List("missing-date")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemory_InjectedFailures(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Write("a", []byte("x")))

	s.FailWrites = true
	err := s.Write("b", []byte("y"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	s.FailRemoves = true
	require.Error(t, s.Remove("a"))
	assert.True(t, s.Exists("a"))
}

func TestMemory_ReadReturnsCopy(t *testing.T) {
	s := NewMemory()
	require.NoError(t, s.Write("a", []byte("abc")))

	data, err := s.Read("a")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := s.Read("a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	escaping := []string{
		"..",
		"../outside.txt",
		"a/../../outside.txt",
		"/etc/passwd",
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range escaping {
				_, err := s.Read(p)
				assert.ErrorIs(t, err, ErrInvalidPath, "read %s", p)
				assert.ErrorIs(t, s.Write(p, []byte("x")), ErrInvalidPath, "write %s", p)
				assert.ErrorIs(t, s.Remove(p), ErrInvalidPath, "remove %s", p)
				_, err = s.List(p)
				assert.ErrorIs(t, err, ErrInvalidPath, "list %s", p)
			}
		})
	}
}

func TestStore_DotSegmentsInsideRootAreFine(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			// Cleans to a/c without leaving the root.
			require.NoError(t, s.Write("a/b/../c", []byte("x")))
			data, err := s.Read("a/c")
			require.NoError(t, err)
			assert.Equal(t, "x", string(data))
		})
	}
}

func TestOS_ReadCannotEscapeRoot(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("outside"), 0o644))

	store, err := NewOS(filepath.Join(base, "drive"))
	require.NoError(t, err)

	_, err = store.Read("../secret.txt")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
