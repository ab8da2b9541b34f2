package watchlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	l := Load(filepath.Join(t.TempDir(), "watchlist.json"))
	require.Zero(t, l.Len())
	require.Empty(t, l.Items())
}

func TestLoad_MalformedFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := Load(path)
	require.Zero(t, l.Len())
}

func TestLoad_SkipsBlankEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte(`["a", "  ", "", " b "]`), 0o644))

	l := Load(path)
	require.Equal(t, []string{"a", "b"}, l.Items())
}

func TestAdd_RejectsEmptyAndDuplicate(t *testing.T) {
	t.Parallel()

	l := Load(filepath.Join(t.TempDir(), "watchlist.json"))
	require.NoError(t, l.Add("AK-47 | Redline (Field-Tested)"))
	require.Error(t, l.Add("AK-47 | Redline (Field-Tested)"))
	require.Error(t, l.Add("   "))
	require.Equal(t, 1, l.Len())
}

func TestAddRemove_PersistAcrossLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "watchlist.json")

	l := Load(path)
	require.NoError(t, l.Add("a"))
	require.NoError(t, l.Add("b"))
	require.NoError(t, l.Add("c"))

	removed, err := l.Remove("b")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = l.Remove("never there")
	require.NoError(t, err)
	require.False(t, removed)

	// Order survives the round trip.
	reloaded := Load(path)
	require.Equal(t, []string{"a", "c"}, reloaded.Items())
}

func TestItems_ReturnsSnapshotCopy(t *testing.T) {
	t.Parallel()

	l := Load(filepath.Join(t.TempDir(), "watchlist.json"))
	require.NoError(t, l.Add("a"))

	items := l.Items()
	items[0] = "mutated"
	require.Equal(t, []string{"a"}, l.Items())
}
