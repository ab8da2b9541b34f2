package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedObservation writes a row with an explicit timestamp so tests can
// control ordering and age.
func seedObservation(t *testing.T, s *Store, skin, ts string, lowest, median float64, volume int64) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO market_data
		 (skin, timestamp, lowest_price, median_price, volume, spread_absolute, spread_percentage)
		 VALUES (?, ?, ?, ?, ?, 0, 0)`,
		skin, ts, lowest, median, volume,
	)
	require.NoError(t, err)
}

func TestOpen_CreatesFileAndDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "prices.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, path, s.Path())
	require.FileExists(t, path)
}

func TestOpenReadOnly_MissingFileFails(t *testing.T) {
	t.Parallel()

	s, err := OpenReadOnly(filepath.Join(t.TempDir(), "absent.db"))
	if err == nil {
		// modernc defers file access, the first query surfaces the failure.
		defer s.Close()
		err = s.db.Ping()
	}
	require.Error(t, err)
}
