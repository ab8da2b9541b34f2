package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCSV_EmptyHistoryWritesNothing(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, s.ExportCSV(testSkin, out))
	_, err := os.Stat(out)
	require.True(t, os.IsNotExist(err), "no data must not leave a file behind")
}

func TestExportCSV_InvalidArguments(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	require.ErrorIs(t, s.ExportCSV("", "out.csv"), ErrInvalidArgument)
	require.ErrorIs(t, s.ExportCSV(testSkin, ""), ErrInvalidArgument)
}

func TestExportCSV_WritesMetadataHeaderAndRows(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, testSkin, "2026-01-01T00:00:00", 24.5, 26.0, 120)
	seedObservation(t, s, testSkin, "2026-01-02T00:00:00", 25.0, 26.5, 110)
	out := filepath.Join(t.TempDir(), "nested", "out.csv")

	require.NoError(t, s.ExportCSV(testSkin, out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(raw)
	require.True(t, strings.HasPrefix(text, "# Skin Price Tracker Export"))
	require.Contains(t, text, "# Skin: "+testSkin)
	require.Contains(t, text, "# Rows: 2")

	// The data block after the metadata lines is regular csv.
	idx := strings.Index(text, "timestamp,")
	require.Greater(t, idx, 0)
	records, err := csv.NewReader(strings.NewReader(text[idx:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, exportHeader, records[0])
	require.Equal(t, []string{"2026-01-01T00:00:00", "24.5", "26", "120", "0", "0"}, records[1])
}

func TestExportXLSX_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, testSkin, "2026-01-01T00:00:00", 24.5, 26.0, 120)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, s.ExportXLSX(testSkin, out))

	wb, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, exportHeader, rows[0])
	require.Equal(t, "2026-01-01T00:00:00", rows[1][0])
}

func TestExportXLSX_EmptyHistoryWritesNothing(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, s.ExportXLSX(testSkin, out))
	_, err := os.Stat(out)
	require.True(t, os.IsNotExist(err))
}
