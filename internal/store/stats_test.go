package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceStatistics_Empty(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	stats := s.PriceStatistics(testSkin, 0)
	require.Zero(t, stats.Count)
	require.Empty(t, stats.Trend)
}

func TestPriceStatistics_SinglePointIsInsufficient(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, testSkin, "2026-01-01T00:00:00", 24.5, 24.5, 10)

	stats := s.PriceStatistics(testSkin, 0)
	require.Equal(t, 1, stats.Count)
	require.Equal(t, TrendInsufficient, stats.Trend)
	require.InDelta(t, 24.5, stats.Latest, 1e-9)
}

func TestPriceStatistics_RisingTrend(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, testSkin, "2026-01-01T00:00:00", 24.5, 24.5, 10)
	seedObservation(t, s, testSkin, "2026-01-02T00:00:00", 26.0, 26.0, 10)

	stats := s.PriceStatistics(testSkin, 0)
	require.Equal(t, 2, stats.Count)
	require.Equal(t, TrendRising, stats.Trend)
	require.InDelta(t, 24.5, stats.Min, 1e-9)
	require.InDelta(t, 26.0, stats.Max, 1e-9)
	require.InDelta(t, 26.0, stats.Latest, 1e-9)
	require.InDelta(t, 1.5, stats.Range, 1e-9)
	require.InDelta(t, 1.5, stats.TrendChange, 1e-9)
}

func TestPriceStatistics_FallingAndStable(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, "falling", "2026-01-01T00:00:00", 30, 30, 10)
	seedObservation(t, s, "falling", "2026-01-02T00:00:00", 20, 20, 10)
	seedObservation(t, s, "flat", "2026-01-01T00:00:00", 10, 10, 10)
	seedObservation(t, s, "flat", "2026-01-02T00:00:00", 10.005, 10, 10)

	require.Equal(t, TrendFalling, s.PriceStatistics("falling", 0).Trend)
	require.Equal(t, TrendStable, s.PriceStatistics("flat", 0).Trend)
}

func TestStats_Summary(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	seedObservation(t, s, "a", "2026-01-01T00:00:00", 10, 10, 10)
	seedObservation(t, s, "a", "2026-01-03T00:00:00", 11, 11, 10)
	seedObservation(t, s, "b", "2026-01-02T00:00:00", 20, 20, 10)

	sum := s.Stats()
	require.Empty(t, sum.Err)
	require.EqualValues(t, 3, sum.TotalRecords)
	require.EqualValues(t, 2, sum.UniqueSkins)
	require.Equal(t, "2026-01-01T00:00:00", sum.FirstRecord)
	require.Equal(t, "2026-01-03T00:00:00", sum.LastRecord)
	require.Equal(t, SchemaVersion, sum.SchemaVersion)
	require.Positive(t, sum.FileSizeBytes)
	require.Len(t, sum.TopSkins, 2)
	require.Equal(t, "a", sum.TopSkins[0].Skin)
	require.EqualValues(t, 2, sum.TopSkins[0].Records)
}

func TestStats_EmptyStore(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	sum := s.Stats()
	require.Empty(t, sum.Err)
	require.Zero(t, sum.TotalRecords)
	require.Empty(t, sum.FirstRecord)
}
