package store

import (
	"math"
	"os"
)

// Trend classifications for PriceStats.
const (
	TrendStable       = "stable"
	TrendRising       = "rising"
	TrendFalling      = "falling"
	TrendInsufficient = "insufficient_data"
)

// PriceStats summarizes the lowest-price series of one skin.
type PriceStats struct {
	Count       int     `json:"count"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Average     float64 `json:"average"`
	Range       float64 `json:"range"`
	Latest      float64 `json:"latest"`
	Trend       string  `json:"trend"`
	TrendChange float64 `json:"trend_change"`
}

// PriceStatistics computes basic statistics and a midpoint-split trend over
// the (optionally day-filtered) price history. Empty history or a failed
// read yields the zero value.
func (s *Store) PriceStatistics(skin string, days int) PriceStats {
	history := s.History(skin, 0, days)
	if len(history) == 0 {
		return PriceStats{}
	}

	prices := make([]float64, len(history))
	for i, o := range history {
		prices[i] = o.LowestPrice
	}

	stats := PriceStats{
		Count:  len(prices),
		Min:    prices[0],
		Max:    prices[0],
		Latest: prices[len(prices)-1],
	}
	var sum float64
	for _, p := range prices {
		sum += p
		stats.Min = math.Min(stats.Min, p)
		stats.Max = math.Max(stats.Max, p)
	}
	stats.Average = sum / float64(len(prices))
	stats.Range = stats.Max - stats.Min

	if len(prices) < 2 {
		stats.Trend = TrendInsufficient
		return stats
	}

	mid := len(prices) / 2
	firstAvg := mean(prices[:mid])
	secondAvg := mean(prices[mid:])
	change := secondAvg - firstAvg
	stats.TrendChange = change
	switch {
	case math.Abs(change) < 0.01:
		stats.Trend = TrendStable
	case change > 0:
		stats.Trend = TrendRising
	default:
		stats.Trend = TrendFalling
	}
	return stats
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SkinCount is one entry of the per-skin row count ranking.
type SkinCount struct {
	Skin    string `json:"skin"`
	Records int64  `json:"records"`
}

// Summary is a read-only diagnostics snapshot of the store. Err carries any
// collection failure so the summary stays safe to log during startup.
type Summary struct {
	TotalRecords  int64       `json:"total_records"`
	UniqueSkins   int64       `json:"unique_skins"`
	FirstRecord   string      `json:"first_record"`
	LastRecord    string      `json:"last_record"`
	FileSizeBytes int64       `json:"file_size_bytes"`
	SchemaVersion int         `json:"schema_version"`
	TopSkins      []SkinCount `json:"top_skins"`
	Err           string      `json:"error,omitempty"`
}

// Stats collects the diagnostics summary. It never returns an error; a
// failure is recorded in Summary.Err instead.
func (s *Store) Stats() Summary {
	var sum Summary

	if err := s.db.QueryRow("SELECT COUNT(*) FROM market_data").Scan(&sum.TotalRecords); err != nil {
		sum.Err = err.Error()
		return sum
	}
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT skin) FROM market_data").Scan(&sum.UniqueSkins); err != nil {
		sum.Err = err.Error()
		return sum
	}

	var first, last *string
	if err := s.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM market_data").Scan(&first, &last); err != nil {
		sum.Err = err.Error()
		return sum
	}
	if first != nil {
		sum.FirstRecord = *first
	}
	if last != nil {
		sum.LastRecord = *last
	}

	if info, err := os.Stat(s.path); err == nil {
		sum.FileSizeBytes = info.Size()
	}

	version, err := s.CurrentVersion()
	if err != nil {
		sum.Err = err.Error()
		return sum
	}
	sum.SchemaVersion = version

	rows, err := s.db.Query(
		"SELECT skin, COUNT(*) AS count FROM market_data GROUP BY skin ORDER BY count DESC LIMIT 5",
	)
	if err != nil {
		sum.Err = err.Error()
		return sum
	}
	defer rows.Close()
	for rows.Next() {
		var sc SkinCount
		if err := rows.Scan(&sc.Skin, &sc.Records); err != nil {
			sum.Err = err.Error()
			return sum
		}
		sum.TopSkins = append(sum.TopSkins, sc)
	}
	if err := rows.Err(); err != nil {
		sum.Err = err.Error()
	}
	return sum
}
