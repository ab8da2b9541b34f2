package store

import (
	"fmt"
	"strings"
	"time"
)

// MarketMetrics carries the five market fields of one quote.
type MarketMetrics struct {
	LowestPrice      float64
	MedianPrice      float64
	Volume           int64
	SpreadAbsolute   float64
	SpreadPercentage float64
}

// Observation is one persisted, immutable market snapshot row.
type Observation struct {
	Skin      string
	Timestamp string
	MarketMetrics
}

// Insert writes one observation for skin, stamped with the current local
// time at second precision. The skin must be non-empty after trimming and
// metrics must be present; the numeric values themselves are stored as-is.
func (s *Store) Insert(skin string, m *MarketMetrics) error {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return fmt.Errorf("empty skin name: %w", ErrInvalidArgument)
	}
	if m == nil {
		return fmt.Errorf("nil market metrics: %w", ErrInvalidArgument)
	}

	ts := time.Now().Format(timestampLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO market_data
		 (skin, timestamp, lowest_price, median_price, volume, spread_absolute, spread_percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		skin, ts, m.LowestPrice, m.MedianPrice, m.Volume, m.SpreadAbsolute, m.SpreadPercentage,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert observation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}

	s.log.Debug("observation stored",
		"skin", skin, "lowest", m.LowestPrice, "median", m.MedianPrice, "volume", m.Volume)
	return nil
}

// History returns the observations for skin in chronological order. days
// restricts to the last N days; limit keeps only the N most recent rows
// (still returned ascending). Non-positive filters are ignored, and any
// storage failure yields an empty slice rather than an error.
func (s *Store) History(skin string, limit, days int) []Observation {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return nil
	}

	query := `SELECT timestamp, lowest_price, median_price, volume, spread_absolute, spread_percentage
		FROM market_data WHERE skin = ?`
	args := []any{skin}
	if days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days).Format(timestampLayout)
		query += " AND timestamp >= ?"
		args = append(args, cutoff)
	}

	latestFirst := limit > 0
	if latestFirst {
		// Take the newest rows, then flip back to chronological order.
		query += " ORDER BY timestamp DESC LIMIT ?"
		args = append(args, limit)
	} else {
		query += " ORDER BY timestamp ASC"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.log.Warn("history query failed", "skin", skin, "err", err)
		return nil
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		o := Observation{Skin: skin}
		if err := rows.Scan(&o.Timestamp, &o.LowestPrice, &o.MedianPrice,
			&o.Volume, &o.SpreadAbsolute, &o.SpreadPercentage); err != nil {
			s.log.Warn("history scan failed", "skin", skin, "err", err)
			return nil
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("history rows failed", "skin", skin, "err", err)
		return nil
	}

	if latestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// LatestPrice returns the most recent lowest price for skin. ok is false
// when no data exists or the read failed.
func (s *Store) LatestPrice(skin string) (price float64, ok bool) {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return 0, false
	}
	err := s.db.QueryRow(
		"SELECT lowest_price FROM market_data WHERE skin = ? ORDER BY timestamp DESC LIMIT 1",
		skin,
	).Scan(&price)
	if err != nil {
		return 0, false
	}
	return price, true
}

// CleanupOlderThan deletes observations strictly older than days and returns
// how many were removed. When rows qualify, a backup is written first, the
// delete runs in one transaction and the freed space is reclaimed.
func (s *Store) CleanupOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Format(timestampLayout)

	var count int64
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM market_data WHERE timestamp < ?", cutoff,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count old observations: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if _, err := s.backup("cleanup"); err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	res, err := tx.Exec("DELETE FROM market_data WHERE timestamp < ?", cutoff)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete old observations: %w", err)
	}
	deleted, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}

	// VACUUM cannot run inside a transaction.
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.log.Warn("vacuum after cleanup failed", "err", err)
	}

	s.log.Info("old observations removed", "deleted", deleted, "keep_days", days)
	return deleted, nil
}
