package store

import (
	"fmt"
)

// IntegrityIssue is one finding of ValidateIntegrity. Fatal issues also
// surface as an error; advisory ones are informational.
type IntegrityIssue struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
	Count  int64  `json:"count"`
	Fatal  bool   `json:"fatal"`
}

// ValidateIntegrity scans the store read-only for empty required fields
// (fatal), malformed timestamps (advisory) and duplicate (skin, timestamp)
// pairs (advisory). Duplicates are tolerated by design; they are reported,
// never rejected.
func (s *Store) ValidateIntegrity() ([]IntegrityIssue, error) {
	var issues []IntegrityIssue

	var emptyValues int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM market_data
		 WHERE skin IS NULL OR skin = '' OR timestamp IS NULL OR timestamp = ''`,
	).Scan(&emptyValues); err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	if emptyValues > 0 {
		issues = append(issues, IntegrityIssue{
			Kind:   "empty_fields",
			Detail: fmt.Sprintf("%d rows with empty or NULL required fields", emptyValues),
			Count:  emptyValues,
			Fatal:  true,
		})
	}

	var badTimestamps int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM market_data
		 WHERE timestamp NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]T[0-9][0-9]:[0-9][0-9]:[0-9][0-9]*'`,
	).Scan(&badTimestamps); err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	if badTimestamps > 0 {
		issues = append(issues, IntegrityIssue{
			Kind:   "malformed_timestamps",
			Detail: fmt.Sprintf("%d rows with malformed timestamps", badTimestamps),
			Count:  badTimestamps,
		})
	}

	rows, err := s.db.Query(
		`SELECT skin, timestamp, COUNT(*) AS cnt
		 FROM market_data GROUP BY skin, timestamp HAVING cnt > 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	defer rows.Close()

	var dupGroups, dupRows int64
	for rows.Next() {
		var (
			skin, ts string
			cnt      int64
		)
		if err := rows.Scan(&skin, &ts, &cnt); err != nil {
			return nil, fmt.Errorf("integrity scan: %w", err)
		}
		dupGroups++
		dupRows += cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	if dupGroups > 0 {
		issues = append(issues, IntegrityIssue{
			Kind:   "duplicate_timestamps",
			Detail: fmt.Sprintf("%d skin/timestamp pairs with duplicates (%d rows)", dupGroups, dupRows),
			Count:  dupGroups,
		})
	}

	for _, issue := range issues {
		if issue.Fatal {
			return issues, fmt.Errorf("%s: %w", issue.Detail, ErrIntegrity)
		}
		s.log.Warn("integrity finding", "kind", issue.Kind, "detail", issue.Detail)
	}
	return issues, nil
}
