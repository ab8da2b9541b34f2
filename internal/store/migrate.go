package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the schema version this build targets.
const SchemaVersion = 2

const appVersion = "2.0"

const createSchemaVersionTable = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL,
		description TEXT,
		migration_time_ms INTEGER DEFAULT 0,
		application_version TEXT DEFAULT '2.0'
	)`

const createMarketDataTable = `
	CREATE TABLE IF NOT EXISTS market_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		skin TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		lowest_price REAL NOT NULL,
		median_price REAL NOT NULL DEFAULT 0.0,
		volume INTEGER NOT NULL DEFAULT 0,
		spread_absolute REAL NOT NULL DEFAULT 0.0,
		spread_percentage REAL NOT NULL DEFAULT 0.0
	)`

var createIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_skin_timestamp ON market_data(skin, timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_timestamp ON market_data(timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_skin ON market_data(skin)",
	"CREATE INDEX IF NOT EXISTS idx_skin_latest ON market_data(skin, timestamp DESC)",
	"CREATE INDEX IF NOT EXISTS idx_price_range ON market_data(lowest_price, timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_volume_analysis ON market_data(volume DESC, timestamp)",
}

var createViews = []string{
	`CREATE VIEW IF NOT EXISTS daily_summary AS
	SELECT
		skin,
		DATE(timestamp) AS date,
		MIN(lowest_price) AS daily_min,
		MAX(lowest_price) AS daily_max,
		AVG(lowest_price) AS daily_avg,
		SUM(volume) AS daily_volume,
		COUNT(*) AS data_points
	FROM market_data
	GROUP BY skin, DATE(timestamp)`,

	`CREATE VIEW IF NOT EXISTS latest_prices AS
	SELECT DISTINCT
		skin,
		FIRST_VALUE(lowest_price) OVER (
			PARTITION BY skin ORDER BY timestamp DESC
		) AS current_price,
		FIRST_VALUE(median_price) OVER (
			PARTITION BY skin ORDER BY timestamp DESC
		) AS current_median,
		FIRST_VALUE(volume) OVER (
			PARTITION BY skin ORDER BY timestamp DESC
		) AS current_volume,
		FIRST_VALUE(timestamp) OVER (
			PARTITION BY skin ORDER BY timestamp DESC
		) AS last_updated
	FROM market_data`,
}

type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// The chain is append-only: a v3 step goes at the end, the driver loop stays
// untouched.
var migrations = []migration{
	{
		version:     1,
		description: "Initial schema creation",
		apply:       migrateInitialSchema,
	},
	{
		version:     2,
		description: "Enhanced market data with spread analysis",
		apply:       migrateMarketMetrics,
	},
}

// StepReport describes one applied migration step.
type StepReport struct {
	Version     int
	Description string
	Duration    time.Duration
}

// MigrationReport summarizes one Migrate call. Steps is empty when the store
// was already at the target version.
type MigrationReport struct {
	From  int
	To    int
	Steps []StepReport
}

// CurrentVersion returns the highest recorded schema version, or 0 for a
// fresh store without a version ledger.
func (s *Store) CurrentVersion() (int, error) {
	var version int
	err := s.db.QueryRow(
		"SELECT version FROM schema_version ORDER BY version DESC LIMIT 1",
	).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil && strings.Contains(err.Error(), "no such table"):
		// Fresh install, the ledger does not exist yet.
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate carries the store from its recorded version to SchemaVersion,
// step by step. Each step runs in one transaction, records its ledger row
// with the measured duration, and is preceded by a file backup. A store
// newer than SchemaVersion fails immediately with ErrNewerSchema.
func (s *Store) Migrate() (*MigrationReport, error) {
	current, err := s.CurrentVersion()
	if err != nil {
		return nil, err
	}
	report := &MigrationReport{From: current, To: SchemaVersion}

	if current > SchemaVersion {
		return nil, fmt.Errorf("store is at schema v%d, this build supports v%d: %w",
			current, SchemaVersion, ErrNewerSchema)
	}
	if current == SchemaVersion {
		return report, nil
	}

	s.log.Info("migrating schema", "from", current, "to", SchemaVersion)

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		step, err := s.applyMigration(current, m)
		if err != nil {
			return nil, err
		}
		report.Steps = append(report.Steps, step)
		current = m.version
	}

	s.log.Info("schema migration complete", "version", current, "steps", len(report.Steps))
	return report, nil
}

func (s *Store) applyMigration(from int, m migration) (StepReport, error) {
	if _, err := s.backup(fmt.Sprintf("v%d_to_v%d", from, m.version)); err != nil {
		return StepReport{}, &MigrationError{From: from, To: m.version, Cause: err}
	}

	start := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return StepReport{}, &MigrationError{From: from, To: m.version, Cause: err}
	}
	if err := m.apply(tx); err != nil {
		_ = tx.Rollback()
		return StepReport{}, &MigrationError{From: from, To: m.version, Cause: err}
	}
	elapsed := time.Since(start)
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO schema_version
		 (version, applied_at, description, migration_time_ms, application_version)
		 VALUES (?, ?, ?, ?, ?)`,
		m.version, time.Now().Format(timestampLayout), m.description,
		elapsed.Milliseconds(), appVersion,
	); err != nil {
		_ = tx.Rollback()
		return StepReport{}, &MigrationError{From: from, To: m.version, Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return StepReport{}, &MigrationError{From: from, To: m.version, Cause: err}
	}

	s.log.Info("migration step applied",
		"version", m.version, "description", m.description, "elapsed", elapsed)
	return StepReport{Version: m.version, Description: m.description, Duration: elapsed}, nil
}

func migrateInitialSchema(tx *sql.Tx) error {
	if _, err := tx.Exec(createSchemaVersionTable); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	if _, err := tx.Exec(createMarketDataTable); err != nil {
		return fmt.Errorf("create market_data: %w", err)
	}
	for _, stmt := range createIndexes {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	for _, stmt := range createViews {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}
	return nil
}

func migrateMarketMetrics(tx *sql.Tx) error {
	existing, err := tableColumns(tx, "market_data")
	if err != nil {
		return err
	}

	newColumns := []struct{ name, def string }{
		{"median_price", "median_price REAL NOT NULL DEFAULT 0.0"},
		{"volume", "volume INTEGER NOT NULL DEFAULT 0"},
		{"spread_absolute", "spread_absolute REAL NOT NULL DEFAULT 0.0"},
		{"spread_percentage", "spread_percentage REAL NOT NULL DEFAULT 0.0"},
	}
	for _, col := range newColumns {
		if existing[col.name] {
			continue
		}
		if _, err := tx.Exec("ALTER TABLE market_data ADD COLUMN " + col.def); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}

	for _, stmt := range createIndexes {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	for _, stmt := range createViews {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}

	// Backfill rows written before median_price existed.
	if _, err := tx.Exec(
		"UPDATE market_data SET median_price = lowest_price WHERE median_price = 0.0 AND lowest_price > 0",
	); err != nil {
		return fmt.Errorf("backfill median_price: %w", err)
	}
	return nil
}

func tableColumns(tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
