package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/google/uuid"
)

// runsTable is the name of the table for run history.
const runsTable = "pulse_runs"

// runColumns is the column list shared by every SELECT on runsTable.
const runColumns = `run_id, started_at, finished_at, duration_ms, schedule_date, outcome,
	slot_matched, total_contributions, streak, blog_title, error_message`

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// NoneBackend returns a store that records nothing.
func NewHistoryStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	switch backend {
	case schema.NoneBackend:
		return &HistoryStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	db, err := openSQL(ctx, backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, getCreateRunsTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// getCreateRunsTableQuery returns the CREATE TABLE query for pulse_runs.
// It matches the first embedded migration of each backend.
func getCreateRunsTableQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				started_at DATETIME(6) NOT NULL,
				finished_at DATETIME(6),
				duration_ms BIGINT,
				schedule_date VARCHAR(10) NOT NULL,
				outcome VARCHAR(16),
				slot_matched INT,
				total_contributions INT,
				streak INT,
				blog_title TEXT,
				error_message TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				started_at TIMESTAMPTZ NOT NULL,
				finished_at TIMESTAMPTZ,
				duration_ms BIGINT,
				schedule_date TEXT NOT NULL,
				outcome TEXT,
				slot_matched INT,
				total_contributions INT,
				streak INT,
				blog_title TEXT,
				error_message TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				started_at TEXT NOT NULL,
				finished_at TEXT,
				duration_ms INTEGER,
				schedule_date TEXT NOT NULL,
				outcome TEXT,
				slot_matched INTEGER,
				total_contributions INTEGER,
				streak INTEGER,
				blog_title TEXT,
				error_message TEXT
			);
		`, quotedTableName)
	}
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(ctx context.Context, startedAt time.Time, scheduleDate string) (string, error) {
	if hs.disabled() {
		return "", nil
	}

	runID := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (run_id, started_at, schedule_date) VALUES (%s)`,
		quoteTableName(runsTable, hs.backend), placeholders(hs.backend, 3))
	if _, err := hs.db.ExecContext(ctx, query, runID, formatTime(startedAt, hs.backend), scheduleDate); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(ctx context.Context, runID string, result schema.RunResult) error {
	if hs.disabled() || runID == "" {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	row := hs.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT started_at FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1)), runID)
	startedAt, err := hs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get started_at for run %s: %w", runID, err)
	}

	var slot any
	if result.SlotMatched != nil {
		slot = *result.SlotMatched
	}
	var errMsg any
	if result.Error != "" {
		errMsg = result.Error
	}
	var blogTitle any
	if result.BlogTitle != "" {
		blogTitle = result.BlogTitle
	}

	p := func(n int) string { return placeholder(hs.backend, n) }
	query := fmt.Sprintf(`UPDATE %s SET finished_at = %s, duration_ms = %s, outcome = %s, slot_matched = %s,
		total_contributions = %s, streak = %s, blog_title = %s, error_message = %s WHERE run_id = %s`,
		quotedTableName, p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9))

	_, err = hs.db.ExecContext(ctx, query,
		formatTime(result.FinishedAt, hs.backend),
		result.FinishedAt.Sub(startedAt).Milliseconds(),
		string(result.Outcome),
		slot,
		result.Total,
		result.Streak,
		blogTitle,
		errMsg,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// scanTime reads a single timestamp column in the backend's storage format.
func (hs *HistoryStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseTime(s)
	}
	var t time.Time
	if err := row.Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ListRuns returns the most recent runs first; limit <= 0 returns all of them.
func (hs *HistoryStoreImpl) ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY started_at DESC", runColumns, quoteTableName(runsTable, hs.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := hs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		dest := []any{
			&record.RunID, nil, nil, &record.DurationMs, &record.ScheduleDate, &record.Outcome,
			&record.SlotMatched, &record.Total, &record.Streak, &record.BlogTitle, &record.ErrorMessage,
		}

		switch hs.backend {
		case schema.SQLiteBackend:
			var startedStr string
			var finishedStr *string
			dest[1], dest[2] = &startedStr, &finishedStr
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartedAt, err = parseTime(startedStr); err != nil {
				return nil, fmt.Errorf("failed to parse started_at: %w", err)
			}
			if finishedStr != nil {
				finished, err := parseTime(*finishedStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse finished_at: %w", err)
				}
				record.FinishedAt = &finished
			}
		default: // MySQL and PostgreSQL store native timestamps
			dest[1], dest[2] = &record.StartedAt, &record.FinishedAt
			if err := rows.Scan(dest...); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			record.StartedAt = record.StartedAt.UTC()
			if record.FinishedAt != nil {
				finished := record.FinishedAt.UTC()
				record.FinishedAt = &finished
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:       string(hs.backend),
		Connected:     hs.db != nil,
		OutcomeCounts: make(map[string]int),
	}
	if hs.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	row := hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT run_id FROM %s ORDER BY started_at DESC LIMIT 1", quotedTableName))
	if err := row.Scan(&status.LastRunID); err != nil {
		return status, fmt.Errorf("failed to get last run id: %w", err)
	}

	var err error
	row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(started_at) FROM %s", quotedTableName))
	if status.LastRunTime, err = hs.scanTime(row); err != nil {
		return status, fmt.Errorf("failed to get last run time: %w", err)
	}
	row = hs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT MIN(started_at) FROM %s", quotedTableName))
	if status.OldestRunTime, err = hs.scanTime(row); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}

	rows, err := hs.db.QueryContext(ctx,
		fmt.Sprintf("SELECT COALESCE(outcome, 'running'), COUNT(*) FROM %s GROUP BY COALESCE(outcome, 'running')", quotedTableName))
	if err != nil {
		return status, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return status, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		status.OutcomeCounts[outcome] = count
	}
	return status, rows.Err()
}
