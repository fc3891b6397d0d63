package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/go-sql-driver/mysql"
)

// scheduleTable is the name of the table holding daily schedules.
const scheduleTable = "pulse_schedules"

// SQLScheduleStore keeps schedules in a SQL table keyed by date.
type SQLScheduleStore struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.ScheduleStore = &SQLScheduleStore{} // Compile-time check

// NewSQLScheduleStore opens a SQLite, MySQL or PostgreSQL schedule store and creates its table.
func NewSQLScheduleStore(ctx context.Context, tableName string, backend schema.DatabaseBackend, connStr string) (*SQLScheduleStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	db, err := openSQL(ctx, backend, connStr, contract.GetScheduleDBFilePath())
	if err != nil {
		return nil, err
	}

	query := getCreateScheduleTableQuery(tableName, backend)
	if _, err := db.ExecContext(ctx, query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &SQLScheduleStore{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateScheduleTableQuery returns the CREATE TABLE query for the given backend.
func getCreateScheduleTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				schedule_key VARCHAR(32) PRIMARY KEY,
				schedule_value TEXT NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				schedule_key TEXT PRIMARY KEY,
				schedule_value TEXT NOT NULL,
				updated_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				schedule_key TEXT PRIMARY KEY,
				schedule_value TEXT NOT NULL,
				updated_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// getInsertIfAbsentQuery returns an INSERT that leaves an existing row untouched.
func (s *SQLScheduleStore) getInsertIfAbsentQuery() string {
	quotedTableName := quoteTableName(s.tableName, s.backend)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT IGNORE INTO %s (schedule_key, schedule_value, updated_at) VALUES (?, ?, ?)`, quotedTableName)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (schedule_key, schedule_value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (schedule_key) DO NOTHING`, quotedTableName)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR IGNORE INTO %s (schedule_key, schedule_value, updated_at) VALUES (?, ?, ?)`, quotedTableName)
	}
}

// Get implements the ScheduleStore interface.
func (s *SQLScheduleStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT schedule_value FROM %s WHERE schedule_key = %s`,
		quoteTableName(s.tableName, s.backend), placeholder(s.backend, 1))

	var value string
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contract.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

// PutIfAbsent implements the ScheduleStore interface.
func (s *SQLScheduleStore) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.getInsertIfAbsentQuery(), key, string(value), time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Keys implements the ScheduleStore interface.
func (s *SQLScheduleStore) Keys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT schedule_key FROM %s ORDER BY schedule_key`, quoteTableName(s.tableName, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan schedule key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Delete implements the ScheduleStore interface.
func (s *SQLScheduleStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE schedule_key = %s`,
		quoteTableName(s.tableName, s.backend), placeholder(s.backend, 1))
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// Close closes the underlying DB connection.
func (s *SQLScheduleStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus implements the ScheduleStore interface.
func (s *SQLScheduleStore) GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error) {
	status := schema.ScheduleStoreStatus{
		Backend:   string(s.backend),
		Location:  s.location(),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(s.tableName, s.backend)
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	row = s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT MIN(schedule_key), MAX(schedule_key) FROM %s", quotedTableName))
	if err := row.Scan(&status.OldestKey, &status.NewestKey); err != nil {
		return status, fmt.Errorf("failed to get key range: %w", err)
	}

	// Estimate table size (approximate)
	switch s.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := s.db.QueryRowContext(ctx, sizeQuery).Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = 0
		}
	case schema.MySQLBackend:
		status.SizeBytes = int64(status.TotalEntries) * 256
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := s.db.QueryRowContext(ctx, sizeQuery, cfg.DBName, s.tableName).Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = int64(status.TotalEntries) * 256
		}
	case schema.PostgreSQLBackend:
		if err := s.db.QueryRowContext(ctx, "SELECT pg_total_relation_size($1)", s.tableName).Scan(&status.SizeBytes); err != nil {
			status.SizeBytes = int64(status.TotalEntries) * 256
		}
	}

	return status, nil
}

func (s *SQLScheduleStore) location() string {
	switch s.backend {
	case schema.SQLiteBackend:
		if s.connStr == "" {
			return contract.GetScheduleDBFilePath()
		}
		return s.connStr
	case schema.MySQLBackend:
		if cfg, err := mysql.ParseDSN(s.connStr); err == nil {
			return fmt.Sprintf("%s/%s", cfg.Addr, cfg.DBName)
		}
	}
	return s.tableName
}
