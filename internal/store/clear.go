package store

import (
	"context"
	"fmt"
	"os"

	"github.com/8ria/pulse/schema"
)

// ClearSchedules removes every stored schedule from the configured backend.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the table.
// For file, memory and redis it deletes the keys one by one through the store.
func ClearSchedules(ctx context.Context, backend schema.DatabaseBackend, dir, connStr string) (int, error) {
	switch backend {
	case schema.SQLiteBackend:
		path := connStr
		if path == "" {
			path = GetScheduleDBFilePath()
		}
		return 0, removeFile(path)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return 0, dropSQLTables(ctx, backend, connStr, scheduleTable)

	default:
		s, err := NewScheduleStore(ctx, backend, dir, connStr)
		if err != nil {
			return 0, err
		}
		defer func() { _ = s.Close() }()

		keys, err := s.Keys(ctx)
		if err != nil {
			return 0, err
		}
		for i, key := range keys {
			if err := s.Delete(ctx, key); err != nil {
				return i, fmt.Errorf("failed to delete schedule %s: %w", key, err)
			}
		}
		return len(keys), nil
	}
}

// ClearHistory clears the run history for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the runs table.
// For NoneBackend, it does nothing.
func ClearHistory(ctx context.Context, backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		path := connStr
		if path == "" {
			path = GetHistoryDBFilePath()
		}
		return removeFile(path)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		// schema_migrations goes too, so a later migrate starts from scratch
		return dropSQLTables(ctx, backend, connStr, runsTable, "schema_migrations")

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

func removeFile(path string) error {
	if path == ":memory:" {
		return nil
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
	}
	return nil
}
