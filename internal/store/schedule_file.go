package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

const (
	scheduleFilePrefix = ".schedule_"
	scheduleFileSuffix = ".json"
)

// FileScheduleStore keeps one JSON file per date inside a directory.
type FileScheduleStore struct {
	dir string
}

var _ contract.ScheduleStore = &FileScheduleStore{} // Compile-time check

// NewFileScheduleStore returns a store rooted at dir, creating it if needed.
func NewFileScheduleStore(dir string) (*FileScheduleStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create schedule directory %s: %w", dir, err)
	}
	return &FileScheduleStore{dir: dir}, nil
}

// Path returns the file that holds key.
func (s *FileScheduleStore) Path(key string) string {
	return filepath.Join(s.dir, scheduleFilePrefix+key+scheduleFileSuffix)
}

// checkKey rejects keys that are not calendar dates, which also keeps paths inside dir.
func checkKey(key string) error {
	if _, err := time.Parse(schema.DateLayout, key); err != nil {
		return fmt.Errorf("invalid schedule key %q: expected YYYY-MM-DD", key)
	}
	return nil
}

// Get implements the ScheduleStore interface.
func (s *FileScheduleStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, contract.ErrNotFound
	}
	return data, err
}

// PutIfAbsent implements the ScheduleStore interface.
// The value is fully written and synced to a temp file, then hard-linked into place,
// so the final name only ever appears with complete content and never replaces an
// existing schedule.
func (s *FileScheduleStore) PutIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(s.dir, scheduleFilePrefix+key+".tmp.*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}

	if err := os.Link(tmpName, s.Path(key)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, contract.SyncDir(s.dir)
}

// Keys implements the ScheduleStore interface.
func (s *FileScheduleStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if key, ok := keyFromFileName(e); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func keyFromFileName(e fs.DirEntry) (string, bool) {
	if e.IsDir() {
		return "", false
	}
	name := e.Name()
	if !strings.HasPrefix(name, scheduleFilePrefix) || !strings.HasSuffix(name, scheduleFileSuffix) {
		return "", false
	}
	key := strings.TrimSuffix(strings.TrimPrefix(name, scheduleFilePrefix), scheduleFileSuffix)
	if checkKey(key) != nil {
		return "", false
	}
	return key, true
}

// Delete implements the ScheduleStore interface.
func (s *FileScheduleStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements the ScheduleStore interface.
func (s *FileScheduleStore) Close() error { return nil }

// GetStatus implements the ScheduleStore interface.
func (s *FileScheduleStore) GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error) {
	status := schema.ScheduleStoreStatus{
		Backend:  string(schema.FileBackend),
		Location: s.dir,
	}
	if abs, err := filepath.Abs(s.dir); err == nil {
		status.Location = abs
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to list schedule files: %w", err)
	}
	status.Connected = true
	status.TotalEntries = len(keys)
	if len(keys) > 0 {
		status.OldestKey = keys[0]
		status.NewestKey = keys[len(keys)-1]
	}
	for _, key := range keys {
		if info, err := os.Stat(s.Path(key)); err == nil {
			status.SizeBytes += info.Size()
		}
	}
	return status, nil
}
