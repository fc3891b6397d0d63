package contract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/8ria/pulse/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	UpdatedColor = color.New(color.FgGreen, color.Bold) // UpdatedColor marks a rewritten README.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor represents standard danger.
	SkippedColor = color.New(color.FgYellow)            // SkippedColor is standard caution, not bold.
	InfoColor    = color.New(color.FgCyan)              // InfoColor is informational / low-priority signal.
)

// GetPlainLabel returns the plain text label for a run outcome.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(outcome schema.RunOutcome) string {
	switch outcome {
	case schema.OutcomeUpdated:
		return "Updated"
	case schema.OutcomeUnchanged:
		return "Unchanged"
	case schema.OutcomeDryRun:
		return "Dry run"
	case schema.OutcomeSkipped:
		return "Skipped"
	case schema.OutcomeFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// GetColorLabel returns a colored outcome label for console output (table).
func GetColorLabel(outcome schema.RunOutcome) string {
	text := GetPlainLabel(outcome)

	switch outcome {
	case schema.OutcomeUpdated:
		return UpdatedColor.Sprint(text)
	case schema.OutcomeFailed:
		return FailedColor.Sprint(text)
	case schema.OutcomeSkipped:
		return SkippedColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetScheduleDBFilePath returns the path to the SQLite DB file for schedule storage.
func GetScheduleDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulse_schedule.db"
	}
	return filepath.Join(homeDir, ".pulse_schedule.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulse_history.db"
	}
	return filepath.Join(homeDir, ".pulse_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// WriteFileAtomic replaces path with data through a synced temp file and a rename,
// so readers see either the old content or the new content and never a torn write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return SyncDir(dir)
}

// SyncDir flushes directory metadata so a completed rename survives a crash.
func SyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Sync()
}
