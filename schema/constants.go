package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents a storage backend for schedules or run history.
	DatabaseBackend string

	// RunOutcome represents how a single invocation of the updater ended.
	RunOutcome string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
)

// All storage backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default for schedules
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	MemoryBackend     DatabaseBackend = "memory"
	NoneBackend       DatabaseBackend = "none" // default for history
)

// All run outcomes recorded in the history store.
const (
	OutcomeSkipped   RunOutcome = "skipped"
	OutcomeUpdated   RunOutcome = "updated"
	OutcomeUnchanged RunOutcome = "unchanged"
	OutcomeDryRun    RunOutcome = "dry_run"
	OutcomeFailed    RunOutcome = "failed"
)

// Schedule generation and matching constants.
const (
	MinutesPerDay    = 1440
	MinRunsPerDay    = 1
	MaxRunsPerDay    = 30
	JitterMinutes    = 15
	DefaultTolerance = 10
)

// Markers that delimit the stats block inside the README.
const (
	StartMarker = "<!--START_STATS-->"
	EndMarker   = "<!--END_STATS-->"
)

// DateLayout is the canonical calendar date format used as store key.
const DateLayout = "2006-01-02"

// TimestampLayout is the timestamp format rendered into the stats block.
const TimestampLayout = "2006-01-02 15:04 UTC"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidScheduleBackends lists all backends that can hold daily schedules.
var ValidScheduleBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	MemoryBackend:     {},
}

// ValidHistoryBackends lists all backends that can hold run history.
var ValidHistoryBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllRunOutcomes returns every outcome in a stable display order.
var AllRunOutcomes = []RunOutcome{OutcomeUpdated, OutcomeUnchanged, OutcomeDryRun, OutcomeSkipped, OutcomeFailed}
