package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/8ria/pulse/schema"
)

// Default values for configuration.
const (
	DefaultUsername    = "8ria"
	DefaultReadme      = "README.md"
	DefaultWindow      = "30 days"
	DefaultBlogURL     = "https://8ria.github.io/index.html"
	DefaultBlogBaseURL = "https://andriak.com"
	DefaultGraphQLURL  = "https://api.github.com/graphql"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
	MaxToleranceMin    = 720
)

// Config holds the runtime configuration for pulse.
// This struct remains the "final, validated" config.
type Config struct {
	Username   string
	ReadmePath string

	WindowDays int       // Rolling window in whole days, used when Since is zero
	Since      time.Time // Fixed start date; when set, totals are counted from here

	BlogEnabled bool
	BlogURL     string
	BlogBaseURL string

	TemplateFile string
	Template     string // Template text, either loaded from TemplateFile or empty for the default

	ScheduleBackend   schema.DatabaseBackend
	ScheduleDir       string
	ScheduleDBConnect string // Please use env var as this is plaintext
	Tolerance         int    // Minutes on either side of a slot

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	MetricsFile string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel    string
	GraphQLURL  string
	HTTPTimeout time.Duration

	Force  bool
	DryRun bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Username          string `mapstructure:"username"`
	Readme            string `mapstructure:"readme"`
	Window            string `mapstructure:"window"`
	Since             string `mapstructure:"since"`
	Blog              string `mapstructure:"blog"`
	BlogURL           string `mapstructure:"blog-url"`
	BlogBaseURL       string `mapstructure:"blog-base-url"`
	TemplateFile      string `mapstructure:"template-file"`
	ScheduleBackend   string `mapstructure:"schedule-backend"`
	ScheduleDir       string `mapstructure:"schedule-dir"`
	ScheduleDBConnect string `mapstructure:"schedule-db-connect"`
	Tolerance         int    `mapstructure:"tolerance"`
	HistoryBackend    string `mapstructure:"history-backend"`
	HistoryDBConnect  string `mapstructure:"history-db-connect"`
	MetricsFile       string `mapstructure:"metrics-file"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	LogLevel          string `mapstructure:"log-level"`
	GraphQLURL        string `mapstructure:"graphql-url"`
	HTTPTimeout       string `mapstructure:"http-timeout"`

	// --- Fields from runCmd.Flags() ---
	Force  bool `mapstructure:"force"`
	DryRun bool `mapstructure:"dry-run"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTemplate(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the network backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter or be a postgres:// URL")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile
	cfg.Force = input.Force
	cfg.DryRun = input.DryRun

	cfg.Username = strings.TrimSpace(input.Username)
	if cfg.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	cfg.ReadmePath = strings.TrimSpace(input.Readme)
	if cfg.ReadmePath == "" {
		return fmt.Errorf("readme path cannot be empty")
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	blog, err := ParseBoolString(input.Blog)
	if err != nil {
		return fmt.Errorf("invalid --blog value: %w", err)
	}
	cfg.BlogEnabled = blog
	cfg.BlogURL = input.BlogURL
	cfg.BlogBaseURL = strings.TrimRight(input.BlogBaseURL, "/")
	if cfg.BlogEnabled && (cfg.BlogURL == "" || cfg.BlogBaseURL == "") {
		return fmt.Errorf("blog-url and blog-base-url are required when blog is enabled")
	}

	// --- 1. Tolerance Validation ---
	if input.Tolerance < 0 || input.Tolerance > MaxToleranceMin {
		return fmt.Errorf("tolerance must be between 0 and %d minutes (received %d)", MaxToleranceMin, input.Tolerance)
	}
	cfg.Tolerance = input.Tolerance

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}

	// --- 3. Remote endpoints ---
	cfg.GraphQLURL = input.GraphQLURL
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.HTTPTimeout != "" {
		d, err := time.ParseDuration(input.HTTPTimeout)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid http-timeout '%s'. expected a non-negative duration like 30s", input.HTTPTimeout)
		}
		cfg.HTTPTimeout = d
	}

	// --- 4. Log level ---
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("invalid log-level '%s'. must be trace, debug, info, warn, error, disabled", input.LogLevel)
	}

	return nil
}

// processWindow resolves the stats window: either a rolling window or a fixed start date.
func processWindow(cfg *Config, input *ConfigRawInput) error {
	cfg.Since = time.Time{}
	if s := strings.TrimSpace(input.Since); s != "" {
		t, err := time.Parse(schema.DateLayout, s)
		if err != nil {
			return fmt.Errorf("invalid since date '%s'. expected YYYY-MM-DD: %w", s, err)
		}
		cfg.Since = t
	}

	window := input.Window
	if window == "" {
		window = DefaultWindow
	}
	d, err := ParseLookbackDuration(window)
	if err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	days := int(d / (24 * time.Hour))
	if days < 1 {
		return fmt.Errorf("window must cover at least one day (received %s)", window)
	}
	cfg.WindowDays = days
	return nil
}

// validateBackendConfigs validates schedule and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Schedule Backend Validation ---
	cfg.ScheduleBackend = schema.DatabaseBackend(strings.ToLower(input.ScheduleBackend))
	if cfg.ScheduleBackend == "" {
		cfg.ScheduleBackend = schema.FileBackend
	}
	if _, ok := schema.ValidScheduleBackends[cfg.ScheduleBackend]; !ok {
		return fmt.Errorf("invalid schedule backend '%s'. must be file, sqlite, mysql, postgresql, redis, memory", input.ScheduleBackend)
	}
	cfg.ScheduleDir = input.ScheduleDir
	if cfg.ScheduleDir == "" {
		cfg.ScheduleDir = "."
	}
	cfg.ScheduleDBConnect = input.ScheduleDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ScheduleBackend, cfg.ScheduleDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Both stores on one SQLite file would fight over the single connection.
	if cfg.ScheduleBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		schedulePath := cfg.ScheduleDBConnect
		if schedulePath == "" {
			schedulePath = GetScheduleDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if schedulePath == historyPath {
			return fmt.Errorf("schedule and history storage must use different SQLite database files. Both resolve to %q", schedulePath)
		}
	}

	return nil
}

// processTemplate loads a custom block template from disk when one is configured.
func processTemplate(cfg *Config, input *ConfigRawInput) error {
	cfg.TemplateFile = strings.TrimSpace(input.TemplateFile)
	cfg.Template = ""
	if cfg.TemplateFile == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.TemplateFile)
	if err != nil {
		return fmt.Errorf("failed to read template file %q: %w", cfg.TemplateFile, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("template file %q is empty", cfg.TemplateFile)
	}
	cfg.Template = string(data)
	return nil
}
