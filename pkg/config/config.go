// Package config provides configuration management for fghextractor.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid for the fields it sets
// - All mutations go through Option functions
// - Invalid options are rejected with gn.Warn(), config remains valid
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Run Parameters
//
// The target database name and location ids have no defaults. They are
// checked by CheckExtract() before any database is touched.
//
// # Environment Variables
//
// Use FGHEXTRACTOR_ prefix with underscores for nesting:
//
//	FGHEXTRACTOR_DATABASE_HOST=localhost
//	FGHEXTRACTOR_DATABASE_PORT=3306
//	FGHEXTRACTOR_EXTRACT_NEW_DATABASE=openmrs_subset
//	FGHEXTRACTOR_LOG_LEVEL=info
package config

// Config represents the complete fghextractor configuration.
type Config struct {
	// Database contains MySQL connection settings for the source database.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Extract contains settings of a single extraction run.
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the size of the worker pool that runs independent
	// copy tasks and closure queries.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains MySQL connection parameters.
type DatabaseConfig struct {
	// Host is the MySQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the MySQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the MySQL username. It needs rights to create and drop
	// databases.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the MySQL password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the source database the subset is extracted from.
	Database string `mapstructure:"database" yaml:"database"`

	// MaxConnections bounds the shared connection pool.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`

	// BatchSize is the number of rows copied by one paged INSERT ... SELECT.
	// Tables with fewer matching rows are copied by a single statement.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ExtractConfig contains settings for an extraction run.
type ExtractConfig struct {
	// NewDatabase is the name of the target database. It must not exist
	// before the run.
	NewDatabase string `mapstructure:"new_database" yaml:"new_database"`

	// LocationIDs select the patient population together with EndDate.
	LocationIDs []int `mapstructure:"location_ids" yaml:"location_ids"`

	// EndDate is the cutoff date in YYYY-MM-DD format. Empty means today.
	EndDate string `mapstructure:"end_date" yaml:"end_date"`

	// PatientQueryFile is the path to the SQL file selecting patient ids.
	// Empty means patients.sql in the config directory.
	PatientQueryFile string `mapstructure:"patient_query_file" yaml:"patient_query_file"`

	// ExcludedTables are never copied, not even their structure.
	ExcludedTables []string `mapstructure:"excluded_tables" yaml:"excluded_tables"`

	// StructureOnlyTables are created in the target without rows.
	StructureOnlyTables []string `mapstructure:"structure_only_tables" yaml:"structure_only_tables"`

	// RestrictByLocation limits rows of tables referencing location to the
	// configured LocationIDs.
	RestrictByLocation bool `mapstructure:"restrict_by_location" yaml:"restrict_by_location"`

	// DropTargetAfter drops the target database at the end of the run,
	// whether the run succeeded or not.
	DropTargetAfter bool `mapstructure:"drop_target_after" yaml:"drop_target_after"`

	// DumpDir is where the SQL dump and the run report are written.
	DumpDir string `mapstructure:"dump_dir" yaml:"dump_dir"`

	// SkipDump disables the mysqldump step.
	SkipDump bool `mapstructure:"skip_dump" yaml:"skip_dump"`

	// SchemaFile is an optional YAML file with a declared foreign key
	// graph. When empty, the graph is discovered from information_schema.
	SchemaFile string `mapstructure:"schema_file" yaml:"schema_file"`

	// MaxBackfillRounds bounds repeated backfill of newly discovered
	// person references.
	MaxBackfillRounds int `mapstructure:"max_backfill_rounds" yaml:"max_backfill_rounds"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           3306,
			User:           "openmrs",
			Password:       "openmrs",
			Database:       "openmrs",
			MaxConnections: 100,
			BatchSize:      20_000,
		},
		Extract: ExtractConfig{
			DumpDir:           ".",
			MaxBackfillRounds: 10,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: 5,
	}

	return res
}
