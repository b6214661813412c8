// Package config provides configuration management for the framebench CLI.
// Values are resolved with koanf from defaults, an optional framebench.yaml,
// FRAMEBENCH_-prefixed environment variables, and command-line flags, in
// ascending precedence.
package config

// Defaults for unset configuration values.
const (
	DefaultEngine   = "duckdb"
	DefaultDatabase = ":memory:"
	DefaultHistory  = ".framebench/history.db"
	DefaultRows     = 1_000_000
	DefaultCols     = 50
	DefaultBins     = 5
	DefaultSeed     = 42
	DefaultOutput   = "table"
)

// Config holds all CLI configuration options.
type Config struct {
	// Engine is the tabular engine benchmarks run against.
	Engine string `koanf:"engine"`

	// Database is the engine's database path (":memory:" by default).
	Database string `koanf:"database"`

	// History is the path of the SQLite run history database.
	History string `koanf:"history"`

	// Rows and Cols size each generated dataset.
	Rows int `koanf:"rows"`
	Cols int `koanf:"cols"`

	// Bins is the bucket count for the group_aggregate stage.
	Bins int `koanf:"bins"`

	// Seed drives the deterministic data generator.
	Seed uint64 `koanf:"seed"`

	// OutputFormat selects report rendering (table|json).
	OutputFormat string `koanf:"output"`

	// NoChart suppresses the bar chart under the timing table.
	NoChart bool `koanf:"no_chart"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
