// Package constants provides shared constants for the staffing-forecast application.
package constants

// Sizing constants
const (
	// BaseHoursPerDay is the paid working time of one FTE per day, before
	// productivity and idle time are taken into account.
	BaseHoursPerDay = 8.0

	// MinutesPerHour converts task minutes into hours.
	MinutesPerHour = 60.0

	// DefaultWorkingDaysPerYear is the calendar used to turn annual volumes
	// into daily volumes when a scenario does not set its own.
	DefaultWorkingDaysPerYear = 264.0

	// FTERoundingThreshold is the raw FTE at or under which the rounded
	// target is reported as zero.
	FTERoundingThreshold = 0.1

	// DefaultProductivityPct replaces an unset or non-positive productivity in
	// per-unit task time. Net capacity uses the value as given.
	DefaultProductivityPct = 100.0

	// MaxPercentage bounds productivity-like percentages.
	MaxPercentage = 200.0

	// MaxSharePercentage bounds split percentages (international, axes).
	MaxSharePercentage = 100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DefaultShiftMultiplier applies when the shift multiplier is unset.
	DefaultShiftMultiplier = 1.0

	// DefaultComplexity is the neutral complexity multiplier.
	DefaultComplexity = 1.0
)

// ComplexityLevels lists the allowed circulation and geographic complexity
// multipliers in ascending order.
var ComplexityLevels = []float64{1.0, 1.25, 1.5}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTLSeconds is how long cached simulation results live in Redis.
	DefaultCacheTTLSeconds = 300

	// CacheKeyPrefix namespaces simulation results in the cache.
	CacheKeyPrefix = "staffing:sim:"
)
