package config

import "time"

// Default values for configuration.
const (
	// Parsing defaults
	DefaultEncoding           = "windows-1251"
	DefaultSelfID             = 0
	DefaultProfileURLPrefix   = "https://vk.com/"
	DefaultTimezoneCorrection = 5 * time.Hour

	// Processing defaults. 0 означает runtime.GOMAXPROCS(0).
	DefaultWorkers = 0

	// Output defaults
	DefaultOutputDir = "."
	DefaultPretty    = false
	DefaultProgress  = true

	// Logging defaults
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultMaxFragmentLength = 256

	// DefaultConfigFile читается, если путь к конфигурации не указан явно.
	DefaultConfigFile = "config.yml"
)
