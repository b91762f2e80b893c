package config

// Project defaults.
const (
	DefaultMaxFileSize   = "1MB"
	DefaultIncludeVendor = false
)

// DefaultExtensions are the source extensions loaded by default.
var DefaultExtensions = []string{".ts", ".html"}

// Migration defaults.
const (
	DefaultStrict = false
)

// Backup defaults.
const (
	DefaultBackupEnabled = true
	DefaultBackupDir     = ""
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultSampleRatio  = 0.0
)
