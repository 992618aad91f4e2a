package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Grade Journal"
	AppVersion = "1.0.0"

	// DefaultStorageKey is the slot key the journal snapshot lives under.
	DefaultStorageKey = "gradeBook"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultExportsDir = "exports"

	// Operations
	DefaultOperationTimeout = 2 * time.Minute
	DefaultMaxUploadBytes   = 10 << 20 // 10MB
	DefaultPreviewLimit     = 10
)
