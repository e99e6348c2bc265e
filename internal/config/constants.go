package config

import "time"

// Session lifetime and rotation
const (
	SessionTTL             = 15 * time.Minute
	SecretRotationInterval = 15 * time.Minute
)

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Upload limits
const (
	MaxUploadSize = 20 << 20 // 20MB, chart images can be large
	MaxBodySize   = 1 << 20  // 1MB for JSON endpoints
)
