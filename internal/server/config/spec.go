// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for syncboard-server.
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Board  BoardSection  `koanf:"board"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP listener that also carries the
// WebSocket upgrade endpoint.
type HTTPConfig struct {
	// Addr is the listen address. Binding to all interfaces is the
	// point of the tool, so the default has no host part.
	Addr string `koanf:"addr"`

	// RateLimitRPS is the per-peer request rate for the REST surface.
	// Zero disables rate limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// RateLimitBurst is the per-peer burst allowance.
	RateLimitBurst int `koanf:"rate_limit_burst"`
}

// BoardSection configures the shared board state and its limits.
type BoardSection struct {
	// MaxTextSize caps clipboard text length in bytes.
	MaxTextSize int `koanf:"max_text_size"`

	// MaxFileSize caps a single uploaded file in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`

	// MaxTotalSize caps aggregate stored file bytes. Files are held in
	// memory, so this bounds the server's footprint.
	MaxTotalSize int64 `koanf:"max_total_size"`

	// FileTTL is how long an uploaded file stays available.
	FileTTL time.Duration `koanf:"file_ttl"`

	// SweepInterval is how often expired files are evicted.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// ClientTimeout is how long a silent WebSocket client is kept
	// registered before being dropped.
	ClientTimeout time.Duration `koanf:"client_timeout"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
