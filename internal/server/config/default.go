// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr       = ":56321"
	DefaultRateLimitRPS   = 25.0
	DefaultRateLimitBurst = 50

	DefaultMaxTextSize   = 2 << 20   // 2 MiB
	DefaultMaxFileSize   = 64 << 20  // 64 MiB
	DefaultMaxTotalSize  = 512 << 20 // 512 MiB
	DefaultFileTTL       = time.Hour
	DefaultSweepInterval = time.Minute
	DefaultClientTimeout = 90 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:           DefaultHTTPAddr,
				RateLimitRPS:   DefaultRateLimitRPS,
				RateLimitBurst: DefaultRateLimitBurst,
			},
		},
		Board: BoardSection{
			MaxTextSize:   DefaultMaxTextSize,
			MaxFileSize:   DefaultMaxFileSize,
			MaxTotalSize:  DefaultMaxTotalSize,
			FileTTL:       DefaultFileTTL,
			SweepInterval: DefaultSweepInterval,
			ClientTimeout: DefaultClientTimeout,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
