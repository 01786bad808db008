// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	return verifyBoard(&cfg.Board)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q is not a valid host:port: %w", cfg.HTTP.Addr, err)
	}
	if cfg.HTTP.RateLimitRPS < 0 {
		return errors.New("server.http.rate_limit_rps must not be negative")
	}
	if cfg.HTTP.RateLimitRPS > 0 && cfg.HTTP.RateLimitBurst < 1 {
		return errors.New("server.http.rate_limit_burst must be at least 1 when rate limiting is on")
	}
	return nil
}

func verifyBoard(cfg *BoardSection) error {
	if cfg.MaxTextSize < 1 {
		return errors.New("board.max_text_size must be positive")
	}
	if cfg.MaxFileSize < 1 {
		return errors.New("board.max_file_size must be positive")
	}
	if cfg.MaxTotalSize < cfg.MaxFileSize {
		return errors.New("board.max_total_size must be at least board.max_file_size")
	}
	if cfg.FileTTL <= 0 {
		return errors.New("board.file_ttl must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("board.sweep_interval must be positive")
	}
	if cfg.ClientTimeout <= 0 {
		return errors.New("board.client_timeout must be positive")
	}
	return nil
}
