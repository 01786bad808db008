package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/syncboard/syncboard/internal/core/service"
	"github.com/syncboard/syncboard/internal/infra/buildinfo"
	"github.com/syncboard/syncboard/internal/infra/confloader"
	"github.com/syncboard/syncboard/internal/infra/netinfo"
	"github.com/syncboard/syncboard/internal/infra/shutdown"
	"github.com/syncboard/syncboard/internal/server/config"
	"github.com/syncboard/syncboard/internal/server/httpserver"
	"github.com/syncboard/syncboard/internal/server/wsgateway"
	"github.com/syncboard/syncboard/internal/telemetry/logger"
	"github.com/syncboard/syncboard/internal/telemetry/metric"
)

// uploadOverhead is the multipart framing allowance on top of the
// configured file size limit.
const uploadOverhead = 1 << 20

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Listen address override (host:port)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("syncboard-server %s\n", buildinfo.String())
		return nil
	}

	loader, cfg, err := loadConfig(*configFile, *addr)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting syncboard-server",
		"version", buildinfo.Version,
		"addr", cfg.Server.HTTP.Addr,
		"config", *configFile)

	metrics := metric.Global()

	// Board state, mutation hub, and the WebSocket transport.
	board := service.NewBoard(service.BoardConfig{
		MaxTextSize:  cfg.Board.MaxTextSize,
		FileTTL:      cfg.Board.FileTTL,
		MaxFileSize:  cfg.Board.MaxFileSize,
		MaxTotalSize: cfg.Board.MaxTotalSize,
	})
	hub := service.NewHub(board, log, metrics)
	gateway := wsgateway.New(hub, log, wsgateway.Config{
		MaxMessageSize: int64(cfg.Board.MaxTextSize) + 16<<10,
	})
	hub.SetSender(gateway)

	advertise := func() string { return netinfo.AdvertiseURL(cfg.Server.HTTP.Addr) }
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Hub:            hub,
		HandleWS:       gateway.HandleWS,
		AdvertiseURL:   advertise,
		MaxUploadBytes: cfg.Board.MaxFileSize + uploadOverhead,
		Metrics:        metrics,
		Logger:         slogLogger,
		RateLimitRPS:   cfg.Server.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.Server.HTTP.RateLimitBurst,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	// Background eviction of expired files and silent clients.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go hub.RunSweeper(sweepCtx, cfg.Board.SweepInterval, cfg.Board.ClientTimeout)

	shutdownHandler := shutdown.NewHandler(15 * time.Second)
	shutdownHandler.OnShutdown(func(context.Context) error {
		stopSweeper()
		return nil
	})
	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("closing websocket connections")
		gateway.Close()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, loader, cfg, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	url := advertise()
	fmt.Printf("Board:   %s\n", url)
	fmt.Printf("QR code: %s/qr\n", url)

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig merges defaults, the optional file, environment, and
// flag overrides, then validates the result.
func loadConfig(configFile, addrOverride string) (*confloader.Loader, *config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if addrOverride != "" {
		if err := loader.LoadMap(map[string]any{"server.http.addr": addrOverride}); err != nil {
			return nil, nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// initLogger initializes the structured logger. Returns both the
// logger interface and a slog.Logger for components that expect one.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(log)
	return log, slog.Default(), nil
}

// watchConfig reloads the config file on change. Only the log level
// is applied live; limits and addresses need a restart.
func watchConfig(path string, loader *confloader.Loader, cfg *config.ServerConfig, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(path)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(string) {
		fresh := config.Default()
		if err := loader.Reload(fresh); err != nil {
			log.Warn("config reload failed, keeping previous values", "error", err)
			return
		}
		if err := config.Verify(fresh); err != nil {
			log.Warn("reloaded config invalid, keeping previous values", "error", err)
			return
		}
		if fresh.Log.Level != cfg.Log.Level {
			logger.SetLevel(fresh.Log.Level)
			log.Info("log level changed", "level", fresh.Log.Level)
			cfg.Log.Level = fresh.Log.Level
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
