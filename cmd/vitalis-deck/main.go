// Package main is the entry point for the Vitalis deck plugin.
// The display host launches it with its websocket port and registration
// details; the plugin registers its actions, then keeps CPU, memory and
// uptime titles current on every visible key until the host disconnects.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Guliveer/vitalis/deck/internal/collector"
	"github.com/Guliveer/vitalis/deck/internal/config"
	"github.com/Guliveer/vitalis/deck/internal/format"
	"github.com/Guliveer/vitalis/deck/internal/host"
	"github.com/Guliveer/vitalis/deck/internal/models"
	"github.com/Guliveer/vitalis/deck/internal/scheduler"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file (default: search standard locations)")
	writeConfig = flag.String("write-config", "", "Write the effective configuration to this path and exit")
	showVersion = flag.Bool("version", false, "Show version and exit")
)

func main() {
	var hostArgs host.Args
	var rawInfo string
	hostArgs.Bind(flag.CommandLine, &rawInfo)
	flag.Parse()

	if *showVersion {
		fmt.Printf("vitalis-deck %s\n", version)
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = config.Locate()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := config.WriteConfig(cfg, *writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	if err := hostArgs.Finish(rawInfo); err != nil {
		logger.Fatal("Invalid host launch arguments", zap.Error(err))
	}

	logger.Info("Starting Vitalis deck plugin",
		zap.String("version", version),
		zap.String("config", path),
		zap.Int("port", hostArgs.Port),
		zap.String("host_platform", hostArgs.Info.Application.Platform),
		zap.String("host_version", hostArgs.Info.Application.Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	if err := runPlugin(ctx, cfg, hostArgs, logger); err != nil {
		logger.Error("Plugin stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Plugin stopped")
}

// runPlugin wires the sampler, the broadcast loop and the host connection.
// It blocks until the host disconnects or ctx is cancelled.
func runPlugin(ctx context.Context, cfg *config.Config, args host.Args, logger *zap.Logger) error {
	dir := host.NewDirectory()
	client := host.NewClient(args, dir, host.Options{
		Address:      cfg.Host.Address,
		WriteTimeout: cfg.Host.WriteTimeout.Duration,
	}, logger)

	stats := collector.NewSystemStats()
	sampler := collector.NewSampler(stats, logger)
	osInfo := collector.NewOSInfo(stats, logger)
	sched := scheduler.New(sampler, dir, cfg, logger)

	g, gctx := errgroup.WithContext(ctx)

	// The loop may start before registration: unregistered actions simply
	// have no visible instances yet.
	g.Go(func() error {
		sched.Start(gctx)
		return nil
	})

	registerActions(client, osInfo, logger)

	g.Go(func() error {
		return client.Run(gctx)
	})

	err := g.Wait()
	sched.Wait()
	return err
}

// registerActions declares every action with the host. A failed registration
// is reported and the remaining actions still register.
func registerActions(client *host.Client, osInfo *collector.OSInfo, logger *zap.Logger) {
	for _, kind := range models.All() {
		if err := client.RegisterAction(kind.ID()); err != nil {
			logger.Error("Action registration failed",
				zap.Stringer("kind", kind),
				zap.Error(err))
		}
	}

	client.OnAppear(models.OSActionID, func(ctx context.Context, inst host.Instance) {
		text := format.OS(osInfo.LongName(ctx))
		if err := inst.SetTitle(ctx, text); err != nil {
			logger.Debug("OS title push failed",
				zap.String("context", inst.Context()),
				zap.Error(err))
		}
	})
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
