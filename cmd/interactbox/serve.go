package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"interactbox/internal/admin"
	"interactbox/internal/config"
	"interactbox/internal/history"
	"interactbox/internal/interactions"
	"interactbox/internal/server"

	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
	registerTimeout = 30 * time.Second
)

var (
	configFile   string
	logFile      string
	dbPath       string
	listenAddr   string
	adminAddr    string
	noAdmin      bool
	noHistory    bool
	skipRegister bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interaction server",
	Long: `Start the HTTP/1.1 engine that receives signed interaction webhooks.

Unless disabled, the configured commands are registered with the remote API before the server starts listening.`,
	RunE: runServe,
}

func init() {
	addConfigFlag(serveCmd)
	serveCmd.Flags().StringVar(&logFile, "log", getEnvOrDefault("INTERACTBOX_LOG_FILE", "./interactions.log"), "Path to log file")
	serveCmd.Flags().StringVar(&dbPath, "db", getEnvOrDefault("INTERACTBOX_DB_PATH", ""), "Path to SQLite database (overrides config)")
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", getEnvOrDefault("INTERACTBOX_LISTEN", ""), "Address to bind the interaction server to (overrides config)")
	serveCmd.Flags().StringVar(&adminAddr, "admin", getEnvOrDefault("INTERACTBOX_ADMIN_LISTEN", ""), "Address to bind the admin server to (overrides config)")
	serveCmd.Flags().BoolVar(&noAdmin, "no-admin", os.Getenv("INTERACTBOX_NO_ADMIN") == "1", "Do not start the admin server")
	serveCmd.Flags().BoolVar(&noHistory, "no-history", os.Getenv("INTERACTBOX_NO_HISTORY") == "1", "Do not record interactions")
	serveCmd.Flags().BoolVar(&skipRegister, "skip-register", os.Getenv("INTERACTBOX_SKIP_REGISTER") == "1", "Do not register commands before serving")
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", getEnvOrDefault("INTERACTBOX_CONFIG_FILE", ""), "Path to interactbox.yaml configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, source, err := loadConfig(func(c *config.Config) {
		if listenAddr != "" {
			c.Listen = listenAddr
		}
		if adminAddr != "" {
			c.AdminListen = adminAddr
		}
		if dbPath != "" {
			c.DB = dbPath
		}
		if skipRegister {
			disabled := false
			c.RegisterCommands = &disabled
		}
	})
	if err != nil {
		return err
	}

	logger, logFileHandle, err := setupLogging(logFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logFileHandle.Close()

	logger.Info("Starting interactbox", "version", version)
	if source == "" {
		logger.Warn("No configuration file found, using environment only")
	} else {
		logger.Info("Configuration loaded", "config", source)
	}

	verifier, err := server.NewVerifier(cfg.PublicKey)
	if err != nil {
		logger.Error("Invalid public key", "error", err)
		return fmt.Errorf("invalid public key: %w", err)
	}

	var hist *history.History
	if !noHistory {
		logger.Info("Initializing history database", "db", cfg.DB)
		hist, err = history.NewHistory(cfg.DB)
		if err != nil {
			logger.Error("Failed to initialize history database", "error", err)
			return fmt.Errorf("failed to initialize history database: %w", err)
		}
		defer hist.Close()
	}

	commands := []interactions.Command{interactions.HelloCommand}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ShouldRegister() {
		registrar, err := newRegistrar(cfg, logger)
		if err != nil {
			return err
		}

		registerCtx, cancel := context.WithTimeout(ctx, registerTimeout)
		err = registrar.RegisterAll(registerCtx, commands)
		cancel()
		if err != nil {
			logger.Error("Command registration failed", "error", err)
			return fmt.Errorf("command registration failed: %w", err)
		}
	} else {
		logger.Info("Skipping command registration")
	}

	var recorder interactions.Recorder
	if hist != nil {
		recorder = hist
	}
	handler := interactions.NewHandler(verifier, commands, recorder, logger)

	srv := server.New(server.Config{
		Addr:               cfg.Listen,
		ReadTimeout:        cfg.ReadTimeoutDuration(),
		MaxConnections:     cfg.MaxConnections,
		RateLimitPerMinute: cfg.RateLimit,
	}, []server.Route{handler.Route()}, logger)

	// nil when the admin server is disabled, so its select case never fires
	var adminDone chan error
	if !noAdmin {
		var store admin.Store
		if hist != nil {
			store = hist
		}
		adminSrv := admin.NewServer(srv.Routes(), store, logger, cfg.RateLimit)
		adminDone = make(chan error, 1)
		go func() { adminDone <- adminSrv.ListenAndServe(ctx, cfg.AdminListen) }()
	}

	served := make(chan error, 1)
	go func() { served <- srv.ListenAndServe() }()

	select {
	case err := <-served:
		stop()
		if adminDone != nil {
			<-adminDone
		}
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)

	case err := <-adminDone:
		if err != nil {
			logger.Error("Admin server failed", "error", err)
			_ = srv.Close()
			return err
		}

	case <-ctx.Done():
		if adminDone != nil {
			<-adminDone
		}
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Forced shutdown", "error", err)
	}
	if err := <-served; err != nil && !errors.Is(err, server.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// setupLogging configures slog for console and file logging.
// Returns both the logger and the file handle (caller must close the file)
func setupLogging(logPath, levelName string) (*slog.Logger, *os.File, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open log file with secure permissions
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, file), &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), file, nil
}
