package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"interactbox/internal/client"
	"interactbox/internal/config"
	"interactbox/internal/interactions"
	"interactbox/pkg/fileutil"
)

// loadConfig resolves the config file (flag, then default search paths),
// applies adjust and validates. The returned source is empty when no file
// was found and the configuration came from the environment alone.
func loadConfig(adjust func(*config.Config)) (*config.Config, string, error) {
	source := configFile
	if source == "" {
		source = fileutil.FindConfigOptional(config.DefaultFilename)
	} else if !fileutil.FileExists(source) {
		return nil, "", fmt.Errorf("configuration file not found: %s", source)
	}

	cfg, err := config.ReadConfig(source)
	if err != nil {
		return nil, "", err
	}

	if adjust != nil {
		adjust(cfg)
	}

	if err := cfg.Check(); err != nil {
		if source == "" {
			fmt.Fprintf(os.Stderr, "No configuration file found in default locations:\n")
			for _, path := range fileutil.DefaultConfigPaths(config.DefaultFilename) {
				fmt.Fprintf(os.Stderr, "  - %s\n", path)
			}
			fmt.Fprintf(os.Stderr, "Use --config flag to specify a custom location\n")
		}
		return nil, "", err
	}

	return cfg, source, nil
}

// newRegistrar builds the command registrar for cfg's API host and app.
func newRegistrar(cfg *config.Config, logger *slog.Logger) (*interactions.Registrar, error) {
	opts := []client.Option{
		client.WithPort(cfg.APIPort),
		client.WithReadTimeout(cfg.ReadTimeoutDuration()),
		client.WithLogger(logger),
	}

	if cfg.CAFile != "" {
		pool, err := client.LoadRootCAs(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load CA file: %w", err)
		}
		opts = append(opts, client.WithRootCAs(pool))
	}

	api := client.New(cfg.APIHost, opts...)
	return interactions.NewRegistrar(api, cfg.AppID, interactions.BotTokenSource(cfg.Token), logger), nil
}

// Helper functions for environment variables
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
