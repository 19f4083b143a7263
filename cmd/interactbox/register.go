package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"interactbox/internal/config"
	"interactbox/internal/interactions"

	"github.com/spf13/cobra"
)

var (
	registerTimeoutFlag time.Duration
	registerVerbose     bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register commands with the remote API",
	Long: `Register the built-in commands with the remote API and exit.

Uses the same configuration as serve; the bot token and application ID are required.`,
	RunE: runRegister,
}

func init() {
	addConfigFlag(registerCmd)
	registerCmd.Flags().DurationVar(&registerTimeoutFlag, "timeout", getEnvOrDefaultDuration("INTERACTBOX_REGISTER_TIMEOUT", registerTimeout), "Time allowed for all registrations")
	registerCmd.Flags().BoolVarP(&registerVerbose, "verbose", "v", false, "Log each request")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(func(c *config.Config) {
		enabled := true
		c.RegisterCommands = &enabled
	})
	if err != nil {
		return err
	}

	var handler slog.Handler = slog.NewTextHandler(io.Discard, nil)
	if registerVerbose {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)

	registrar, err := newRegistrar(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), registerTimeoutFlag)
	defer cancel()

	out := cmd.OutOrStdout()
	for _, command := range []interactions.Command{interactions.HelloCommand} {
		if err := registrar.RegisterCommand(ctx, command); err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered /%s with application %s\n", command.Name, cfg.AppID)
	}

	return nil
}
