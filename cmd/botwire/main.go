// Package main is the entry point for the botwire CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/botwire/botwire/internal/bot"
	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/config"
	"github.com/botwire/botwire/internal/gateway"
	"github.com/botwire/botwire/internal/sched"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "botwire",
		Short:         "A long-polling chat bot runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("botwire %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start polling for updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			resolved, err := config.ResolvePath(cfgPath)
			if err != nil {
				return err
			}

			cfg, err := config.Load(resolved)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := newLogger(cfg.Log)

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (%d announcements, %d disabled commands)\n",
				len(cfg.Announcements), len(cfg.Commands.Disabled))
			return nil
		},
	})
	return cmd
}

// run wires the client, bot, gateway, and scheduler, then polls until the
// context is cancelled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := botapi.NewClient(cfg.API.Token, cfg.API.BaseURL, nil)

	b := bot.New(client, logger, bot.Options{
		Commands:      builtinCommands(client),
		InlineHandler: echoInlineHandler(),
		IdleInterval:  cfg.API.IdleInterval,
	})
	applyDisabled(b.Commands(), cfg.Commands.Disabled)

	if cfg.Gateway.Enabled {
		gw := gateway.NewServer(cfg.Gateway.Config, logger, b.Stats())
		if err := gw.Start(); err != nil {
			return err
		}
		defer func() {
			if err := gw.Stop(context.Background()); err != nil {
				logger.Error("gateway stop failed", "error", err)
			}
		}()
	}

	if len(cfg.Announcements) > 0 {
		scheduler := sched.NewScheduler(logger)
		for _, a := range cfg.Announcements {
			job := &sched.AnnouncementJob{
				JobName:      a.Name,
				ScheduleExpr: a.Schedule,
				ChatID:       a.ChatID,
				Text:         a.Text,
				Bot:          b,
			}
			if err := scheduler.RegisterJob(job); err != nil {
				return err
			}
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Stop(context.Background()); err != nil {
				logger.Error("scheduler stop failed", "error", err)
			}
		}()
	}

	logger.Info("polling started")
	err := b.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// applyDisabled flips off table entries named in the config.
func applyDisabled(table []*bot.Command, disabled []string) {
	for _, name := range disabled {
		for _, cmd := range table {
			if cmd.Name == name {
				cmd.Enabled = false
			}
		}
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
