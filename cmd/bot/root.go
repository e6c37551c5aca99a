package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"musicsearcher/internal/bot"
	"musicsearcher/internal/logger"
	"musicsearcher/internal/musicapi"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cfg is loaded once before any command runs.
var cfg bot.Config

var rootCmd = &cobra.Command{
	Use:           "musicsearcher",
	Short:         "Search YouTube Music and deliver tracks as audio files over Discord.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load()

		var err error
		if cfg, err = bot.LoadClientConfigFromEnv(); err != nil {
			return err
		}
		if err := logger.Init(cfg.Log); err != nil {
			return err
		}
		if envErr != nil {
			logger.Debug(".env not loaded, using system env", logger.Err(envErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func runBot(ctx context.Context) error {
	full, err := bot.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(full, musicapi.New(full.API))
	if err != nil {
		return err
	}

	bot.StartHealthServer(ctx, full.HealthPort)

	if err := b.Start(); err != nil {
		_ = b.Close()
		return err
	}
	logger.Info("bot running, Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("shutting down")
	return b.Close()
}

// signalContext is for the one-shot commands.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
