// Package main is the message-analyser CLI: it retrieves a two-person
// dialogue history, normalizes and buckets it, and writes the aggregated
// report next to where the charts go.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vlajnaya-mol/message-analyser/internal/config"
	"github.com/vlajnaya-mol/message-analyser/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	var (
		configPath string
		cfg        *config.Config
		log        *slog.Logger
	)

	root := &cobra.Command{
		Use:           "analyser",
		Short:         "Analyse a two-person private message history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log = logger.New(cfg.LogLevel, cfg.LogJSON)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")

	root.AddCommand(
		newAnalyseCmd(&cfg, &log),
		newImportCmd(&cfg, &log),
		newRecordCmd(&cfg, &log),
		newVersionCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		if log != nil {
			log.Error("command failed", "error", err)
		} else {
			slog.Error("command failed", "error", err)
		}
		return 1
	}
	return 0
}
