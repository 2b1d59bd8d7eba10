package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vlajnaya-mol/message-analyser/internal/config"
	"github.com/vlajnaya-mol/message-analyser/internal/storage"
	"github.com/vlajnaya-mol/message-analyser/internal/telegram"
)

func newRecordCmd(cfg **config.Config, log **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Capture incoming dialog messages into the local archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return record(cmd, *cfg, *log)
		},
	}
}

func record(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) error {
	ctx := cmd.Context()

	db, err := storage.NewDB(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer storage.CloseDB(db)
	archive := storage.NewArchive(db, log)

	adapter := telegram.NewAdapter(
		cfg.Session.YourName,
		cfg.Session.TargetName,
		cfg.Session.DialogID,
		telegram.CodecTable{VoiceMimeTypes: cfg.Telegram.VoiceMimeTypes},
		time.Local,
		log,
	)

	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Session.DialogID, log,
		func(ctx context.Context, raw telegram.RawMessage) {
			if err := archive.SaveMessage(ctx, adapter.Map(raw)); err != nil {
				log.Error("failed to archive message", "error", err, "message_id", raw.ID)
			}
		})
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}

	me, err := client.Identity(ctx)
	if err != nil {
		return fmt.Errorf("credential check: %w", err)
	}
	log.Info("recording started", "bot", me.Username, "dialog_id", cfg.Session.DialogID)

	client.Run(ctx)

	count, err := archive.Count(ctx)
	if err != nil {
		return err
	}
	log.Info("recording stopped", "archived", count)
	return nil
}
