package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageFunc receives every private message the client observes.
type MessageFunc func(ctx context.Context, raw RawMessage)

// Client wraps the Telegram transport. It validates credentials, resolves the
// session identity, and streams incoming dialogue messages to a MessageFunc,
// typically one that archives them for later analysis.
type Client struct {
	bot *tgbot.Bot
	log *slog.Logger
}

// NewClient builds a client for the given token. Only messages from dialogID
// are forwarded to onMessage; a zero dialogID forwards everything. onMessage
// may be nil when the client is only used for credential checks.
func NewClient(token string, dialogID int64, log *slog.Logger, onMessage MessageFunc) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "telegram_client")

	handler := func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		if update.Message == nil || onMessage == nil {
			return
		}
		if dialogID != 0 && update.Message.Chat.ID != dialogID {
			return
		}
		onMessage(ctx, FromBotMessage(update.Message))
	}
	b, err := tgbot.New(token,
		tgbot.WithMiddlewares(updateLogger(log)),
		tgbot.WithDefaultHandler(handler),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	return &Client{bot: b, log: log}, nil
}

// Identity fetches the authenticated account, which doubles as a credential
// check before any retrieval starts.
func (c *Client) Identity(ctx context.Context) (*models.User, error) {
	user, err := c.bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving telegram identity: %w", err)
	}
	return user, nil
}

// Run blocks streaming updates until the context is cancelled.
func (c *Client) Run(ctx context.Context) {
	c.log.Info("listening for dialogue messages")
	c.bot.Start(ctx)
	c.log.Info("stopped listening")
}

// updateLogger logs every processed update with its handling time.
func updateLogger(log *slog.Logger) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			start := time.Now()
			entry := log.With("update_id", update.ID)
			if update.Message != nil {
				entry = entry.With(
					"message_id", update.Message.ID,
					"chat_id", update.Message.Chat.ID,
				)
			}
			next(ctx, b, update)
			entry.Debug("update processed", "duration", time.Since(start))
		}
	}
}
