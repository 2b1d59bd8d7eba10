package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
	"github.com/vlajnaya-mol/message-analyser/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// Archive is the SQLite-backed message store used by the capture command and
// as an analysis source.
type Archive interface {
	// SaveMessage appends one record to the archive.
	SaveMessage(ctx context.Context, rec message.Record) error

	// SaveMessages appends a batch of records in one transaction.
	SaveMessages(ctx context.Context, recs []message.Record) error

	// LoadMessages returns the whole archive ascending by timestamp.
	LoadMessages(ctx context.Context) ([]message.Record, error)

	// Count returns the number of archived records.
	Count(ctx context.Context) (int, error)
}

// NewDB opens the archive database, applies embedded migrations, and returns
// the connection pool. SQLite doesn't take concurrent writers, so the pool is
// capped at one connection.
func NewDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to archive database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := applyMigrations(db.DB); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("closing database after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	slog.Info("archive database ready", "path", path)
	return db, nil
}

// CloseDB closes the archive connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("closing archive database", "error", err)
	}
}

func applyMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// messageRow is the table shape of one record.
type messageRow struct {
	ID          int64         `db:"id"`
	Text        string        `db:"text"`
	Timestamp   string        `db:"timestamp"`
	Author      string        `db:"author"`
	IsForwarded bool          `db:"is_forwarded"`
	DocumentID  sql.NullInt64 `db:"document_id"`
	HasPhoto    bool          `db:"has_photo"`
	HasVoice    bool          `db:"has_voice"`
	HasAudio    bool          `db:"has_audio"`
	HasVideo    bool          `db:"has_video"`
	HasSticker  bool          `db:"has_sticker"`
	IsLink      bool          `db:"is_link"`
}

func toRow(rec message.Record) messageRow {
	row := messageRow{
		Text:        rec.Text,
		Timestamp:   rec.Timestamp.Format(TimeLayout),
		Author:      rec.Author,
		IsForwarded: rec.IsForwarded,
		HasPhoto:    rec.HasPhoto,
		HasVoice:    rec.HasVoice,
		HasAudio:    rec.HasAudio,
		HasVideo:    rec.HasVideo,
		HasSticker:  rec.HasSticker,
		IsLink:      rec.IsLink,
	}
	if rec.DocumentID != nil {
		row.DocumentID = sql.NullInt64{Int64: *rec.DocumentID, Valid: true}
	}
	return row
}

func (r messageRow) record() (message.Record, error) {
	ts, err := time.ParseInLocation(TimeLayout, r.Timestamp, time.UTC)
	if err != nil {
		return message.Record{}, fmt.Errorf("parsing archived timestamp %q: %w", r.Timestamp, err)
	}
	var docID *int64
	if r.DocumentID.Valid {
		id := r.DocumentID.Int64
		docID = &id
	}
	isLink := r.IsLink
	return message.New(r.Text, ts, r.Author, message.Attrs{
		IsForwarded: r.IsForwarded,
		DocumentID:  docID,
		HasPhoto:    r.HasPhoto,
		HasVoice:    r.HasVoice,
		HasAudio:    r.HasAudio,
		HasVideo:    r.HasVideo,
		HasSticker:  r.HasSticker,
		IsLink:      &isLink,
	}), nil
}

type sqlxArchive struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewArchive wraps a connected database in the Archive interface.
func NewArchive(db *sqlx.DB, log *slog.Logger) Archive {
	if log == nil {
		log = slog.Default()
	}
	return &sqlxArchive{db: db, log: log.With("component", "archive")}
}

const insertMessage = `
	INSERT INTO messages (text, timestamp, author, is_forwarded, document_id,
	                      has_photo, has_voice, has_audio, has_video, has_sticker, is_link)
	VALUES (:text, :timestamp, :author, :is_forwarded, :document_id,
	        :has_photo, :has_voice, :has_audio, :has_video, :has_sticker, :is_link);`

func (a *sqlxArchive) SaveMessage(ctx context.Context, rec message.Record) error {
	if _, err := a.db.NamedExecContext(ctx, insertMessage, toRow(rec)); err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	a.log.DebugContext(ctx, "message archived", "author", rec.Author, "timestamp", rec.Timestamp)
	return nil
}

func (a *sqlxArchive) SaveMessages(ctx context.Context, recs []message.Record) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			a.log.WarnContext(ctx, "rolling back archive transaction", "error", rollbackErr)
		}
	}()

	for i, rec := range recs {
		if _, err := tx.NamedExecContext(ctx, insertMessage, toRow(rec)); err != nil {
			return fmt.Errorf("saving message %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive transaction: %w", err)
	}
	a.log.InfoContext(ctx, "messages archived", "count", len(recs))
	return nil
}

func (a *sqlxArchive) LoadMessages(ctx context.Context) ([]message.Record, error) {
	var rows []messageRow
	query := `
		SELECT id, text, timestamp, author, is_forwarded, document_id,
		       has_photo, has_voice, has_audio, has_video, has_sticker, is_link
		FROM messages
		ORDER BY timestamp ASC, id ASC;`
	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("loading archived messages: %w", err)
	}
	msgs := make([]message.Record, len(rows))
	for i, row := range rows {
		msg, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.ID, err)
		}
		msgs[i] = msg
	}
	return msgs, nil
}

func (a *sqlxArchive) Count(ctx context.Context) (int, error) {
	var count int
	if err := a.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages;`); err != nil {
		return 0, fmt.Errorf("counting archived messages: %w", err)
	}
	return count, nil
}
