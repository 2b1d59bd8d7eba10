// Package telegram retrieves a private-message history from Telegram and maps
// the provider's raw messages into the analyser's uniform records.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// DefaultBatchSize is how many messages one retrieval batch asks for.
const DefaultBatchSize = 3000

// RawMessage is one provider message as handed over by a history fetcher.
type RawMessage struct {
	ID       int
	SenderID int64

	// Date is the provider's UTC send time.
	Date time.Time

	Text      string
	Forwarded bool

	// Document is the generic attached file, if any. Audio attachments are
	// documents too; their mime type decides voice note vs. song.
	Document *RawDocument

	HasPhoto bool
	HasVideo bool

	// HasAudioAttachment marks any attached audio; classification into
	// voice or song happens in the adapter.
	HasAudioAttachment bool

	// StickerAlt is the sticker's glyph description, empty when the
	// message has no sticker.
	StickerAlt string
	HasSticker bool
}

// RawDocument identifies an attached document.
type RawDocument struct {
	ID       int64
	MimeType string
}

// CodecTable decides which audio attachments are voice notes. The marker is
// provider-specific, so it is configuration rather than a constant.
type CodecTable struct {
	VoiceMimeTypes []string
}

// DefaultCodecs matches Telegram's opus voice notes.
func DefaultCodecs() CodecTable {
	return CodecTable{VoiceMimeTypes: []string{"audio/ogg"}}
}

// IsVoice reports whether the mime type is a voice-note codec.
func (t CodecTable) IsVoice(mimeType string) bool {
	for _, m := range t.VoiceMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// Fetcher retrieves one batch of raw messages, newest first. offsetID
// restricts the batch to messages older than that id; zero means start from
// the newest. An empty batch signals the history is exhausted. A fetcher must
// deliver either a complete batch or an error, never a partial one.
type Fetcher interface {
	FetchBatch(ctx context.Context, offsetID, limit int) ([]RawMessage, error)
}

// Adapter maps raw provider messages into records for one analysis session.
type Adapter struct {
	yourName   string
	targetName string
	dialogID   int64
	codecs     CodecTable
	loc        *time.Location
	log        *slog.Logger
}

// NewAdapter builds an adapter for a session. dialogID is the counterpart's
// dialogue id; messages sent by it are attributed to targetName, everything
// else to yourName. loc is the reference timezone used to localize provider
// UTC timestamps; nil means the system zone.
func NewAdapter(yourName, targetName string, dialogID int64, codecs CodecTable, loc *time.Location, log *slog.Logger) *Adapter {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		yourName:   yourName,
		targetName: targetName,
		dialogID:   dialogID,
		codecs:     codecs,
		loc:        loc,
		log:        log.With("component", "telegram_adapter"),
	}
}

// Retrieve fetches up to limit newest messages batch by batch, then reverses
// the accumulated sequence once so the result runs oldest to newest, and maps
// every raw message into a record.
func (a *Adapter) Retrieve(ctx context.Context, fetcher Fetcher, limit int) ([]message.Record, error) {
	batchSize := min(DefaultBatchSize, limit)
	var raws []RawMessage

	batch, err := fetcher.FetchBatch(ctx, 0, batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetching first batch: %w", err)
	}
	for len(batch) > 0 && len(raws) < limit {
		offsetID := batch[len(batch)-1].ID
		raws = append(raws, batch...)
		a.log.Info("messages received", "count", min(len(raws), limit))

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err = fetcher.FetchBatch(ctx, offsetID, min(batchSize, limit-len(raws)))
		if err != nil {
			return nil, fmt.Errorf("fetching batch before id %d: %w", offsetID, err)
		}
	}
	if len(raws) > limit {
		raws = raws[:limit]
	}

	// Batches arrive newest first; one reversal makes the whole span
	// oldest to newest.
	records := make([]message.Record, len(raws))
	for i, raw := range raws {
		records[len(raws)-1-i] = a.Map(raw)
	}
	a.log.Info("telegram history retrieved", "count", len(records))
	return records, nil
}

// Map converts one raw provider message into a record. The timestamp is
// shifted from UTC by the reference zone's offset at that instant, so long
// histories crossing DST switches localize each message correctly. A
// sticker's glyph description is appended to the text so sticker-only
// messages still tokenize and have a length.
func (a *Adapter) Map(raw RawMessage) message.Record {
	text := raw.Text
	if raw.HasSticker {
		text += raw.StickerAlt
	}

	author := a.yourName
	if raw.SenderID == a.dialogID {
		author = a.targetName
	}

	attrs := message.Attrs{
		IsForwarded: raw.Forwarded,
		HasPhoto:    raw.HasPhoto,
		HasVideo:    raw.HasVideo,
		HasSticker:  raw.HasSticker,
	}
	if raw.Document != nil {
		id := raw.Document.ID
		attrs.DocumentID = &id
		if raw.HasAudioAttachment {
			if a.codecs.IsVoice(raw.Document.MimeType) {
				attrs.HasVoice = true
			} else {
				attrs.HasAudio = true
			}
		}
	}

	return message.New(text, Localize(raw.Date, a.loc), author, attrs)
}

// Localize converts a UTC instant to the reference zone's wall-clock time for
// that instant and re-labels it as UTC. The pipeline compares and buckets
// plain wall-clock values; keeping them all in one synthetic zone makes
// equality and arithmetic exact.
func Localize(utc time.Time, loc *time.Location) time.Time {
	t := utc.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
