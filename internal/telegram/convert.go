package telegram

import (
	"hash/fnv"
	"time"

	"github.com/go-telegram/bot/models"
)

// FromBotMessage converts a Bot API message into a raw provider message.
// The Bot API identifies files by opaque strings, so the document id is a
// stable 64-bit digest of the file's unique id; present/absent semantics and
// equality across sessions are what downstream code relies on.
func FromBotMessage(msg *models.Message) RawMessage {
	raw := RawMessage{
		ID:        msg.ID,
		Date:      time.Unix(int64(msg.Date), 0).UTC(),
		Text:      msg.Text,
		Forwarded: msg.ForwardOrigin != nil,
		HasPhoto:  len(msg.Photo) > 0,
		HasVideo:  msg.Video != nil || msg.VideoNote != nil,
	}
	if msg.From != nil {
		raw.SenderID = msg.From.ID
	}
	if raw.Text == "" {
		raw.Text = msg.Caption
	}

	switch {
	case msg.Voice != nil:
		raw.HasAudioAttachment = true
		raw.Document = &RawDocument{ID: digestID(msg.Voice.FileUniqueID), MimeType: msg.Voice.MimeType}
	case msg.Audio != nil:
		raw.HasAudioAttachment = true
		raw.Document = &RawDocument{ID: digestID(msg.Audio.FileUniqueID), MimeType: msg.Audio.MimeType}
	case msg.Document != nil:
		raw.Document = &RawDocument{ID: digestID(msg.Document.FileUniqueID), MimeType: msg.Document.MimeType}
	}

	if msg.Sticker != nil {
		raw.HasSticker = true
		raw.StickerAlt = msg.Sticker.Emoji
	}
	return raw
}

func digestID(fileUniqueID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(fileUniqueID))
	return int64(h.Sum64())
}
