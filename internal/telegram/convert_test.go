package telegram

import (
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
)

func TestFromBotMessage(t *testing.T) {
	t.Parallel()

	sent := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	msg := &models.Message{
		ID:   42,
		From: &models.User{ID: dialogID},
		Date: int(sent.Unix()),
		Text: "hello",
	}
	raw := FromBotMessage(msg)
	if raw.ID != 42 || raw.SenderID != dialogID || raw.Text != "hello" {
		t.Errorf("raw = %+v", raw)
	}
	if !raw.Date.Equal(sent) {
		t.Errorf("Date = %s, want %s", raw.Date, sent)
	}
	if raw.Document != nil || raw.HasSticker || raw.Forwarded {
		t.Errorf("plain text message carries extras: %+v", raw)
	}
}

func TestFromBotMessageCaptionFallback(t *testing.T) {
	t.Parallel()

	msg := &models.Message{
		Photo:   []models.PhotoSize{{FileUniqueID: "p1"}},
		Caption: "look at this",
	}
	raw := FromBotMessage(msg)
	if raw.Text != "look at this" || !raw.HasPhoto {
		t.Errorf("raw = %+v", raw)
	}
}

func TestFromBotMessageAudioKinds(t *testing.T) {
	t.Parallel()

	voice := FromBotMessage(&models.Message{
		Voice: &models.Voice{FileUniqueID: "v1", MimeType: "audio/ogg"},
	})
	if !voice.HasAudioAttachment || voice.Document == nil || voice.Document.MimeType != "audio/ogg" {
		t.Errorf("voice raw = %+v", voice)
	}

	song := FromBotMessage(&models.Message{
		Audio: &models.Audio{FileUniqueID: "a1", MimeType: "audio/mpeg"},
	})
	if !song.HasAudioAttachment || song.Document == nil || song.Document.MimeType != "audio/mpeg" {
		t.Errorf("song raw = %+v", song)
	}

	doc := FromBotMessage(&models.Message{
		Document: &models.Document{FileUniqueID: "d1", MimeType: "application/pdf"},
	})
	if doc.HasAudioAttachment || doc.Document == nil {
		t.Errorf("document raw = %+v", doc)
	}
}

func TestFromBotMessageDocumentIDStable(t *testing.T) {
	t.Parallel()

	a := FromBotMessage(&models.Message{Document: &models.Document{FileUniqueID: "same"}})
	b := FromBotMessage(&models.Message{Document: &models.Document{FileUniqueID: "same"}})
	c := FromBotMessage(&models.Message{Document: &models.Document{FileUniqueID: "other"}})
	if a.Document.ID != b.Document.ID {
		t.Error("same file maps to different document ids")
	}
	if a.Document.ID == c.Document.ID {
		t.Error("different files map to the same document id")
	}
}

func TestFromBotMessageSticker(t *testing.T) {
	t.Parallel()

	raw := FromBotMessage(&models.Message{
		Sticker: &models.Sticker{FileUniqueID: "s1", Emoji: "😀"},
	})
	if !raw.HasSticker || raw.StickerAlt != "😀" {
		t.Errorf("sticker raw = %+v", raw)
	}
}
