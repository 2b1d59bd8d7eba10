package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

func TestMessagesRoundTrip(t *testing.T) {
	t.Parallel()

	docID := int64(-1)
	at := func(m int) time.Time {
		return time.Date(2021, 8, 15, 20, 30, 0, 0, time.UTC).Add(time.Duration(m) * time.Minute)
	}
	isLink := true
	msgs := []message.Record{
		message.New("hello", at(0), "alice", message.Attrs{}),
		message.New("https://example.com", at(1), "bob", message.Attrs{}),
		message.New("", at(2), "alice", message.Attrs{HasPhoto: true, DocumentID: &docID}),
		message.New("fwd", at(3), "bob", message.Attrs{IsForwarded: true, HasVoice: true}),
		message.New("😀", at(4), "alice", message.Attrs{HasSticker: true, HasVideo: true, HasAudio: true}),
		// A stored override must survive even though the text is a URL.
		message.New("not a link really", at(5), "bob", message.Attrs{IsLink: &isLink}),
	}

	path := filepath.Join(t.TempDir(), "messages.json")
	if err := StoreMessages(path, msgs); err != nil {
		t.Fatal(err)
	}
	got, err := LoadMessages(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(msgs) {
		t.Fatalf("got %d records, want %d", len(got), len(msgs))
	}

	for i, want := range msgs {
		rec := got[i]
		if rec.Text != want.Text || rec.Author != want.Author {
			t.Errorf("record %d text/author = %q/%q, want %q/%q", i, rec.Text, rec.Author, want.Text, want.Author)
		}
		if !rec.Timestamp.Equal(want.Timestamp) {
			t.Errorf("record %d timestamp = %s, want %s", i, rec.Timestamp, want.Timestamp)
		}
		if rec.IsForwarded != want.IsForwarded || rec.IsLink != want.IsLink {
			t.Errorf("record %d flags = %+v, want %+v", i, rec, want)
		}
		if rec.HasPhoto != want.HasPhoto || rec.HasVoice != want.HasVoice ||
			rec.HasAudio != want.HasAudio || rec.HasVideo != want.HasVideo ||
			rec.HasSticker != want.HasSticker {
			t.Errorf("record %d media flags = %+v, want %+v", i, rec, want)
		}
		if (rec.DocumentID == nil) != (want.DocumentID == nil) {
			t.Errorf("record %d document presence = %v, want %v", i, rec.DocumentID, want.DocumentID)
		} else if rec.DocumentID != nil && *rec.DocumentID != *want.DocumentID {
			t.Errorf("record %d document id = %d, want %d", i, *rec.DocumentID, *want.DocumentID)
		}
	}
}

func TestLoadMessagesBadTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages.json")
	if err := os.WriteFile(path, []byte(`[{"text":"x","date":"yesterday","author":"a"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMessages(path); err == nil {
		t.Fatal("malformed timestamp accepted")
	}
}

func TestLoadWords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "words.txt")
	content := "\uFEFFlove\n\nhello \nмир\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"love", "hello", "мир"}
	if len(words) != len(want) {
		t.Fatalf("got %q, want %q", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, words[i], want[i])
		}
	}
}

func TestStoreTopWords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "top.csv")
	yours := map[string]int{"love": 7, "ok": 2}
	targets := map[string]int{"love": 3}
	if err := StoreTopWords(path, []string{"love", "ok"}, yours, targets); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{"word,total,your,target", "love,10,7,3", "ok,2,2,0"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
