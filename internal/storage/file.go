// Package storage persists the normalized corpus: a flat JSON file for
// session snapshots and a single-file SQLite archive for long-running
// capture. Both round-trip every record field exactly, including the
// present/absent distinction of the document id and timestamps to the second.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// TimeLayout is the on-disk timestamp format. Normalized timestamps carry no
// meaningful zone, so the layout is zoneless and stability to the second is
// the fidelity contract.
const TimeLayout = "2006-01-02 15:04:05"

// recordJSON is the serialized shape of one record.
type recordJSON struct {
	Text        string `json:"text"`
	Date        string `json:"date"`
	Author      string `json:"author"`
	IsForwarded bool   `json:"is_forwarded"`
	DocumentID  *int64 `json:"document_id"`
	HasPhoto    bool   `json:"has_photo"`
	HasVoice    bool   `json:"has_voice"`
	HasAudio    bool   `json:"has_audio"`
	HasVideo    bool   `json:"has_video"`
	HasSticker  bool   `json:"has_sticker"`
	IsLink      bool   `json:"is_link"`
}

func toJSON(rec message.Record) recordJSON {
	return recordJSON{
		Text:        rec.Text,
		Date:        rec.Timestamp.Format(TimeLayout),
		Author:      rec.Author,
		IsForwarded: rec.IsForwarded,
		DocumentID:  rec.DocumentID,
		HasPhoto:    rec.HasPhoto,
		HasVoice:    rec.HasVoice,
		HasAudio:    rec.HasAudio,
		HasVideo:    rec.HasVideo,
		HasSticker:  rec.HasSticker,
		IsLink:      rec.IsLink,
	}
}

func (r recordJSON) record() (message.Record, error) {
	ts, err := time.ParseInLocation(TimeLayout, r.Date, time.UTC)
	if err != nil {
		return message.Record{}, fmt.Errorf("parsing stored timestamp %q: %w", r.Date, err)
	}
	isLink := r.IsLink
	return message.New(r.Text, ts, r.Author, message.Attrs{
		IsForwarded: r.IsForwarded,
		DocumentID:  r.DocumentID,
		HasPhoto:    r.HasPhoto,
		HasVoice:    r.HasVoice,
		HasAudio:    r.HasAudio,
		HasVideo:    r.HasVideo,
		HasSticker:  r.HasSticker,
		IsLink:      &isLink,
	}), nil
}

// StoreMessages writes the corpus to path as a JSON array.
func StoreMessages(path string, msgs []message.Record) error {
	rows := make([]recordJSON, len(msgs))
	for i, msg := range msgs {
		rows[i] = toJSON(msg)
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing messages file: %w", err)
	}
	return nil
}

// LoadMessages reads a corpus previously written by StoreMessages,
// reconstructing records field for field.
func LoadMessages(path string) ([]message.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading messages file: %w", err)
	}
	var rows []recordJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding messages file: %w", err)
	}
	msgs := make([]message.Record, len(rows))
	for i, row := range rows {
		msg, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// LoadWords reads a word list, one word per line, tolerating a BOM and blank
// lines.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening words file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading words file: %w", err)
	}
	return words, nil
}

// StoreTopWords writes the ranked word list with each side's usage counts as
// CSV rows "word,total,your,target".
func StoreTopWords(path string, top []string, yours, targets map[string]int) error {
	var b strings.Builder
	b.WriteString("word,total,your,target\n")
	for _, word := range top {
		fmt.Fprintf(&b, "%s,%d,%d,%d\n", word, yours[word]+targets[word], yours[word], targets[word])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing words file: %w", err)
	}
	return nil
}
