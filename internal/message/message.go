// Package message defines the uniform message record produced by the source
// adapters and consumed by every downstream analysis stage, together with the
// predicate-based filter engine.
package message

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength is the longest text a single message can carry. Messages
// above this length are treated as pasted dumps rather than conversation.
const MaxMessageLength = 4096

// Record is one normalized private message. It is a write-once value: the
// constructors fill every field and nothing in the pipeline mutates a Record
// afterwards, only selects, groups, and copies.
type Record struct {
	// Text is the raw content, possibly empty. For sticker messages the
	// sticker's glyph description is already appended by the adapter.
	Text string

	// Timestamp is the moment the message was sent, normalized by the
	// source adapter to the session's reference wall clock.
	Timestamp time.Time

	// Author is one of the two canonical session names.
	Author string

	IsForwarded bool

	// DocumentID is set only when the message carries a generic attached
	// document. It is independent from the media flags below; a record can
	// be a document and have a photo at the same time.
	DocumentID *int64

	HasPhoto   bool
	HasVoice   bool
	HasAudio   bool
	HasVideo   bool
	HasSticker bool

	// IsLink reports whether the whole text is a single URL.
	IsLink bool
}

// Attrs carries the optional fields of a Record under construction.
type Attrs struct {
	IsForwarded bool
	DocumentID  *int64
	HasPhoto    bool
	HasVoice    bool
	HasAudio    bool
	HasVideo    bool
	HasSticker  bool

	// IsLink overrides link detection when non-nil. Reconstruction from a
	// stored corpus must preserve the original value instead of recomputing.
	IsLink *bool
}

// New builds a Record. IsLink is computed from the text unless the caller
// supplies it through attrs.
func New(text string, timestamp time.Time, author string, attrs Attrs) Record {
	isLink := IsLink(text)
	if attrs.IsLink != nil {
		isLink = *attrs.IsLink
	}
	return Record{
		Text:        text,
		Timestamp:   timestamp,
		Author:      author,
		IsForwarded: attrs.IsForwarded,
		DocumentID:  attrs.DocumentID,
		HasPhoto:    attrs.HasPhoto,
		HasVoice:    attrs.HasVoice,
		HasAudio:    attrs.HasAudio,
		HasVideo:    attrs.HasVideo,
		HasSticker:  attrs.HasSticker,
		IsLink:      isLink,
	}
}

// HasDocument reports whether the message carries a generic attached document.
func (r Record) HasDocument() bool {
	return r.DocumentID != nil
}

// Len returns the text length in characters, not bytes.
func (r Record) Len() int {
	return utf8.RuneCountInString(r.Text)
}

// String renders the record for logs, truncating long content.
func (r Record) String() string {
	content := r.Text
	if utf8.RuneCountInString(content) > 100 {
		content = string([]rune(content)[:100]) + "[...]"
	}
	return fmt.Sprintf("Author = %s\nContent = [%s]\nDate = %s\nContains document = %t\nHas photo = %t\nIs link = %t\nIs forwarded = %t\n",
		r.Author, content, r.Timestamp.Format("2006-01-02 15:04:05"),
		r.HasDocument(), r.HasPhoto, r.IsLink, r.IsForwarded)
}

// linkRE matches a string that consists of nothing but a single URL:
// http/https/ftp/ftps scheme, a domain name, IPv4 address or localhost,
// an optional port, and an optional path/query consuming the rest.
var linkRE = regexp.MustCompile(`(?i)^(?:http|ftp)s?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+(?:[A-Z]{2,6}\.?|[A-Z0-9-]{2,}\.?)|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// IsLink reports whether the entire trimmed text is one URL. Text that merely
// contains a URL somewhere inside does not count.
func IsLink(text string) bool {
	return linkRE.MatchString(strings.TrimSpace(text))
}
