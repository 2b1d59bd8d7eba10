// Package export maps records from an exported text dump of a dialogue into
// the analyser's uniform records. Only the mapping carries invariants; the
// dump syntax itself is deliberately thin (see reader.go).
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// ErrUnknownAuthor is returned when a dump record's sender matches neither
// canonical session name. Silently attributing such a record would corrupt
// every per-author statistic, so the adapter refuses instead.
var ErrUnknownAuthor = errors.New("sender matches neither session name")

// attachmentDocID marks dump records that carry an attachment. Dumps don't
// preserve provider document ids, only the fact of attachment.
const attachmentDocID int64 = -1

// RawRecord is one already-decoded dump record.
type RawRecord struct {
	Sender        string
	Date          time.Time
	Text          string
	HasAttachment bool
	HasPhoto      bool
}

// Adapter resolves dump records against the two canonical session names.
type Adapter struct {
	yourName   string
	targetName string
}

// NewAdapter builds an adapter for one session.
func NewAdapter(yourName, targetName string) *Adapter {
	return &Adapter{yourName: yourName, targetName: targetName}
}

// Map converts one dump record. The sender must equal one of the two
// canonical names exactly; anything else is an attribution error.
func (a *Adapter) Map(raw RawRecord) (message.Record, error) {
	var author string
	switch raw.Sender {
	case a.yourName:
		author = a.yourName
	case a.targetName:
		author = a.targetName
	default:
		return message.Record{}, fmt.Errorf("%w: %q", ErrUnknownAuthor, raw.Sender)
	}

	attrs := message.Attrs{HasPhoto: raw.HasPhoto}
	if raw.HasAttachment {
		id := attachmentDocID
		attrs.DocumentID = &id
	}
	return message.New(raw.Text, raw.Date, author, attrs), nil
}

// MapAll converts a whole dump, failing on the first unattributable record.
func (a *Adapter) MapAll(raws []RawRecord) ([]message.Record, error) {
	records := make([]message.Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := a.Map(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
