package export

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// Dump line format: a header line per message, continuation lines appended to
// the previous message's text. Attachment markers sit on their own line.
//
//	[2019-03-02 21:15:04] Alice: hello
//	still hello, second line
//	[2019-03-02 21:15:30] Bob: <photo>
const (
	headerPrefix     = "["
	headerTimeLayout = "2006-01-02 15:04:05"
	photoMarker      = "<photo>"
	attachmentMarker = "<attachment>"
)

// ReadFile decodes a dump file into raw records, in file order.
func ReadFile(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()

	var records []RawRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")
		if line == "" {
			continue
		}

		raw, ok, err := parseHeader(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			records = append(records, raw)
			continue
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("line %d: continuation before any message header", lineNo)
		}
		appendBody(&records[len(records)-1], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}
	return records, nil
}

// parseHeader tries to read "[timestamp] Sender: text". Returns ok=false for
// lines that are not headers.
func parseHeader(line string) (RawRecord, bool, error) {
	if !strings.HasPrefix(line, headerPrefix) {
		return RawRecord{}, false, nil
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return RawRecord{}, false, nil
	}
	ts, err := time.ParseInLocation(headerTimeLayout, line[1:end], time.UTC)
	if err != nil {
		// A bracketed line that isn't a timestamp is message content.
		return RawRecord{}, false, nil
	}

	rest := line[end+2:]
	sep := strings.Index(rest, ": ")
	if sep < 0 {
		return RawRecord{}, false, fmt.Errorf("header has no sender separator: %q", line)
	}
	raw := RawRecord{Sender: rest[:sep], Date: ts}
	appendBody(&raw, rest[sep+2:])
	return raw, true, nil
}

func appendBody(raw *RawRecord, line string) {
	switch line {
	case photoMarker:
		raw.HasPhoto = true
		return
	case attachmentMarker:
		raw.HasAttachment = true
		return
	}
	if raw.Text != "" {
		raw.Text += "\n"
	}
	raw.Text += line
}
