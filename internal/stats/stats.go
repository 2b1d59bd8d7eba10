package stats

import (
	"sort"
	"time"

	"github.com/forPelevin/gomoji"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// WordCount is one row of a frequency table.
type WordCount struct {
	Word  string
	Count int
}

// WordCounts tokenizes every record's text and accumulates a global frequency
// table. Order-independent; use TopN for a ranked view.
func WordCounts(msgs []message.Record, opts TokenizeOptions) (map[string]int, error) {
	counts := make(map[string]int)
	for _, msg := range msgs {
		words, err := Tokenize(msg.Text, opts)
		if err != nil {
			return nil, err
		}
		for _, w := range words {
			counts[w]++
		}
	}
	return counts, nil
}

// EmojiCounts counts every emoji rune across all records' text, keyed by the
// emoji itself.
func EmojiCounts(msgs []message.Record) map[string]int {
	counts := make(map[string]int)
	for _, msg := range msgs {
		for _, r := range msg.Text {
			s := string(r)
			if gomoji.ContainsEmoji(s) {
				counts[s]++
			}
		}
	}
	return counts
}

// EmojiName returns a human-readable name for an emoji, for chart labels.
// Falls back to the emoji itself when it is not in the canonical set.
func EmojiName(e string) string {
	info, err := gomoji.GetInfo(e)
	if err != nil {
		return e
	}
	return info.Slug
}

// LengthCounts counts how many records have each text length, in characters.
func LengthCounts(msgs []message.Record) map[int]int {
	counts := make(map[int]int)
	for _, msg := range msgs {
		counts[msg.Len()]++
	}
	return counts
}

// TopN ranks a frequency table descending by count, ties broken
// alphabetically, and returns at most n rows.
func TopN(counts map[string]int, n int) []WordCount {
	rows := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		rows = append(rows, WordCount{Word: w, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Word < rows[j].Word
		}
		return rows[i].Count > rows[j].Count
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Pause is the longest gap between two consecutive messages.
type Pause struct {
	Duration time.Duration
	Start    time.Time
	End      time.Time
}

// LongestPause scans an ascending corpus for the largest gap between
// consecutive messages. A single-message corpus yields a zero-length pause
// bracketed by that message's own timestamp.
func LongestPause(msgs []message.Record) (Pause, error) {
	if err := buckets.Validate(msgs); err != nil {
		return Pause{}, err
	}
	pause := Pause{Start: msgs[0].Timestamp, End: msgs[0].Timestamp}
	prev := msgs[0].Timestamp
	for _, msg := range msgs[1:] {
		if gap := msg.Timestamp.Sub(prev); gap > pause.Duration {
			pause = Pause{Duration: gap, Start: prev, End: msg.Timestamp}
		}
		prev = msg.Timestamp
	}
	return pause, nil
}

// responseCutoff caps gaps counted as response time; longer silences are
// sleep, not thinking.
const responseCutoff = 4 * time.Hour

// ResponseTimes collects how long the named person took to reply after the
// other side's last message, skipping gaps beyond the cutoff.
func ResponseTimes(msgs []message.Record, name string) []time.Duration {
	var res []time.Duration
	i := 0
	if len(msgs) > 0 && msgs[0].Author == name {
		for i < len(msgs) && msgs[i].Author == name {
			i++
		}
	}
	for i < len(msgs) {
		for i < len(msgs) && msgs[i].Author != name {
			i++
		}
		if i < len(msgs) {
			if gap := msgs[i].Timestamp.Sub(msgs[i-1].Timestamp); gap <= responseCutoff {
				res = append(res, gap)
			}
		}
		for i < len(msgs) && msgs[i].Author == name {
			i++
		}
	}
	return res
}

// TypeSeries is the per-bucket count of one non-text message kind.
type TypeSeries struct {
	Type   string
	Counts []int
}

// NonTextSeries counts each non-text message kind inside every group, in a
// fixed kind order suitable for stacked plots.
func NonTextSeries(groups [][]message.Record) []TypeSeries {
	kinds := []struct {
		name string
		has  func(message.Record) bool
	}{
		{"audio", func(m message.Record) bool { return m.HasAudio }},
		{"voice", func(m message.Record) bool { return m.HasVoice }},
		{"photo", func(m message.Record) bool { return m.HasPhoto }},
		{"video", func(m message.Record) bool { return m.HasVideo }},
		{"sticker", func(m message.Record) bool { return m.HasSticker }},
		{"link", func(m message.Record) bool { return m.IsLink }},
	}
	series := make([]TypeSeries, 0, len(kinds))
	for _, kind := range kinds {
		counts := make([]int, len(groups))
		for i, group := range groups {
			for _, msg := range group {
				if kind.has(msg) {
					counts[i]++
				}
			}
		}
		series = append(series, TypeSeries{Type: kind.name, Counts: counts})
	}
	return series
}

// Avg returns the arithmetic mean of a slice, zero when empty.
func Avg(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
