package stats

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	day := func(d, h int) time.Time {
		return time.Date(2021, 6, d, h, 0, 0, 0, time.UTC)
	}
	msgs := []message.Record{
		msg("hello", "alice", day(1, 9), message.Attrs{}),
		msg("hi", "bob", day(1, 10), message.Attrs{HasPhoto: true}),
		// Day 2 empty.
		msg("https://example.com", "alice", day(3, 9), message.Attrs{}),
		msg("fwd", "bob", day(3, 10), message.Attrs{IsForwarded: true}),
		msg("evening", "alice", day(3, 11), message.Attrs{}),
	}

	s, err := Summarize(msgs, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if !s.StartDate.Equal(day(1, 9)) {
		t.Errorf("StartDate = %s", s.StartDate)
	}
	if want := day(3, 11).Sub(day(1, 9)); s.Duration != want {
		t.Errorf("Duration = %s, want %s", s.Duration, want)
	}
	if s.EmptyDays != 1 {
		t.Errorf("EmptyDays = %d, want 1", s.EmptyDays)
	}
	if !s.MostActiveDay.Equal(buckets.DateOf(day(3, 0))) || s.MostActiveCount != 3 {
		t.Errorf("most active = %s (%d), want 2021-06-03 (3)", s.MostActiveDay, s.MostActiveCount)
	}
	if want := float64(5) / 3; s.AveragePerDay != want {
		t.Errorf("AveragePerDay = %v, want %v", s.AveragePerDay, want)
	}
	if s.LongestPause.Duration != day(3, 9).Sub(day(1, 10)) {
		t.Errorf("LongestPause = %s", s.LongestPause.Duration)
	}

	// Message counts cover the whole corpus.
	if s.Total.Messages != 5 || s.Yours.Messages != 3 || s.Targets.Messages != 2 {
		t.Errorf("messages = %d/%d/%d, want 5/3/2",
			s.Total.Messages, s.Yours.Messages, s.Targets.Messages)
	}

	// Characters are tallied after dropping the link and the forward:
	// "hello" + "hi" + "evening".
	if want := 5 + 2 + 7; s.Total.Characters != want {
		t.Errorf("Total.Characters = %d, want %d", s.Total.Characters, want)
	}
	if s.Yours.Characters != 12 || s.Targets.Characters != 2 {
		t.Errorf("characters yours/targets = %d/%d, want 12/2",
			s.Yours.Characters, s.Targets.Characters)
	}
	if s.Total.Photos != 1 || s.Targets.Photos != 1 {
		t.Errorf("photos = %d total, %d targets, want 1/1", s.Total.Photos, s.Targets.Photos)
	}
}

func TestSummarizeMostActiveTieEarliestWins(t *testing.T) {
	t.Parallel()

	day := func(d, h int) time.Time {
		return time.Date(2021, 6, d, h, 0, 0, 0, time.UTC)
	}
	msgs := []message.Record{
		msg("a", "alice", day(1, 9), message.Attrs{}),
		msg("b", "bob", day(1, 10), message.Attrs{}),
		msg("c", "alice", day(2, 9), message.Attrs{}),
		msg("d", "bob", day(2, 10), message.Attrs{}),
	}
	s, err := Summarize(msgs, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !s.MostActiveDay.Equal(buckets.DateOf(day(1, 0))) {
		t.Errorf("MostActiveDay = %s, want the earlier of the tied days", s.MostActiveDay)
	}
}

func TestSummarizeDropsOverlongText(t *testing.T) {
	t.Parallel()

	at := time.Date(2021, 6, 1, 9, 0, 0, 0, time.UTC)
	msgs := []message.Record{
		msg("short", "alice", at, message.Attrs{}),
		msg(strings.Repeat("x", message.MaxMessageLength), "alice", at.Add(time.Minute), message.Attrs{}),
	}
	s, err := Summarize(msgs, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if s.Total.Messages != 2 {
		t.Errorf("Total.Messages = %d, want 2", s.Total.Messages)
	}
	if s.Total.Characters != 5 {
		t.Errorf("Total.Characters = %d, want 5 (pasted dump excluded)", s.Total.Characters)
	}
}

func TestSummarizeEmptyCorpus(t *testing.T) {
	t.Parallel()

	if _, err := Summarize(nil, "alice", "bob"); !errors.Is(err, buckets.ErrEmptyCorpus) {
		t.Errorf("got %v, want ErrEmptyCorpus", err)
	}
}
