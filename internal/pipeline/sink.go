package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vlajnaya-mol/message-analyser/internal/stats"
)

// Sink consumes a finished report. Implementations draw charts, write files,
// or feed a UI; they never aggregate anything themselves.
type Sink interface {
	Render(ctx context.Context, report *Report) error
}

// ScalarCSVSink writes the scalar summary as scalar_info.csv in Dir, the same
// layout the charts sit next to.
type ScalarCSVSink struct {
	Dir string
	Log *slog.Logger
}

// Render implements Sink.
func (s ScalarCSVSink) Render(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	sum := report.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "Start date:,%s\n", sum.StartDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration:,%s\n", sum.Duration)
	fmt.Fprintf(&b, "Days without messages:,%d\n", sum.EmptyDays)
	fmt.Fprintf(&b, "Most active day:,%s : %d messages\n",
		sum.MostActiveDay.Format("2006-01-02"), sum.MostActiveCount)
	fmt.Fprintf(&b, "Average messages per day:,%.2f messages\n", sum.AveragePerDay)
	fmt.Fprintf(&b, "Longest pause:,%s From %s to %s\n",
		sum.LongestPause.Duration,
		sum.LongestPause.Start.Format("2006-01-02 15:04:05"),
		sum.LongestPause.End.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "\nINFO,TOTAL,%s,%s\n", sum.YourName, sum.TargetName)
	writeBreakdownRow(&b, "All messages", sum.Total.Messages, sum.Yours.Messages, sum.Targets.Messages)
	writeBreakdownRow(&b, "Characters", sum.Total.Characters, sum.Yours.Characters, sum.Targets.Characters)
	writeBreakdownRow(&b, "Photos", sum.Total.Photos, sum.Yours.Photos, sum.Targets.Photos)
	writeBreakdownRow(&b, "Stickers", sum.Total.Stickers, sum.Yours.Stickers, sum.Targets.Stickers)
	writeBreakdownRow(&b, "Songs (audio files)", sum.Total.Audios, sum.Yours.Audios, sum.Targets.Audios)
	writeBreakdownRow(&b, "Voice messages", sum.Total.Voices, sum.Yours.Voices, sum.Targets.Voices)
	writeBreakdownRow(&b, "Video messages", sum.Total.Videos, sum.Yours.Videos, sum.Targets.Videos)

	path := filepath.Join(s.Dir, "scalar_info.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing scalar info: %w", err)
	}
	if s.Log != nil {
		s.Log.Info("scalar info saved", "path", path)
	}
	return nil
}

func writeBreakdownRow(b *strings.Builder, label string, total, yours, targets int) {
	fmt.Fprintf(b, "%s,%d,%d,%d\n", label, total, yours, targets)
}

// FrequencyCSVSink writes the word and emoji frequency tables next to the
// scalar summary.
type FrequencyCSVSink struct {
	Dir string
	Log *slog.Logger
}

// Render implements Sink.
func (s FrequencyCSVSink) Render(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	if err := s.writeTable("top_words.csv", "word", report.TopWords, func(w string) string { return w }); err != nil {
		return err
	}
	return s.writeTable("top_emojis.csv", "emoji", report.TopEmojis, stats.EmojiName)
}

func (s FrequencyCSVSink) writeTable(name, header string, rows []stats.WordCount, label func(string) string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s,count\n", header)
	for _, row := range rows {
		fmt.Fprintf(&b, "%s,%d\n", label(row.Word), row.Count)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if s.Log != nil {
		s.Log.Info("frequency table saved", "path", path)
	}
	return nil
}

// Sinks fans a report out to several sinks in order.
type Sinks []Sink

// Render implements Sink.
func (s Sinks) Render(ctx context.Context, report *Report) error {
	for _, sink := range s {
		if err := sink.Render(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
