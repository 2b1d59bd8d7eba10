package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

func testPipeline() *Pipeline {
	return New(Options{
		YourName:         "alice",
		TargetName:       "bob",
		MinutesPerBucket: 2,
		MonthsThreshold:  2,
		TopChart:         10,
	}, nil)
}

func fixedSource(name string, msgs []message.Record) Source {
	return SourceFunc{
		SourceName: name,
		Fn: func(context.Context) ([]message.Record, error) {
			return msgs, nil
		},
	}
}

func rec(text, author string, at time.Time) message.Record {
	return message.New(text, at, author, message.Attrs{})
}

func TestRunMergesSourcesInTimeOrder(t *testing.T) {
	t.Parallel()

	day := func(d, h int) time.Time {
		return time.Date(2021, 10, d, h, 0, 0, 0, time.UTC)
	}
	a := []message.Record{
		rec("a1", "alice", day(1, 9)),
		rec("a2", "alice", day(3, 9)),
	}
	b := []message.Record{
		rec("b1", "bob", day(2, 9)),
		rec("b2", "bob", day(4, 9)),
	}

	report, err := testPipeline().Run(context.Background(),
		[]Source{fixedSource("a", a), fixedSource("b", b)})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Messages) != 4 {
		t.Fatalf("merged %d messages, want 4", len(report.Messages))
	}
	wantTexts := []string{"a1", "b1", "a2", "b2"}
	for i, msg := range report.Messages {
		if msg.Text != wantTexts[i] {
			t.Errorf("message %d = %q, want %q", i, msg.Text, wantTexts[i])
		}
	}
}

func TestRunFailsOnEmptyCorpus(t *testing.T) {
	t.Parallel()

	_, err := testPipeline().Run(context.Background(),
		[]Source{fixedSource("empty", nil)})
	if !errors.Is(err, buckets.ErrEmptyCorpus) {
		t.Errorf("got %v, want ErrEmptyCorpus", err)
	}
}

func TestRunFailsOnUnsortedSingleSource(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time {
		return time.Date(2021, 10, d, 9, 0, 0, 0, time.UTC)
	}
	msgs := []message.Record{
		rec("late", "alice", day(5)),
		rec("early", "bob", day(1)),
	}
	_, err := testPipeline().Run(context.Background(),
		[]Source{fixedSource("unsorted", msgs)})
	if !errors.Is(err, buckets.ErrUnsorted) {
		t.Errorf("got %v, want ErrUnsorted", err)
	}
}

func TestRunPropagatesSourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("session expired")
	failing := SourceFunc{
		SourceName: "broken",
		Fn: func(context.Context) ([]message.Record, error) {
			return nil, boom
		},
	}
	_, err := testPipeline().Run(context.Background(), []Source{failing})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want the source's error", err)
	}
}

func TestRunNoSources(t *testing.T) {
	t.Parallel()

	if _, err := testPipeline().Run(context.Background(), nil); err == nil {
		t.Fatal("empty source list accepted")
	}
}

func TestReportAggregates(t *testing.T) {
	t.Parallel()

	day := func(d, h int) time.Time {
		return time.Date(2021, 10, d, h, 0, 0, 0, time.UTC)
	}
	msgs := []message.Record{
		rec("hello there", "alice", day(4, 9)), // Monday
		rec("hi hi", "bob", day(4, 10)),
		rec("https://example.com", "alice", day(5, 9)),
		rec("how was your day", "bob", day(6, 21)),
	}

	report, err := testPipeline().Run(context.Background(),
		[]Source{fixedSource("fixed", msgs)})
	if err != nil {
		t.Fatal(err)
	}

	if report.Summary == nil || report.Summary.Total.Messages != 4 {
		t.Fatalf("summary = %+v", report.Summary)
	}

	if len(report.DayKeys) != 3 {
		t.Errorf("got %d day buckets, want 3", len(report.DayKeys))
	}
	total := 0
	for _, c := range report.DayCounts {
		total += c
	}
	if total != 4 {
		t.Errorf("day counts sum to %d, want 4", total)
	}

	// Monday and Tuesday and Wednesday carry the messages.
	if report.WeekdayCounts[0] != 2 || report.WeekdayCounts[1] != 1 || report.WeekdayCounts[2] != 1 {
		t.Errorf("weekday counts = %v", report.WeekdayCounts)
	}
	if report.TargetWeekdayCounts[0] != 1 || report.TargetWeekdayCounts[2] != 1 {
		t.Errorf("target weekday counts = %v", report.TargetWeekdayCounts)
	}

	if report.HourCounts[9] != 2 || report.HourCounts[10] != 1 || report.HourCounts[21] != 1 {
		t.Errorf("hour counts: 09=%d 10=%d 21=%d", report.HourCounts[9], report.HourCounts[10], report.HourCounts[21])
	}

	if report.MinuteWidth != 2 || len(report.MinuteKeys) != 720 {
		t.Errorf("minute bins: width=%d keys=%d", report.MinuteWidth, len(report.MinuteKeys))
	}

	// Short span: week axis.
	if report.Axis == nil || report.Axis.Unit != "week" {
		t.Fatalf("axis = %+v", report.Axis)
	}
	plotTotal := 0
	for i := range report.PlotTotal {
		plotTotal += report.PlotTotal[i]
		if report.PlotYours[i]+report.PlotTarget[i] != report.PlotTotal[i] {
			t.Errorf("plot bucket %d: %d + %d != %d", i,
				report.PlotYours[i], report.PlotTarget[i], report.PlotTotal[i])
		}
	}
	if plotTotal != 4 {
		t.Errorf("plot total = %d, want 4", plotTotal)
	}
	if len(report.PlotX) != len(report.PlotTotal) {
		t.Errorf("PlotX has %d positions for %d buckets", len(report.PlotX), len(report.PlotTotal))
	}

	// The link is excluded from content metrics.
	if report.WordCountsYours["hello"] != 1 {
		t.Errorf(`yours["hello"] = %d, want 1`, report.WordCountsYours["hello"])
	}
	if report.WordCountsYours["https"] != 0 {
		t.Errorf("link text leaked into word counts: %v", report.WordCountsYours)
	}
	if report.WordCountsTarget["hi"] != 2 {
		t.Errorf(`target["hi"] = %d, want 2`, report.WordCountsTarget["hi"])
	}

	// Bob replied once within the cutoff; every other gap is a long silence.
	if len(report.ResponseTimesTarget) != 1 || report.ResponseTimesTarget[0] != time.Hour {
		t.Errorf("target response times = %v, want [1h]", report.ResponseTimesTarget)
	}
	if len(report.ResponseTimesYours) != 0 {
		t.Errorf("your response times = %v, want none", report.ResponseTimesYours)
	}

	if len(report.TopWords) == 0 {
		t.Error("no top words")
	}
	if report.LengthCounts[len("hello there")] != 1 {
		t.Errorf("length counts = %v", report.LengthCounts)
	}
}

func TestReportWordListRestriction(t *testing.T) {
	t.Parallel()

	day := time.Date(2021, 10, 4, 9, 0, 0, 0, time.UTC)
	msgs := []message.Record{
		rec("love and peace", "alice", day),
		rec("love wins", "bob", day.Add(time.Minute)),
	}

	p := New(Options{
		YourName:   "alice",
		TargetName: "bob",
		Words:      []string{"love", "absent"},
	}, nil)
	report, err := p.Run(context.Background(), []Source{fixedSource("fixed", msgs)})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.TopWords) != 1 {
		t.Fatalf("top words = %v, want only the listed word that occurs", report.TopWords)
	}
	if report.TopWords[0].Word != "love" || report.TopWords[0].Count != 2 {
		t.Errorf("top word = %+v, want love x2", report.TopWords[0])
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	day := time.Date(2021, 10, 4, 9, 0, 0, 0, time.UTC)
	msgs := []message.Record{rec("hello", "alice", day)}
	_, err := testPipeline().Run(ctx, []Source{fixedSource("fixed", msgs)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
