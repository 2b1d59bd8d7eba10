package pipeline

import (
	"context"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
	"github.com/vlajnaya-mol/message-analyser/internal/stats"
)

// Report carries every pre-aggregated series a rendering sink needs. Sinks
// only draw; no bucketing or counting happens past this point.
type Report struct {
	YourName   string
	TargetName string

	// Messages is the merged, validated corpus, ascending by time.
	Messages []message.Record

	Summary *stats.Summary

	// Per-day series over the contiguous date range.
	DayKeys   []time.Time
	DayCounts []int

	// Fixed-cardinality distributions.
	WeekdayLabels       []string
	WeekdayCounts       [7]int
	TargetWeekdayCounts [7]int
	HourLabels          []string
	HourCounts          [24]int

	// Time-of-day bins of MinuteWidth minutes.
	MinuteWidth  int
	MinuteKeys   []int
	MinuteCounts []int

	// Chart axis (month or week ticks) and the midpoint x positions of the
	// matching bucket series.
	Axis  *buckets.Axis
	PlotX []float64

	// Per-plot-bucket message counts, total and per author, plus average
	// text lengths of the content-filtered corpus.
	PlotTotal  []int
	PlotYours  []int
	PlotTarget []int

	AvgLenYours  []float64
	AvgLenTarget []float64

	// Non-text kind counts per plot bucket, fixed kind order.
	NonText []stats.TypeSeries

	// Reply gaps per person, in corpus order, gaps beyond the sleep
	// cutoff excluded.
	ResponseTimesYours  []time.Duration
	ResponseTimesTarget []time.Duration

	// Frequency tables, computed on the content-filtered corpus.
	TopWords  []stats.WordCount
	TopEmojis []stats.WordCount

	WordCountsYours  map[string]int
	WordCountsTarget map[string]int

	LengthCounts map[int]int
}

// report computes every aggregate from an already-validated corpus.
func (p *Pipeline) report(ctx context.Context, msgs []message.Record) (*Report, error) {
	r := &Report{
		YourName:      p.opts.YourName,
		TargetName:    p.opts.TargetName,
		Messages:      msgs,
		WeekdayLabels: buckets.Weekdays(),
		HourLabels:    buckets.Hours(),
		MinuteWidth:   p.opts.MinutesPerBucket,
	}

	summary, err := stats.Summarize(msgs, p.opts.YourName, p.opts.TargetName)
	if err != nil {
		return nil, err
	}
	r.Summary = summary

	days, err := buckets.PerDay(msgs)
	if err != nil {
		return nil, err
	}
	r.DayKeys = days.Keys
	r.DayCounts = days.Counts()

	weekdays, err := buckets.PerWeekday(msgs)
	if err != nil {
		return nil, err
	}
	for i, group := range weekdays {
		r.WeekdayCounts[i] = len(group)
		for _, msg := range group {
			if msg.Author == p.opts.TargetName {
				r.TargetWeekdayCounts[i]++
			}
		}
	}

	hours, err := buckets.PerHour(msgs)
	if err != nil {
		return nil, err
	}
	for i, group := range hours {
		r.HourCounts[i] = len(group)
	}

	minutes, err := buckets.PerMinutes(msgs, p.opts.MinutesPerBucket)
	if err != nil {
		return nil, err
	}
	r.MinuteKeys = minutes.Keys
	r.MinuteCounts = minutes.Counts()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.Axis, err = buckets.NewAxis(msgs, p.opts.MonthsThreshold, true)
	if err != nil {
		return nil, err
	}
	plotX, plotSeries, err := buckets.PlotData(msgs, p.opts.MonthsThreshold)
	if err != nil {
		return nil, err
	}
	r.PlotX = plotX
	r.PlotTotal = plotSeries.Counts()
	r.PlotYours = make([]int, len(plotSeries.Groups))
	r.PlotTarget = make([]int, len(plotSeries.Groups))
	for i, group := range plotSeries.Groups {
		for _, msg := range group {
			if msg.Author == p.opts.TargetName {
				r.PlotTarget[i]++
			} else {
				r.PlotYours[i]++
			}
		}
	}
	r.NonText = stats.NonTextSeries(plotSeries.Groups)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Content metrics ignore forwards, links, empties, and overlong
	// pastes; those distort how the two people actually write.
	content := message.Filter{
		RemoveEmpty:    true,
		RemoveForwards: true,
		RemoveLinks:    true,
		MaxLen:         p.opts.MaxMessageLength - 1,
	}.Apply(msgs)

	if len(content) > 0 {
		// The content charts bucket the filtered corpus on its own
		// span, which can be narrower than the full one.
		_, contentSeries, err := buckets.PlotData(content, p.opts.MonthsThreshold)
		if err != nil {
			return nil, err
		}
		r.AvgLenYours = make([]float64, len(contentSeries.Groups))
		r.AvgLenTarget = make([]float64, len(contentSeries.Groups))
		for i, group := range contentSeries.Groups {
			var yours, targets []int
			for _, msg := range group {
				if msg.Author == p.opts.TargetName {
					targets = append(targets, msg.Len())
				} else {
					yours = append(yours, msg.Len())
				}
			}
			r.AvgLenYours[i] = stats.Avg(yours)
			r.AvgLenTarget[i] = stats.Avg(targets)
		}
	}

	r.ResponseTimesYours = stats.ResponseTimes(msgs, p.opts.YourName)
	r.ResponseTimesTarget = stats.ResponseTimes(msgs, p.opts.TargetName)

	var yourContent, targetContent []message.Record
	for _, msg := range content {
		if msg.Author == p.opts.TargetName {
			targetContent = append(targetContent, msg)
		} else {
			yourContent = append(yourContent, msg)
		}
	}

	if r.WordCountsYours, err = stats.WordCounts(yourContent, stats.TokenizeOptions{}); err != nil {
		return nil, err
	}
	if r.WordCountsTarget, err = stats.WordCounts(targetContent, stats.TokenizeOptions{}); err != nil {
		return nil, err
	}
	totalWords, err := stats.WordCounts(content, stats.TokenizeOptions{})
	if err != nil {
		return nil, err
	}
	if len(p.opts.Words) > 0 {
		allowed := make(map[string]int, len(p.opts.Words))
		for _, w := range p.opts.Words {
			if c, ok := totalWords[w]; ok {
				allowed[w] = c
			}
		}
		totalWords = allowed
	}
	r.TopWords = stats.TopN(totalWords, p.opts.TopChart)
	r.TopEmojis = stats.TopN(stats.EmojiCounts(content), p.opts.TopChart)
	r.LengthCounts = stats.LengthCounts(content)

	return r, nil
}
