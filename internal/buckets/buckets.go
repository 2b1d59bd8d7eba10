// Package buckets partitions an ascending stream of message records into
// calendar-aligned groups (days, weeks, months, minute bins, weekdays, hours)
// and generates the matching axis ticks for charting. Every entry point
// validates its input: the corpus must be non-empty and sorted ascending by
// timestamp.
package buckets

import (
	"errors"
	"fmt"
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

var (
	// ErrEmptyCorpus is returned when a bucketing or statistics function
	// receives no messages.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrUnsorted is returned when the corpus is not ascending by timestamp.
	ErrUnsorted = errors.New("corpus is not sorted by timestamp")
)

// Validate checks the shared bucketing precondition: a non-empty corpus in
// ascending timestamp order.
func Validate(msgs []message.Record) error {
	if len(msgs) == 0 {
		return ErrEmptyCorpus
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			return fmt.Errorf("%w: message %d predates message %d", ErrUnsorted, i, i-1)
		}
	}
	return nil
}

// Series is an ordered sequence of calendar buckets. Keys ascend and are
// contiguous; buckets with no messages are present as empty groups. Iterating
// Keys front to back therefore visits buckets in calendar order, which is
// what makes "first maximum wins" selections deterministic.
type Series struct {
	Keys   []time.Time
	Groups [][]message.Record
}

// Counts returns the number of messages in each bucket, in key order.
func (s *Series) Counts() []int {
	counts := make([]int, len(s.Groups))
	for i, g := range s.Groups {
		counts[i] = len(g)
	}
	return counts
}

// Total returns the number of messages across all buckets.
func (s *Series) Total() int {
	total := 0
	for _, g := range s.Groups {
		total += len(g)
	}
	return total
}

// DateOf strips the clock from a timestamp, leaving the calendar date as a
// UTC midnight. Dates are kept in UTC so day arithmetic is immune to DST.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b. Both arguments
// must be DateOf results.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// MondayOf rolls a date back to the Monday on or before it.
func MondayOf(date time.Time) time.Time {
	back := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -back)
}

// MonthOf rolls a date back to the first day of its month.
func MonthOf(date time.Time) time.Time {
	y, m, _ := date.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// PerDay groups messages by calendar date, one bucket per day from the first
// message's date through the last message's date. Days with no messages get
// an empty bucket; this is what keeps "average per day" and "days without
// messages" honest.
func PerDay(msgs []message.Record) (*Series, error) {
	if err := Validate(msgs); err != nil {
		return nil, err
	}
	return groupByKey(msgs, DateOf, DateOf(msgs[0].Timestamp), DateOf(msgs[len(msgs)-1].Timestamp), stepDays(1))
}

// PerWeek groups messages by calendar week. Weeks start on Monday; the first
// bucket is rolled back to the Monday on or before the first message's date.
func PerWeek(msgs []message.Record) (*Series, error) {
	if err := Validate(msgs); err != nil {
		return nil, err
	}
	keyOf := func(t time.Time) time.Time { return MondayOf(DateOf(t)) }
	return groupByKey(msgs, keyOf, keyOf(msgs[0].Timestamp), DateOf(msgs[len(msgs)-1].Timestamp), stepDays(7))
}

// PerMonth groups messages by calendar month, keyed by the first day of each
// month, crossing year boundaries as needed.
func PerMonth(msgs []message.Record) (*Series, error) {
	if err := Validate(msgs); err != nil {
		return nil, err
	}
	keyOf := func(t time.Time) time.Time { return MonthOf(DateOf(t)) }
	step := func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	return groupByKey(msgs, keyOf, keyOf(msgs[0].Timestamp), DateOf(msgs[len(msgs)-1].Timestamp), step)
}

// PerDays groups messages into fixed-width intervals of n days starting at
// the first message's date. Unlike PerWeek the intervals are not aligned to
// the calendar.
func PerDays(msgs []message.Record, n int) (*Series, error) {
	if n <= 0 {
		return nil, fmt.Errorf("interval width must be positive, got %d", n)
	}
	if err := Validate(msgs); err != nil {
		return nil, err
	}
	start := DateOf(msgs[0].Timestamp)
	keyOf := func(t time.Time) time.Time {
		return start.AddDate(0, 0, DaysBetween(start, DateOf(t))/n*n)
	}
	return groupByKey(msgs, keyOf, start, DateOf(msgs[len(msgs)-1].Timestamp), stepDays(n))
}

// MinuteSeries holds per-time-of-day buckets: bin i covers wall-clock minutes
// [Keys[i], Keys[i]+width) aggregated across all days of the corpus.
type MinuteSeries struct {
	Width  int
	Keys   []int
	Groups [][]message.Record
}

// Counts returns the number of messages in each bin.
func (s *MinuteSeries) Counts() []int {
	counts := make([]int, len(s.Groups))
	for i, g := range s.Groups {
		counts[i] = len(g)
	}
	return counts
}

// PerMinutes partitions the 24-hour clock into bins of the given width in
// minutes and groups messages by their time of day. All bins are present even
// when empty.
func PerMinutes(msgs []message.Record, width int) (*MinuteSeries, error) {
	if width <= 0 || width > 24*60 {
		return nil, fmt.Errorf("minute bucket width out of range: %d", width)
	}
	if err := Validate(msgs); err != nil {
		return nil, err
	}
	s := &MinuteSeries{Width: width}
	index := make(map[int]int)
	for minute := 0; minute < 24*60; minute += width {
		index[minute] = len(s.Keys)
		s.Keys = append(s.Keys, minute)
		s.Groups = append(s.Groups, nil)
	}
	for _, msg := range msgs {
		minute := (msg.Timestamp.Hour()*60 + msg.Timestamp.Minute()) / width * width
		i := index[minute]
		s.Groups[i] = append(s.Groups[i], msg)
	}
	return s, nil
}

// Weekdays returns English weekday names, Monday first, matching the index
// order of PerWeekday.
func Weekdays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

// PerWeekday groups messages into the 7 days of the week, Monday = 0. All
// seven buckets are always present.
func PerWeekday(msgs []message.Record) ([7][]message.Record, error) {
	var groups [7][]message.Record
	if err := Validate(msgs); err != nil {
		return groups, err
	}
	for _, msg := range msgs {
		d := (int(msg.Timestamp.Weekday()) + 6) % 7
		groups[d] = append(groups[d], msg)
	}
	return groups, nil
}

// Hours returns the 24 hour-of-day axis labels "00:00".."23:00".
func Hours() []string {
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = fmt.Sprintf("%02d:00", i)
	}
	return labels
}

// PerHour groups messages into the 24 hours of the day across all days. All
// buckets are always present.
func PerHour(msgs []message.Record) ([24][]message.Record, error) {
	var groups [24][]message.Record
	if err := Validate(msgs); err != nil {
		return groups, err
	}
	for _, msg := range msgs {
		h := msg.Timestamp.Hour()
		groups[h] = append(groups[h], msg)
	}
	return groups, nil
}

// CountMonths returns the number of whole calendar months between the first
// and the last message.
func CountMonths(msgs []message.Record) (int, error) {
	if err := Validate(msgs); err != nil {
		return 0, err
	}
	first, last := msgs[0].Timestamp, msgs[len(msgs)-1].Timestamp
	months := (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
	if clockOfMonth(last) < clockOfMonth(first) {
		months--
	}
	return months, nil
}

// clockOfMonth collapses the within-month position of a timestamp into one
// comparable number of seconds.
func clockOfMonth(t time.Time) int64 {
	return int64(t.Day()-1)*24*3600 + int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

func stepDays(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(0, 0, n) }
}

// groupByKey materializes every bucket from start through end (inclusive),
// then distributes messages by their key. Input must already be validated.
func groupByKey(msgs []message.Record, keyOf func(time.Time) time.Time, start, end time.Time, step func(time.Time) time.Time) (*Series, error) {
	s := &Series{}
	index := make(map[time.Time]int)
	for key := start; !key.After(end); key = step(key) {
		index[key] = len(s.Keys)
		s.Keys = append(s.Keys, key)
		s.Groups = append(s.Groups, nil)
	}
	for _, msg := range msgs {
		i, ok := index[keyOf(msg.Timestamp)]
		if !ok {
			return nil, fmt.Errorf("message at %s falls outside the bucket range", msg.Timestamp)
		}
		s.Groups[i] = append(s.Groups[i], msg)
	}
	return s, nil
}
