package buckets

import (
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// DefaultMonthsThreshold is the corpus span, in whole calendar months, above
// which chart axes switch from week ticks to month ticks.
const DefaultMonthsThreshold = 2

// Label formats for axis ticks.
const (
	dayLabelLayout   = "02/01/06"
	monthLabelLayout = "01/06"
)

// Axis describes the x axis of a time chart: tick positions in days since the
// corpus start date, their labels, and the bucket unit the ticks stand for.
type Axis struct {
	Unit   string // "month" or "week"
	Ticks  []int
	Labels []string
}

// NewAxis builds chart ticks for a corpus. Histories spanning more than
// monthsThreshold calendar months get month ticks; shorter ones get week
// ticks, since months would be too coarse. When crop is set, the first label
// is blanked if the interval between the corpus start and the second tick is
// a sliver (under 10 days for months, under 3 days for weeks) that would read
// as a misleading full bucket.
func NewAxis(msgs []message.Record, monthsThreshold int, crop bool) (*Axis, error) {
	months, err := CountMonths(msgs)
	if err != nil {
		return nil, err
	}
	startDate := DateOf(msgs[0].Timestamp)

	axis := &Axis{}
	var keys []time.Time
	if months > monthsThreshold {
		axis.Unit = "month"
		series, err := PerMonth(msgs)
		if err != nil {
			return nil, err
		}
		keys = series.Keys
		for _, key := range keys {
			axis.Labels = append(axis.Labels, key.Format(monthLabelLayout))
		}
		if crop && len(keys) > 1 && DaysBetween(startDate, keys[1]) < 10 {
			axis.Labels[0] = ""
		}
	} else {
		axis.Unit = "week"
		series, err := PerWeek(msgs)
		if err != nil {
			return nil, err
		}
		keys = series.Keys
		for _, key := range keys {
			axis.Labels = append(axis.Labels, key.Format(dayLabelLayout))
		}
		if crop && len(keys) > 2 && DaysBetween(startDate, keys[1]) < 3 {
			axis.Labels[0] = ""
		}
	}

	for _, key := range keys {
		// The first bucket usually starts before the corpus does, so its
		// tick is clamped to the start date.
		axis.Ticks = append(axis.Ticks, max(0, DaysBetween(startDate, key)))
	}
	return axis, nil
}

// PlotData returns the (x, groups) series for continuous plots, bucketed by
// month or week per the same threshold rule as NewAxis. Each interior
// bucket's x position is the midpoint between its tick and the next; the
// first bucket sits on its own tick and the last (when more than one bucket
// exists) on the midpoint between its tick and the true end date. Centering
// the points keeps trend lines from leaning into bucket boundaries.
func PlotData(msgs []message.Record, monthsThreshold int) ([]float64, *Series, error) {
	months, err := CountMonths(msgs)
	if err != nil {
		return nil, nil, err
	}

	var series *Series
	if months > monthsThreshold {
		series, err = PerMonth(msgs)
	} else {
		series, err = PerWeek(msgs)
	}
	if err != nil {
		return nil, nil, err
	}

	startDate := DateOf(msgs[0].Timestamp)
	endDate := DateOf(msgs[len(msgs)-1].Timestamp)
	ticks := make([]int, len(series.Keys))
	for i, key := range series.Keys {
		ticks[i] = max(0, DaysBetween(startDate, key))
	}

	xs := make([]float64, 0, len(ticks))
	xs = append(xs, float64(ticks[0]))
	for i := 1; i < len(ticks)-1; i++ {
		xs = append(xs, float64(ticks[i]+ticks[i+1])/2)
	}
	if len(series.Groups) > 1 {
		xs = append(xs, float64(ticks[len(ticks)-1]+DaysBetween(startDate, endDate))/2)
	}
	return xs, series, nil
}
