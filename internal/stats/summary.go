package stats

import (
	"time"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// Breakdown is the per-author slice of the scalar summary.
type Breakdown struct {
	Messages   int
	Characters int
	Photos     int
	Stickers   int
	Audios     int
	Voices     int
	Videos     int
}

// Summary is the scalar overview of one analysis session.
type Summary struct {
	StartDate       time.Time
	Duration        time.Duration
	EmptyDays       int
	MostActiveDay   time.Time
	MostActiveCount int
	AveragePerDay   float64
	LongestPause    Pause

	YourName   string
	TargetName string
	Total      Breakdown
	Yours      Breakdown
	Targets    Breakdown
}

// Summarize computes the scalar summary for an ascending corpus. Message
// counts cover the whole corpus; character and media counts are taken after
// dropping forwards, links, and overlong text, since those say nothing about
// how the two people actually write.
func Summarize(msgs []message.Record, yourName, targetName string) (*Summary, error) {
	days, err := buckets.PerDay(msgs)
	if err != nil {
		return nil, err
	}
	pause, err := LongestPause(msgs)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		StartDate:    msgs[0].Timestamp,
		Duration:     msgs[len(msgs)-1].Timestamp.Sub(msgs[0].Timestamp),
		LongestPause: pause,
		YourName:     yourName,
		TargetName:   targetName,
	}

	// Strictly-greater comparison over the ordered day series: on a tie the
	// earliest day wins.
	for i, group := range days.Groups {
		if len(group) == 0 {
			s.EmptyDays++
		}
		if len(group) > s.MostActiveCount {
			s.MostActiveCount = len(group)
			s.MostActiveDay = days.Keys[i]
		}
	}
	s.AveragePerDay = float64(len(msgs)) / float64(len(days.Groups))

	s.Total.Messages = len(msgs)
	for _, msg := range msgs {
		if msg.Author == targetName {
			s.Targets.Messages++
		}
	}
	s.Yours.Messages = s.Total.Messages - s.Targets.Messages

	content := message.Filter{RemoveForwards: true, RemoveLinks: true, MaxLen: message.MaxMessageLength - 1}.Apply(msgs)
	for _, msg := range content {
		target := msg.Author == targetName
		tally(&s.Total, msg)
		if target {
			tally(&s.Targets, msg)
		} else {
			tally(&s.Yours, msg)
		}
	}
	return s, nil
}

func tally(b *Breakdown, msg message.Record) {
	b.Characters += msg.Len()
	if msg.HasPhoto {
		b.Photos++
	}
	if msg.HasSticker {
		b.Stickers++
	}
	if msg.HasAudio {
		b.Audios++
	}
	if msg.HasVoice {
		b.Voices++
	}
	if msg.HasVideo {
		b.Videos++
	}
}
