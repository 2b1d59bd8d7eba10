package message

import "strings"

// Filter bundles the independent, combinable criteria used to drop records
// before an analysis pass. The zero value keeps everything except messages
// longer than MaxMessageLength. A record survives only if it passes every
// active criterion; the input order is preserved and records are never
// mutated.
type Filter struct {
	// RemoveEmpty drops records whose text is exactly empty.
	RemoveEmpty bool

	// RemoveLinks drops records whose whole text is a single URL.
	RemoveLinks bool

	// RemoveForwards drops records forwarded from a third party.
	RemoveForwards bool

	// MinLen and MaxLen bound the text length in characters, inclusive.
	// A zero MaxLen means MaxMessageLength.
	MinLen int
	MaxLen int

	// ExceptPatterns drops records whose lower-cased text is made of
	// exactly the characters of one of these patterns and nothing else.
	// Used to exclude decorative "spam" like ")))" or "!!!".
	ExceptPatterns []string

	// ExceptSamples drops records whose text equals one of these strings,
	// case-insensitively.
	ExceptSamples []string
}

// Apply returns the records that survive every active criterion.
func (f Filter) Apply(msgs []Record) []Record {
	maxLen := f.MaxLen
	if maxLen == 0 {
		maxLen = MaxMessageLength
	}

	patterns := make([]map[rune]struct{}, len(f.ExceptPatterns))
	for i, p := range f.ExceptPatterns {
		patterns[i] = runeSet(strings.ToLower(p))
	}
	samples := make([]string, len(f.ExceptSamples))
	for i, s := range f.ExceptSamples {
		samples[i] = strings.ToLower(s)
	}

	kept := make([]Record, 0, len(msgs))
	for _, msg := range msgs {
		if f.keeps(msg, maxLen, patterns, samples) {
			kept = append(kept, msg)
		}
	}
	return kept
}

func (f Filter) keeps(msg Record, maxLen int, patterns []map[rune]struct{}, samples []string) bool {
	if f.RemoveEmpty && msg.Text == "" {
		return false
	}
	if n := msg.Len(); n < f.MinLen || n > maxLen {
		return false
	}
	if f.RemoveForwards && msg.IsForwarded {
		return false
	}
	if f.RemoveLinks && msg.IsLink {
		return false
	}
	if len(patterns) > 0 {
		chars := runeSet(strings.ToLower(msg.Text))
		for _, p := range patterns {
			if runeSetsEqual(chars, p) {
				return false
			}
		}
	}
	if len(samples) > 0 {
		text := strings.ToLower(msg.Text)
		for _, s := range samples {
			if text == s {
				return false
			}
		}
	}
	return true
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func runeSetsEqual(a, b map[rune]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for r := range a {
		if _, ok := b[r]; !ok {
			return false
		}
	}
	return true
}
