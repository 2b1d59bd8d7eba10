// Package stats computes the aggregation layer of the analyser: tokenization,
// word and emoji frequency tables, pause detection, and the scalar summary
// every report starts with.
package stats

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNotImplemented is returned when a caller requests stemming or
// part-of-speech filtering. Those were never wired to a morphology backend;
// failing loudly beats quietly returning unstemmed tokens.
var ErrNotImplemented = errors.New("stemming and part-of-speech filters are not implemented")

// TokenizeOptions selects tokenizer behavior beyond the plain word split.
type TokenizeOptions struct {
	Stem       bool
	POSFilters []string
}

// Tokenize splits text into lower-cased words. A word is a maximal run of
// letters plus apostrophe and backtick; digits, punctuation, and symbols
// separate words and never appear in tokens.
func Tokenize(text string, opts TokenizeOptions) ([]string, error) {
	if opts.Stem || opts.POSFilters != nil {
		return nil, ErrNotImplemented
	}

	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || r == '\'' || r == '`' {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return words, nil
}
