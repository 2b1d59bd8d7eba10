// Package pipeline sequences one analysis session: retrieve from the active
// sources, merge, validate, filter, bucket, aggregate, and hand the finished
// report to a rendering sink. Stages run one after another with a context
// check between them so an interactive front end can cancel at stage
// boundaries; a stage that has started always runs to completion.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vlajnaya-mol/message-analyser/internal/buckets"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
)

// Source produces one adapter's records for the session.
type Source interface {
	Name() string
	Retrieve(ctx context.Context) ([]message.Record, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context) ([]message.Record, error)
}

// Name implements Source.
func (s SourceFunc) Name() string { return s.SourceName }

// Retrieve implements Source.
func (s SourceFunc) Retrieve(ctx context.Context) ([]message.Record, error) { return s.Fn(ctx) }

// Options are the analysis knobs of one session.
type Options struct {
	YourName   string
	TargetName string

	MinutesPerBucket int
	MonthsThreshold  int
	MaxMessageLength int
	TopChart         int

	// Words, when non-empty, restricts the word frequency report to the
	// listed words.
	Words []string
}

// Pipeline runs analysis sessions.
type Pipeline struct {
	opts Options
	log  *slog.Logger
}

// New creates a pipeline with the given options.
func New(opts Options, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if opts.MinutesPerBucket <= 0 {
		opts.MinutesPerBucket = 2
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = message.MaxMessageLength
	}
	if opts.TopChart <= 0 {
		opts.TopChart = 10
	}
	return &Pipeline{opts: opts, log: log.With("component", "pipeline")}
}

// Run retrieves records from every source, merges them ascending by time, and
// computes the full report. It returns a validation error before any
// aggregation starts when the merged corpus is empty or out of order; no
// partial report is ever produced.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (*Report, error) {
	msgs, err := p.retrieve(ctx, sources)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Boundary validation: everything after this point assumes an
	// ascending, non-empty corpus.
	if err := buckets.Validate(msgs); err != nil {
		return nil, fmt.Errorf("corpus validation: %w", err)
	}

	p.log.Info("corpus assembled", "messages", len(msgs),
		"from", msgs[0].Timestamp, "to", msgs[len(msgs)-1].Timestamp)
	return p.report(ctx, msgs)
}

// retrieve runs every source and concatenates their outputs in source order.
// With more than one active source the concatenation is re-sorted ascending;
// a single source's native order is trusted (and verified at the validation
// boundary).
func (p *Pipeline) retrieve(ctx context.Context, sources []Source) ([]message.Record, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	results := make([][]message.Record, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			recs, err := src.Retrieve(gctx)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			p.log.Info("source retrieved", "source", src.Name(), "messages", len(recs))
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var msgs []message.Record
	for _, recs := range results {
		msgs = append(msgs, recs...)
	}
	if len(sources) > 1 {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		})
	}
	return msgs, nil
}
