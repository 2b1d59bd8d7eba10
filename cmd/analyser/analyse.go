package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vlajnaya-mol/message-analyser/internal/config"
	"github.com/vlajnaya-mol/message-analyser/internal/export"
	"github.com/vlajnaya-mol/message-analyser/internal/message"
	"github.com/vlajnaya-mol/message-analyser/internal/pipeline"
	"github.com/vlajnaya-mol/message-analyser/internal/stats"
	"github.com/vlajnaya-mol/message-analyser/internal/storage"
)

func newAnalyseCmd(cfg **config.Config, log **slog.Logger) *cobra.Command {
	var (
		fromFile    string
		fromArchive bool
	)

	cmd := &cobra.Command{
		Use:   "analyse",
		Short: "Run the analysis over the configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyse(cmd.Context(), *cfg, *log, fromFile, fromArchive)
		},
	}
	cmd.Flags().StringVar(&fromFile, "from-file", "", "analyse a previously stored corpus file instead of retrieving")
	cmd.Flags().BoolVar(&fromArchive, "from-archive", false, "include the local message archive as a source")
	return cmd
}

func newImportCmd(cfg **config.Config, log **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "import <corpus-file>",
		Short: "Analyse a previously stored corpus snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyse(cmd.Context(), *cfg, *log, args[0], false)
		},
	}
}

func analyse(ctx context.Context, cfg *config.Config, log *slog.Logger, fromFile string, fromArchive bool) error {
	sources, cleanup, err := buildSources(cfg, log, fromFile, fromArchive)
	if err != nil {
		return err
	}
	defer cleanup()

	var words []string
	if cfg.Session.WordsFile != "" {
		if words, err = storage.LoadWords(cfg.Session.WordsFile); err != nil {
			return err
		}
		log.Info("word list loaded", "path", cfg.Session.WordsFile, "words", len(words))
	}

	p := pipeline.New(pipeline.Options{
		YourName:         cfg.Session.YourName,
		TargetName:       cfg.Session.TargetName,
		MinutesPerBucket: cfg.Analysis.MinutesPerBucket,
		MonthsThreshold:  cfg.Analysis.MonthsThreshold,
		MaxMessageLength: cfg.Analysis.MaxMessageLength,
		TopChart:         cfg.Analysis.TopChart,
		Words:            words,
	}, log)

	report, err := p.Run(ctx, sources)
	if err != nil {
		return err
	}

	dir := resultsDir(cfg)
	sinks := pipeline.Sinks{
		pipeline.ScalarCSVSink{Dir: dir, Log: log},
		pipeline.FrequencyCSVSink{Dir: dir, Log: log},
	}
	if err := sinks.Render(ctx, report); err != nil {
		return err
	}

	// Snapshot the corpus and the ranked word list so a later run can skip
	// retrieval entirely.
	if fromFile == "" {
		snapshot := filepath.Join(dir, "messages.json")
		if err := storage.StoreMessages(snapshot, report.Messages); err != nil {
			return err
		}
		log.Info("corpus snapshot saved", "path", snapshot, "messages", len(report.Messages))
	}
	totals := make(map[string]int, len(report.WordCountsYours)+len(report.WordCountsTarget))
	for w, c := range report.WordCountsYours {
		totals[w] += c
	}
	for w, c := range report.WordCountsTarget {
		totals[w] += c
	}
	top := make([]string, 0, cfg.Analysis.TopWords)
	for _, row := range stats.TopN(totals, cfg.Analysis.TopWords) {
		top = append(top, row.Word)
	}
	if err := storage.StoreTopWords(filepath.Join(dir, "words.csv"), top,
		report.WordCountsYours, report.WordCountsTarget); err != nil {
		return err
	}

	log.Info("analysis finished", "results", dir)
	return nil
}

// buildSources assembles the session's active sources in a fixed order:
// stored corpus, export dump, local archive.
func buildSources(cfg *config.Config, log *slog.Logger, fromFile string, fromArchive bool) ([]pipeline.Source, func(), error) {
	var sources []pipeline.Source
	cleanup := func() {}

	// A stored corpus replaces retrieval entirely.
	if fromFile != "" {
		sources = append(sources, pipeline.SourceFunc{
			SourceName: "corpus_file",
			Fn: func(context.Context) ([]message.Record, error) {
				return storage.LoadMessages(fromFile)
			},
		})
		return sources, cleanup, nil
	}

	if cfg.Session.ExportFile != "" {
		adapter := export.NewAdapter(cfg.Session.YourName, cfg.Session.TargetName)
		path := cfg.Session.ExportFile
		sources = append(sources, pipeline.SourceFunc{
			SourceName: "export_file",
			Fn: func(context.Context) ([]message.Record, error) {
				raws, err := export.ReadFile(path)
				if err != nil {
					return nil, err
				}
				return adapter.MapAll(raws)
			},
		})
	}

	if fromArchive {
		db, err := storage.NewDB(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { storage.CloseDB(db) }
		archive := storage.NewArchive(db, log)
		sources = append(sources, pipeline.SourceFunc{
			SourceName: "archive",
			Fn:         archive.LoadMessages,
		})
	}

	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no sources configured: set session.export_file, or pass --from-file or --from-archive")
	}
	return sources, cleanup, nil
}

func resultsDir(cfg *config.Config) string {
	stamp := time.Now().Format("02-01-06 15-04-05")
	return filepath.Join(cfg.Storage.ResultsDir,
		fmt.Sprintf("%s_%s_%s", stamp, cfg.Session.YourName, cfg.Session.TargetName))
}
