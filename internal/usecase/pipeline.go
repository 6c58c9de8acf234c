package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/progress"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Repository  ports.ArticleRepository
	Discussions ports.DiscussionSource
	Keywords    ports.KeywordExtractor
	Scorer      ports.SentimentScorer
	Summarizer  ports.Summarizer
	Notifier    ports.Notifier
	Uploader    ports.ObjectUploader
	Progress    ports.Progress
	Logger      *slog.Logger
}

// Settings bounds every batch the pipeline runs.
type Settings struct {
	FetchBatch   int
	SearchBatch  int
	ThreadLimit  int
	CommentLimit int
	SummaryBatch int
	MaxSentences int
	BaseYear     int
	BandSize     int
	SearchPasses int
	ExportKey    string
}

// DefaultSettings mirrors the batch sizes external quotas allow.
func DefaultSettings() Settings {
	return Settings{
		FetchBatch:   25,
		SearchBatch:  5,
		ThreadLimit:  5,
		CommentLimit: domain.CommentSlots,
		SummaryBatch: 25,
		MaxSentences: 1,
		BaseYear:     domain.DefaultBaseYear,
		BandSize:     domain.DefaultBandSize,
		SearchPasses: 5,
	}
}

// Pipeline implements the article -> discussion -> summary -> export workflow.
type Pipeline struct {
	source      ports.ArticleSource
	repository  ports.ArticleRepository
	discussions ports.DiscussionSource
	keywords    ports.KeywordExtractor
	scorer      ports.SentimentScorer
	summarizer  ports.Summarizer
	notifier    ports.Notifier
	uploader    ports.ObjectUploader
	progress    ports.Progress
	logger      *slog.Logger
	settings    Settings
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, settings Settings) *Pipeline {
	p := &Pipeline{
		source:      deps.Source,
		repository:  deps.Repository,
		discussions: deps.Discussions,
		keywords:    deps.Keywords,
		scorer:      deps.Scorer,
		summarizer:  deps.Summarizer,
		notifier:    deps.Notifier,
		uploader:    deps.Uploader,
		progress:    deps.Progress,
		logger:      deps.Logger,
		settings:    settings,
	}
	if p.progress == nil {
		p.progress = progress.Discard{}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// RunReport summarizes one Run invocation.
type RunReport struct {
	Fetched    int
	Searched   int
	Summarized int
	Exported   int
}

// Run executes one fetch batch, SearchPasses search batches, one summarize batch and the export.
func (p *Pipeline) Run(ctx context.Context, exportPath string) (RunReport, error) {
	var report RunReport

	fetched, err := p.FetchBatch(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch: %w", err)
	}
	report.Fetched = fetched

	passes := p.settings.SearchPasses
	if passes <= 0 {
		passes = 1
	}
	for i := 0; i < passes; i++ {
		searched, err := p.SearchBatch(ctx)
		if err != nil {
			return report, fmt.Errorf("search pass %d: %w", i+1, err)
		}
		report.Searched += searched
		if searched == 0 {
			break
		}
	}

	summarized, err := p.SummarizeBatch(ctx)
	if err != nil {
		return report, fmt.Errorf("summarize: %w", err)
	}
	report.Summarized = summarized

	rows, err := p.ExportFile(ctx, exportPath)
	if err != nil {
		return report, fmt.Errorf("export: %w", err)
	}
	report.Exported = len(rows)

	p.logger.Info("run complete",
		"fetched", report.Fetched,
		"searched", report.Searched,
		"summarized", report.Summarized,
		"exported", report.Exported,
	)
	return report, nil
}
