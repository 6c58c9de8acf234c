package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"DiscussionScanner/internal/config"
	"DiscussionScanner/internal/infrastructure/news"
	"DiscussionScanner/internal/infrastructure/objectstore"
	"DiscussionScanner/internal/infrastructure/reddit"
	"DiscussionScanner/internal/infrastructure/scheduler"
	"DiscussionScanner/internal/infrastructure/storage"
	"DiscussionScanner/internal/infrastructure/summarizer"
	"DiscussionScanner/internal/infrastructure/telegram"
	"DiscussionScanner/internal/logging"
	"DiscussionScanner/internal/nlp"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/progress"
	"DiscussionScanner/internal/scanner"
	"DiscussionScanner/internal/sentiment"
	"DiscussionScanner/internal/usecase"
	"DiscussionScanner/internal/visualize"
)

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	repo     *storage.SQLiteRepository
	pipeline *usecase.Pipeline
	plotter  usecase.Plotter
}

// New opens the store and builds every adapter the configuration enables.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	registry := scanner.NewRegistry()
	registry.Register(news.NewArchiveScanner(httpClient, cfg.News.ArchiveURL, cfg.News.APIKey,
		news.ArchiveWindow{StartYear: cfg.News.StartYear, LastYear: cfg.News.LastYear, BandSize: cfg.News.YearBandSize},
		baseLogger.With("component", "scanner.nyt-archive")))
	registry.Register(news.NewTopStoriesScanner(httpClient, cfg.News.TopStoriesURL, cfg.News.APIKey))
	registry.Register(news.NewRSSScanner(httpClient, cfg.News.FeedURL))

	source := news.NewStrategySource(registry, cfg.News.Source, baseLogger.With("component", "source"))

	discussions := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		AuthURL:      cfg.Reddit.AuthURL,
		APIURL:       cfg.Reddit.APIURL,
		Subreddit:    cfg.Reddit.Subreddit,
	}, httpClient, baseLogger.With("component", "reddit"))

	summary, err := newSummarizer(cfg, baseLogger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}

	deps := usecase.PipelineDeps{
		Source:      source,
		Repository:  repo,
		Discussions: discussions,
		Keywords:    nlp.NounExtractor{},
		Scorer:      sentiment.NewVaderScorer(),
		Summarizer:  summary,
		Logger:      baseLogger.With("component", "pipeline"),
	}

	tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	if tg.Configured() {
		deps.Notifier = tg
	}

	if s3cfg := cfg.Export.S3; s3cfg.Bucket != "" {
		uploader, err := objectstore.NewS3Uploader(ctx, objectstore.Config{
			Bucket:       s3cfg.Bucket,
			Region:       s3cfg.Region,
			Profile:      s3cfg.Profile,
			Endpoint:     s3cfg.Endpoint,
			UsePathStyle: s3cfg.UsePathStyle,
		})
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		deps.Uploader = uploader
	}

	if cfg.Progress.Enabled {
		deps.Progress = progress.NewTerminal(os.Stdout, baseLogger.With("component", "progress"))
	}

	pipeline := usecase.NewPipeline(deps, usecase.Settings{
		FetchBatch:   cfg.News.BatchSize,
		SearchBatch:  cfg.Reddit.BatchSize,
		ThreadLimit:  cfg.Reddit.ThreadLimit,
		CommentLimit: cfg.Reddit.CommentLimit,
		SummaryBatch: cfg.Summarizer.BatchSize,
		MaxSentences: cfg.Summarizer.MaxSentences,
		BaseYear:     cfg.Export.BaseYear,
		BandSize:     cfg.Export.BandSize,
		SearchPasses: cfg.Run.SearchPasses,
		ExportKey:    cfg.Export.S3.Key,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		repo:     repo,
		pipeline: pipeline,
		plotter: usecase.Plotter{
			Renderer: visualize.Renderer{SampleSize: cfg.Charts.SampleSize, Seed: cfg.Charts.Seed},
			OutDir:   cfg.Charts.Dir,
			Logger:   baseLogger.With("component", "plot"),
		},
	}, nil
}

func newSummarizer(cfg config.Config, logger *slog.Logger) (ports.Summarizer, error) {
	switch cfg.Summarizer.Provider {
	case summarizer.AzureProvider:
		return summarizer.NewAzureClient(summarizer.AzureConfig{
			Endpoint:     cfg.Azure.Endpoint,
			APIKey:       cfg.Azure.APIKey,
			APIVersion:   cfg.Azure.APIVersion,
			Language:     cfg.Azure.Language,
			PollInterval: cfg.Azure.PollInterval,
		}, nil, logger.With("component", "summarizer.azure")), nil
	case summarizer.CohereProvider:
		return summarizer.NewCohereClient(summarizer.CohereConfig{
			APIKey: cfg.Cohere.APIKey,
			Model:  cfg.Cohere.Model,
		}, nil), nil
	case summarizer.ChatGPTProvider:
		return summarizer.NewChatGPTClient(cfg.ChatGPT, nil), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Summarizer.Provider)
	}
}

// Close releases the store.
func (a *Application) Close() error {
	return a.repo.Close()
}

// Setup applies pending migrations. With clear set, every table is dropped first.
func (a *Application) Setup(ctx context.Context, clear bool) error {
	if clear {
		if err := a.repo.Reset(ctx); err != nil {
			return err
		}
		a.logger.Warn("store cleared", "path", a.cfg.Database.Path)
	}

	applied, err := a.repo.Migrate(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("store ready", "path", a.cfg.Database.Path, "applied", applied, "version", storage.SchemaVersion())
	return nil
}

// Fetch stores one batch of articles.
func (a *Application) Fetch(ctx context.Context) error {
	_, err := a.pipeline.FetchBatch(ctx)
	return err
}

// Search looks up discussions for one batch of articles.
func (a *Application) Search(ctx context.Context) error {
	_, err := a.pipeline.SearchBatch(ctx)
	return err
}

// Summarize summarizes one batch of searched articles.
func (a *Application) Summarize(ctx context.Context) error {
	_, err := a.pipeline.SummarizeBatch(ctx)
	return err
}

// Export rewrites the CSV export.
func (a *Application) Export(ctx context.Context) error {
	_, err := a.pipeline.ExportFile(ctx, a.cfg.Export.Path)
	return err
}

// Plot renders the named chart, or every chart for "all", from the CSV export.
func (a *Application) Plot(name string) error {
	kinds := visualize.Kinds()
	if name != "all" {
		kind, err := visualize.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = []visualize.Kind{kind}
	}

	for _, kind := range kinds {
		if _, err := a.plotter.Plot(a.cfg.Export.Path, kind); err != nil {
			return err
		}
	}
	return nil
}

// Run migrates the store and executes the full pipeline once.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Setup(ctx, false); err != nil {
		return err
	}
	_, err := a.pipeline.Run(ctx, a.cfg.Export.Path)
	return err
}

// Schedule migrates the store and repeats Run on the configured cron schedule until ctx is cancelled.
// A failed run is logged and the next tick tries again.
func (a *Application) Schedule(ctx context.Context) error {
	if err := a.Setup(ctx, false); err != nil {
		return err
	}

	sched, err := scheduler.NewCronScheduler(a.cfg.Schedule.Cron, a.cfg.Schedule.RunOnStart, a.logger.With("component", "scheduler"))
	if err != nil {
		return err
	}

	runs := usecase.NewScheduler(sched, a.pipeline, a.cfg.Export.Path)
	if err := runs.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return runs.Stop(stopCtx)
}
