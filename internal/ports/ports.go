package ports

import (
	"context"
	"io"
	"time"

	"DiscussionScanner/internal/domain"
)

// ArticleSource pulls a bounded batch of articles from the configured news provider.
// existing is the number of articles already stored.
type ArticleSource interface {
	FetchBatch(ctx context.Context, limit, existing int) ([]domain.ArticleDraft, error)
}

// ArticleRepository persists articles, discussion threads, and summaries.
type ArticleRepository interface {
	CountArticles(ctx context.Context) (int, error)
	InsertArticles(ctx context.Context, drafts []domain.ArticleDraft) ([]domain.Article, error)
	ListUnsearched(ctx context.Context, limit int) ([]domain.Article, error)
	SaveThread(ctx context.Context, thread domain.Thread) error
	MarkSearched(ctx context.Context, articleID int64) error
	ListUnsummarized(ctx context.Context, limit int) ([]domain.Article, error)
	ThreadsForArticle(ctx context.Context, articleID int64) ([]domain.Thread, error)
	SaveSummary(ctx context.Context, articleID int64, summary string) error
	ListWithSummaries(ctx context.Context) ([]domain.ArticleSummary, error)
}

// DiscussionSource searches a discussion site and reads thread comments.
type DiscussionSource interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Submission, error)
	TopComments(ctx context.Context, submissionID string, limit int) ([]string, error)
}

// KeywordExtractor picks search keywords out of a headline.
type KeywordExtractor interface {
	Keywords(text string) []string
}

// SentimentScorer maps text to a polarity score in [-1, 1].
type SentimentScorer interface {
	Polarity(text string) float64
}

// SummaryRequest is a single document sent to a summarization provider.
type SummaryRequest struct {
	ID   string
	Text string
}

// SummaryResult carries either the extracted sentences or a per-document error.
type SummaryResult struct {
	ID        string
	Sentences []string
	Err       *domain.DocumentError
}

// Summarizer produces extractive summaries for a batch of documents.
type Summarizer interface {
	Summarize(ctx context.Context, docs []SummaryRequest, maxSentences int) ([]SummaryResult, error)
}

// Notifier streams export reports to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// ObjectUploader stores exported files in remote object storage.
type ObjectUploader interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Progress starts operator-facing progress indicators.
type Progress interface {
	Start(desc string) Task
}

// Task is a running progress indicator.
type Task interface {
	Describe(desc string)
	Done()
}

// Scheduler triggers a job on a recurring schedule.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context, time.Time)) error
	Stop(ctx context.Context) error
}
