package usecase

import (
	"context"
	"fmt"
)

// FetchBatch pulls one batch from the article source and stores it.
// A failed source call writes nothing.
func (p *Pipeline) FetchBatch(ctx context.Context) (int, error) {
	if p.source == nil || p.repository == nil {
		return 0, fmt.Errorf("fetch: source or repository is not configured")
	}

	task := p.progress.Start("Fetching news articles...")
	defer task.Done()

	existing, err := p.repository.CountArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	drafts, err := p.source.FetchBatch(ctx, p.settings.FetchBatch, existing)
	if err != nil {
		return 0, fmt.Errorf("fetch batch: %w", err)
	}

	task.Describe(fmt.Sprintf("Storing %d news articles...", len(drafts)))
	inserted, err := p.repository.InsertArticles(ctx, drafts)
	if err != nil {
		return 0, fmt.Errorf("store articles: %w", err)
	}

	if skipped := len(drafts) - len(inserted); skipped > 0 {
		p.logger.Info("skipped duplicate articles", "count", skipped)
	}
	if len(inserted) > 0 {
		p.logger.Info("articles stored",
			"count", len(inserted),
			"first_id", inserted[0].ID,
			"last_id", inserted[len(inserted)-1].ID,
		)
	}
	task.Describe(fmt.Sprintf("Fetched %d news articles", len(inserted)))
	return len(inserted), nil
}
