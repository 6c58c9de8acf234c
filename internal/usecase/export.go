package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/export"
	"DiscussionScanner/internal/visualize"
)

// BuildRows joins every article with its summary and comment sentiment, assigning year bands by position.
func (p *Pipeline) BuildRows(ctx context.Context) ([]domain.ExportRow, error) {
	if p.repository == nil || p.scorer == nil {
		return nil, fmt.Errorf("export: repository or scorer is not configured")
	}

	task := p.progress.Start("Parsing tables...")
	defer task.Done()

	articles, err := p.repository.ListWithSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(articles))
	for i, item := range articles {
		task.Describe(fmt.Sprintf("Preparing export data for article %d...", item.Article.ID))

		threads, err := p.repository.ThreadsForArticle(ctx, item.Article.ID)
		if err != nil {
			return nil, fmt.Errorf("threads of article %d: %w", item.Article.ID, err)
		}

		scores := make([]float64, 0, len(threads)*domain.CommentSlots)
		for _, thread := range threads {
			for _, comment := range thread.NonEmptyComments() {
				scores = append(scores, p.scorer.Polarity(comment))
			}
		}

		rows = append(rows, domain.ExportRow{
			ArticleID:  item.Article.ID,
			Title:      item.Article.Title,
			Year:       domain.YearBand(i, p.settings.BaseYear, p.settings.BandSize),
			Sentiments: scores,
			URL:        item.Article.URL,
			Summary:    item.Summary,
		})
	}
	return rows, nil
}

// Export writes the CSV for every stored article to w.
func (p *Pipeline) Export(ctx context.Context, w io.Writer) ([]domain.ExportRow, error) {
	rows, err := p.BuildRows(ctx)
	if err != nil {
		return nil, err
	}
	if err := export.WriteCSV(w, rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return rows, nil
}

// ExportFile rewrites the CSV at path, then uploads it and posts a report when those adapters are wired.
// A failed report is logged; a failed upload is returned.
func (p *Pipeline) ExportFile(ctx context.Context, path string) ([]domain.ExportRow, error) {
	var buf bytes.Buffer
	rows, err := p.Export(ctx, &buf)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	p.logger.Info("export written", "path", path, "articles", len(rows))

	if p.uploader != nil {
		key := p.settings.ExportKey
		if key == "" {
			key = filepath.Base(path)
		}
		if err := p.uploader.Put(ctx, key, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
			return rows, fmt.Errorf("upload export: %w", err)
		}
		p.logger.Info("export uploaded", "key", key)
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, BuildReport(rows)); err != nil {
			p.logger.Warn("export report not sent", "err", err)
		}
	}

	return rows, nil
}

// BuildReport renders a short plain-text digest of an export.
func BuildReport(rows []domain.ExportRow) string {
	var b strings.Builder

	scored := 0
	summarized := 0
	for _, row := range rows {
		if len(row.Sentiments) > 0 {
			scored++
		}
		if row.Summary != "" {
			summarized++
		}
	}
	fmt.Fprintf(&b, "Export finished: %d articles, %d with comments, %d summarized\n", len(rows), scored, summarized)

	picks := visualize.MostControversial(rows)
	if len(picks) > 0 {
		b.WriteString("\nMost controversial per year:\n")
	}
	for _, pick := range picks {
		fmt.Fprintf(&b, "- %d: %s (spread %.2f)\n  %s\n", pick.Year, pick.Title, pick.Spread, pick.URL)
	}
	return b.String()
}
