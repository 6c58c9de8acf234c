package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/textutil"
)

// SummarizeBatch summarizes the next searched but unsummarized articles in one provider call.
// Documents the provider rejects are logged and stay unsummarized.
func (p *Pipeline) SummarizeBatch(ctx context.Context) (int, error) {
	if p.summarizer == nil || p.repository == nil {
		return 0, fmt.Errorf("summarize: summarizer or repository is not configured")
	}

	task := p.progress.Start("Summarizing...")
	defer task.Done()

	articles, err := p.repository.ListUnsummarized(ctx, p.settings.SummaryBatch)
	if err != nil {
		return 0, fmt.Errorf("list unsummarized: %w", err)
	}
	if len(articles) == 0 {
		p.logger.Info("no unsummarized articles left")
		return 0, nil
	}

	docs := make([]ports.SummaryRequest, 0, len(articles))
	byID := make(map[string]domain.Article, len(articles))
	for _, article := range articles {
		task.Describe(fmt.Sprintf("Collecting discussion for article %d...", article.ID))
		threads, err := p.repository.ThreadsForArticle(ctx, article.ID)
		if err != nil {
			return 0, fmt.Errorf("threads of article %d: %w", article.ID, err)
		}

		id := strconv.FormatInt(article.ID, 10)
		byID[id] = article
		docs = append(docs, ports.SummaryRequest{ID: id, Text: p.discussionText(article, threads)})
	}

	task.Describe(fmt.Sprintf("Summarizing %d articles...", len(docs)))
	results, err := p.summarizer.Summarize(ctx, docs, p.settings.MaxSentences)
	if err != nil {
		return 0, fmt.Errorf("summarize batch: %w", err)
	}

	stored := 0
	for _, res := range results {
		article, ok := byID[res.ID]
		if !ok {
			p.logger.Warn("summary for unknown document", "document_id", res.ID)
			continue
		}
		if res.Err != nil {
			p.logger.Warn("summary failed", "article_id", article.ID, "err", res.Err.Error())
			continue
		}

		summary := strings.Join(res.Sentences, " ")
		if err := p.repository.SaveSummary(ctx, article.ID, summary); err != nil {
			return stored, fmt.Errorf("save summary of article %d: %w", article.ID, err)
		}
		stored++
	}

	task.Describe(fmt.Sprintf("Summarized %d of %d articles", stored, len(docs)))
	return stored, nil
}

// discussionText joins the article title, every thread title and the comments
// that mention one of the title's keywords. Without keywords every comment counts.
func (p *Pipeline) discussionText(article domain.Article, threads []domain.Thread) string {
	var keywords []string
	if p.keywords != nil {
		for _, kw := range p.keywords.Keywords(article.Title) {
			keywords = append(keywords, strings.ToLower(kw))
		}
	}

	parts := []string{article.Title}
	for _, thread := range threads {
		if thread.Title != "" {
			parts = append(parts, thread.Title)
		}
		for _, comment := range thread.NonEmptyComments() {
			if len(keywords) == 0 || textutil.ContainsAny(comment, keywords) {
				parts = append(parts, comment)
			}
		}
	}
	return textutil.CollapseSpaces(strings.Join(parts, " "))
}
