package usecase

import (
	"context"
	"fmt"
	"strings"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/textutil"
)

// descriptionTitleLimit bounds titles shown in progress lines.
const descriptionTitleLimit = 100

// SearchBatch finds discussion threads for the next unsearched articles.
// Every processed article is marked searched, with or without threads.
// An external error stops the batch; rows already written stay.
func (p *Pipeline) SearchBatch(ctx context.Context) (int, error) {
	if p.discussions == nil || p.repository == nil || p.keywords == nil {
		return 0, fmt.Errorf("search: discussion source, keywords or repository is not configured")
	}

	task := p.progress.Start("Searching Reddit...")
	defer task.Done()

	articles, err := p.repository.ListUnsearched(ctx, p.settings.SearchBatch)
	if err != nil {
		return 0, fmt.Errorf("list unsearched: %w", err)
	}
	if len(articles) == 0 {
		p.logger.Info("no unsearched articles left")
		return 0, nil
	}

	for _, article := range articles {
		task.Describe(fmt.Sprintf("Searching for Reddit posts and opinions related to article %d: '%s'",
			article.ID, textutil.Truncate(article.Title, descriptionTitleLimit)))

		threads, err := p.searchArticle(ctx, article)
		if err != nil {
			return 0, fmt.Errorf("article %d: %w", article.ID, err)
		}
		if err := p.repository.MarkSearched(ctx, article.ID); err != nil {
			return 0, fmt.Errorf("mark article %d searched: %w", article.ID, err)
		}
		p.logger.Debug("article searched", "article_id", article.ID, "threads", threads)
	}

	task.Describe(fmt.Sprintf("Searched Reddit for %d articles", len(articles)))
	return len(articles), nil
}

func (p *Pipeline) searchArticle(ctx context.Context, article domain.Article) (int, error) {
	query := p.searchQuery(article.Title)
	if query == "" {
		return 0, nil
	}

	submissions, err := p.discussions.Search(ctx, query, p.settings.ThreadLimit)
	if err != nil {
		return 0, fmt.Errorf("search %q: %w", query, err)
	}
	if limit := p.settings.ThreadLimit; limit > 0 && len(submissions) > limit {
		submissions = submissions[:limit]
	}

	for _, sub := range submissions {
		comments, err := p.discussions.TopComments(ctx, sub.ID, p.settings.CommentLimit)
		if err != nil {
			return 0, fmt.Errorf("comments of %s: %w", sub.ID, err)
		}

		thread := domain.Thread{
			ArticleID: article.ID,
			Title:     sub.Title,
			URL:       sub.URL,
			Comments:  domain.PadComments(comments),
		}
		if err := p.repository.SaveThread(ctx, thread); err != nil {
			return 0, fmt.Errorf("save thread %s: %w", sub.ID, err)
		}
	}
	return len(submissions), nil
}

// searchQuery joins the title's keywords with spaces, falling back to the whole title when none are found.
func (p *Pipeline) searchQuery(title string) string {
	if keywords := p.keywords.Keywords(title); len(keywords) > 0 {
		return strings.Join(keywords, " ")
	}
	return textutil.CollapseSpaces(title)
}
