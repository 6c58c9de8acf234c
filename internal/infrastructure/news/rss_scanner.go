package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/scanner"
	"DiscussionScanner/internal/textutil"
)

const RSSScannerName = "rss"

// RSSScanner reads article drafts from an RSS or Atom feed.
type RSSScanner struct {
	parser  *gofeed.Parser
	feedURL string
}

// NewRSSScanner builds a feed scanner; a nil client gets a 20s timeout.
func NewRSSScanner(client *http.Client, feedURL string) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "DiscussionScanner/1.0"
	return &RSSScanner{parser: parser, feedURL: feedURL}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return RSSScannerName
}

// Scan returns up to req.Limit feed items in feed order.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleDraft, error) {
	if r.feedURL == "" {
		return nil, fmt.Errorf("feed url: %w", domain.ErrNotConfigured)
	}

	feed, err := r.parser.ParseURLWithContext(r.feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &domain.StatusError{
				Service: "rss feed",
				Code:    httpErr.StatusCode,
				Status:  httpErr.Status,
			}
		}
		return nil, fmt.Errorf("parse feed %s: %w", r.feedURL, err)
	}

	drafts := make([]domain.ArticleDraft, 0, req.Limit)
	for _, item := range feed.Items {
		if len(drafts) >= req.Limit {
			break
		}
		title := textutil.PlainText(item.Title)
		if title == "" {
			title = textutil.PlainText(item.Description)
		}
		if title == "" {
			continue
		}
		drafts = append(drafts, domain.ArticleDraft{Title: title, URL: item.Link})
	}

	return drafts, nil
}
