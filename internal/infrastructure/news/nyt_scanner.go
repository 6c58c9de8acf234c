package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/scanner"
	"DiscussionScanner/internal/textutil"
)

const (
	ArchiveScannerName    = "nyt-archive"
	TopStoriesScannerName = "nyt-topstories"
)

// ArchiveWindow picks the archive year from the number of stored articles.
type ArchiveWindow struct {
	StartYear int
	LastYear  int
	BandSize  int
}

// Year returns StartYear for the first BandSize stored rows, the next year for the next band, capped at LastYear.
func (w ArchiveWindow) Year(existing int) int {
	band := w.BandSize
	if band <= 0 {
		band = 25
	}
	if existing < 0 {
		existing = 0
	}
	year := w.StartYear + existing/band
	if w.LastYear >= w.StartYear && year > w.LastYear {
		year = w.LastYear
	}
	return year
}

// ArchiveScanner reads the January archive of the year selected by ArchiveWindow.
type ArchiveScanner struct {
	client  *http.Client
	baseURL string
	apiKey  string
	window  ArchiveWindow
	logger  *slog.Logger
}

// NewArchiveScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewArchiveScanner(client *http.Client, baseURL, apiKey string, window ArchiveWindow, logger *slog.Logger) *ArchiveScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArchiveScanner{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		window:  window,
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (a *ArchiveScanner) Name() string {
	return ArchiveScannerName
}

type archiveResponse struct {
	Response struct {
		Docs []struct {
			Abstract string `json:"abstract"`
			WebURL   string `json:"web_url"`
			Headline struct {
				Main string `json:"main"`
			} `json:"headline"`
		} `json:"docs"`
	} `json:"response"`
}

// Scan returns the first req.Limit archive records of the selected year.
func (a *ArchiveScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleDraft, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("nyt api key: %w", domain.ErrNotConfigured)
	}

	year := a.window.Year(req.Existing)
	pageURL, err := buildAPIURL(fmt.Sprintf("%s/%d/1.json", a.baseURL, year), a.apiKey)
	if err != nil {
		return nil, err
	}
	if a.logger != nil {
		a.logger.Debug("fetch nyt archive", "year", year, "existing", req.Existing, "limit", req.Limit)
	}

	var payload archiveResponse
	if err := getJSON(ctx, a.client, "nyt archive", pageURL, &payload); err != nil {
		return nil, err
	}

	drafts := make([]domain.ArticleDraft, 0, req.Limit)
	for _, doc := range payload.Response.Docs {
		if len(drafts) >= req.Limit {
			break
		}
		title := textutil.PlainText(doc.Abstract)
		if title == "" {
			title = textutil.PlainText(doc.Headline.Main)
		}
		drafts = append(drafts, domain.ArticleDraft{Title: title, URL: doc.WebURL})
	}

	return drafts, nil
}

// TopStoriesScanner reads the current home-page top stories.
type TopStoriesScanner struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewTopStoriesScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewTopStoriesScanner(client *http.Client, endpoint, apiKey string) *TopStoriesScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &TopStoriesScanner{client: client, endpoint: endpoint, apiKey: apiKey}
}

// Name identifies the strategy inside the registry.
func (t *TopStoriesScanner) Name() string {
	return TopStoriesScannerName
}

type topStoriesResponse struct {
	Results []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"results"`
}

// Scan returns up to req.Limit top stories.
func (t *TopStoriesScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleDraft, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("nyt api key: %w", domain.ErrNotConfigured)
	}

	pageURL, err := buildAPIURL(t.endpoint, t.apiKey)
	if err != nil {
		return nil, err
	}

	var payload topStoriesResponse
	if err := getJSON(ctx, t.client, "nyt top stories", pageURL, &payload); err != nil {
		return nil, err
	}

	drafts := make([]domain.ArticleDraft, 0, req.Limit)
	for _, story := range payload.Results {
		if len(drafts) >= req.Limit {
			break
		}
		if story.Title == "" {
			continue
		}
		drafts = append(drafts, domain.ArticleDraft{Title: textutil.PlainText(story.Title), URL: story.URL})
	}

	return drafts, nil
}

func buildAPIURL(base, apiKey string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid news url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("api-key", apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func getJSON(ctx context.Context, client *http.Client, service, pageURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "DiscussionScanner/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.StatusError{
			Service: service,
			Code:    resp.StatusCode,
			Status:  resp.Status,
			Body:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}
