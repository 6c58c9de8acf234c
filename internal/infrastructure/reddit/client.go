package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/textutil"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"
	webURL         = "https://www.reddit.com"
)

// Config wires the app-only OAuth credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	AuthURL      string
	APIURL       string
	Subreddit    string
}

// Client searches Reddit with an application-only OAuth token.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

var _ ports.DiscussionSource = (*Client)(nil)

// NewClient creates a Reddit client; a nil http client gets a 20s timeout.
func NewClient(cfg Config, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if cfg.Subreddit == "" {
		cfg.Subreddit = "all"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "DiscussionScanner/1.0"
	}
	return &Client{cfg: cfg, client: client, logger: logger, now: time.Now}
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type linkData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
}

type commentData struct {
	Body string `json:"body"`
}

// Search returns up to limit submissions matching query in the configured subreddit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Submission, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/r/%s/search?%s", c.cfg.APIURL, url.PathEscape(c.cfg.Subreddit), params.Encode())

	var result listing
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	submissions := make([]domain.Submission, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		if child.Kind != "t3" || len(submissions) >= limit {
			continue
		}
		var link linkData
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		threadURL := link.URL
		if link.Permalink != "" {
			threadURL = webURL + link.Permalink
		}
		submissions = append(submissions, domain.Submission{ID: link.ID, Title: link.Title, URL: threadURL})
	}

	c.debug("reddit search", "query", query, "results", len(submissions))
	return submissions, nil
}

// TopComments returns the first limit top-level comments of a submission with whitespace collapsed.
// "more" placeholders are never expanded.
func (c *Client) TopComments(ctx context.Context, submissionID string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("depth", "1")
	params.Set("raw_json", "1")
	endpoint := fmt.Sprintf("%s/comments/%s?%s", c.cfg.APIURL, url.PathEscape(submissionID), params.Encode())

	var listings []listing
	if err := c.get(ctx, endpoint, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	comments := make([]string, 0, limit)
	for _, child := range listings[1].Data.Children {
		if len(comments) >= limit {
			break
		}
		if child.Kind != "t1" {
			continue
		}
		var comment commentData
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, textutil.CollapseSpaces(comment.Body))
	}
	return comments, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call reddit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			c.invalidate()
		}
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode reddit response: %w", err)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", fmt.Errorf("reddit credentials: %w", domain.ErrNotConfigured)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request reddit token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode reddit token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("reddit token response has no access_token")
	}

	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.token = tok.AccessToken
	// Refresh a minute early.
	c.expires = c.now().Add(ttl - time.Minute)
	c.debug("reddit token refreshed", "ttl", ttl)
	return c.token, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &domain.StatusError{
		Service: "reddit",
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Body:    strings.TrimSpace(string(body)),
	}
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
