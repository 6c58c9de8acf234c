package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
)

const (
	AzureProvider = "azure"

	azureService   = "azure language"
	azureKeyHeader = "Ocp-Apim-Subscription-Key"
)

// AzureConfig points at an Azure AI Language resource.
type AzureConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	Language     string
	PollInterval time.Duration
}

// AzureClient runs extractive summarization jobs against Azure AI Language.
type AzureClient struct {
	cfg    AzureConfig
	http   *http.Client
	logger *slog.Logger
}

var _ ports.Summarizer = (*AzureClient)(nil)

// NewAzureClient creates a reusable HTTP client.
func NewAzureClient(cfg AzureConfig, client *http.Client, logger *slog.Logger) *AzureClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-04-01"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &AzureClient{cfg: cfg, http: client, logger: logger}
}

type azureDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type azureTask struct {
	Kind       string         `json:"kind"`
	TaskName   string         `json:"taskName"`
	Parameters map[string]any `json:"parameters"`
}

type azureJobRequest struct {
	DisplayName   string `json:"displayName"`
	AnalysisInput struct {
		Documents []azureDocument `json:"documents"`
	} `json:"analysisInput"`
	Tasks []azureTask `json:"tasks"`
}

type azureJobState struct {
	Status string `json:"status"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Tasks struct {
		Items []struct {
			Status  string `json:"status"`
			Results struct {
				Documents []struct {
					ID        string `json:"id"`
					Sentences []struct {
						Text string `json:"text"`
					} `json:"sentences"`
				} `json:"documents"`
				Errors []struct {
					ID    string `json:"id"`
					Error struct {
						Code    string `json:"code"`
						Message string `json:"message"`
					} `json:"error"`
				} `json:"errors"`
			} `json:"results"`
		} `json:"items"`
	} `json:"tasks"`
}

// Summarize submits one analyze-text job for all docs and polls it until it finishes.
// Results come back in request order; documents the service rejected carry Err.
func (c *AzureClient) Summarize(ctx context.Context, docs []ports.SummaryRequest, maxSentences int) ([]ports.SummaryResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return nil, fmt.Errorf("azure language: %w", domain.ErrNotConfigured)
	}
	if maxSentences <= 0 {
		maxSentences = 1
	}

	payload := azureJobRequest{DisplayName: "Extractive summarization of discussions"}
	for _, doc := range docs {
		payload.AnalysisInput.Documents = append(payload.AnalysisInput.Documents, azureDocument{
			ID:       doc.ID,
			Language: c.cfg.Language,
			Text:     doc.Text,
		})
	}
	payload.Tasks = []azureTask{{
		Kind:       "ExtractiveSummarization",
		TaskName:   "discussion summary",
		Parameters: map[string]any{"sentenceCount": maxSentences},
	}}

	operation, err := c.submit(ctx, payload)
	if err != nil {
		return nil, err
	}
	c.debug("azure job submitted", "documents", len(docs), "operation", operation)

	state, err := c.wait(ctx, operation)
	if err != nil {
		return nil, err
	}

	return collectAzureResults(docs, state)
}

func (c *AzureClient) submit(ctx context.Context, payload azureJobRequest) (string, error) {
	endpoint := fmt.Sprintf("%s/language/analyze-text/jobs?api-version=%s", c.cfg.Endpoint, c.cfg.APIVersion)
	resp, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", azureStatusError(resp)
	}

	operation := resp.Header.Get("Operation-Location")
	if operation == "" {
		return "", fmt.Errorf("azure language: response has no Operation-Location header")
	}
	return operation, nil
}

func (c *AzureClient) wait(ctx context.Context, operation string) (azureJobState, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		state, err := c.poll(ctx, operation)
		if err != nil {
			return azureJobState{}, err
		}

		switch state.Status {
		case "succeeded", "partiallyCompleted", "partiallySucceeded":
			return state, nil
		case "failed", "cancelled":
			if len(state.Errors) > 0 {
				return azureJobState{}, fmt.Errorf("azure job %s: %s - %s", state.Status, state.Errors[0].Code, state.Errors[0].Message)
			}
			return azureJobState{}, fmt.Errorf("azure job %s", state.Status)
		}

		c.debug("azure job pending", "status", state.Status)
		select {
		case <-ctx.Done():
			return azureJobState{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *AzureClient) poll(ctx context.Context, operation string) (azureJobState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operation, nil)
	if err != nil {
		return azureJobState{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(azureKeyHeader, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return azureJobState{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return azureJobState{}, azureStatusError(resp)
	}

	var state azureJobState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return azureJobState{}, fmt.Errorf("decode response: %w", err)
	}
	return state, nil
}

func (c *AzureClient) post(ctx context.Context, endpoint string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(azureKeyHeader, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func collectAzureResults(docs []ports.SummaryRequest, state azureJobState) ([]ports.SummaryResult, error) {
	if len(state.Tasks.Items) == 0 {
		return nil, fmt.Errorf("azure job returned no task results")
	}
	results := state.Tasks.Items[0].Results

	byID := make(map[string]ports.SummaryResult, len(docs))
	for _, doc := range results.Documents {
		sentences := make([]string, 0, len(doc.Sentences))
		for _, s := range doc.Sentences {
			sentences = append(sentences, s.Text)
		}
		byID[doc.ID] = ports.SummaryResult{ID: doc.ID, Sentences: sentences}
	}
	for _, e := range results.Errors {
		byID[e.ID] = ports.SummaryResult{
			ID:  e.ID,
			Err: &domain.DocumentError{Code: e.Error.Code, Message: e.Error.Message},
		}
	}

	out := make([]ports.SummaryResult, 0, len(docs))
	for _, doc := range docs {
		res, ok := byID[doc.ID]
		if !ok {
			res = ports.SummaryResult{
				ID:  doc.ID,
				Err: &domain.DocumentError{Code: "MissingResult", Message: "document absent from job results"},
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func azureStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &domain.StatusError{
		Service: azureService,
		Code:    resp.StatusCode,
		Status:  resp.Status,
		Body:    strings.TrimSpace(string(body)),
	}
}

func (c *AzureClient) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
