package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/core"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/textutil"
)

const (
	CohereProvider = "cohere"

	// cohereMinText is the shortest input the summarize endpoint accepts.
	cohereMinText = 250
)

// CohereConfig wires the Cohere summarize client.
type CohereConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// CohereClient summarizes documents through the Cohere summarize endpoint.
type CohereClient struct {
	client *cohereclient.Client
	model  string
	ready  bool
}

var _ ports.Summarizer = (*CohereClient)(nil)

// NewCohereClient builds the SDK client; a nil http client gets a 60s timeout.
func NewCohereClient(cfg CohereConfig, httpClient *http.Client) *CohereClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	opts := []core.RequestOption{
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(cfg.BaseURL))
	}
	return &CohereClient{
		client: cohereclient.NewClient(opts...),
		model:  cfg.Model,
		ready:  cfg.APIKey != "",
	}
}

// Summarize sends one request per document with high extractiveness and short length.
// Inputs below the endpoint minimum are returned as their leading sentences.
func (c *CohereClient) Summarize(ctx context.Context, docs []ports.SummaryRequest, maxSentences int) ([]ports.SummaryResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if !c.ready {
		return nil, fmt.Errorf("cohere: %w", domain.ErrNotConfigured)
	}
	if maxSentences <= 0 {
		maxSentences = 1
	}

	out := make([]ports.SummaryResult, 0, len(docs))
	for _, doc := range docs {
		if len([]rune(doc.Text)) < cohereMinText {
			out = append(out, ports.SummaryResult{ID: doc.ID, Sentences: leading(textutil.Sentences(doc.Text), maxSentences)})
			continue
		}

		req := &cohere.SummarizeRequest{
			Text:           doc.Text,
			Length:         cohere.SummarizeRequestLengthShort.Ptr(),
			Format:         cohere.SummarizeRequestFormatParagraph.Ptr(),
			Extractiveness: cohere.SummarizeRequestExtractivenessHigh.Ptr(),
		}
		if c.model != "" {
			model := c.model
			req.Model = &model
		}

		resp, err := c.client.Summarize(ctx, req)
		if err != nil {
			var apiErr *core.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
				out = append(out, ports.SummaryResult{
					ID:  doc.ID,
					Err: &domain.DocumentError{Code: "InvalidDocument", Message: apiErr.Error()},
				})
				continue
			}
			return nil, fmt.Errorf("cohere summarize %s: %w", doc.ID, err)
		}

		var summary string
		if resp != nil && resp.Summary != nil {
			summary = *resp.Summary
		}
		out = append(out, ports.SummaryResult{ID: doc.ID, Sentences: leading(textutil.Sentences(summary), maxSentences)})
	}
	return out, nil
}

func leading(sentences []string, n int) []string {
	if len(sentences) > n {
		return sentences[:n]
	}
	return sentences
}
