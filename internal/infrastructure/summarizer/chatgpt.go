package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"DiscussionScanner/internal/config"
	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/textutil"
)

const ChatGPTProvider = "chatgpt"

// ChatGPTClient implements ports.Summarizer backed by OpenAI-compatible chat completions.
type ChatGPTClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Summarizer = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration.
func NewChatGPTClient(cfg config.ChatGPTConfig, client *http.Client) *ChatGPTClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ChatGPTClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient:   client,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize asks for one completion per document and keeps its first maxSentences sentences. A transport or status failure aborts the batch.
func (c *ChatGPTClient) Summarize(ctx context.Context, docs []ports.SummaryRequest, maxSentences int) ([]ports.SummaryResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("chatgpt client: %w", domain.ErrNotConfigured)
	}
	if maxSentences <= 0 {
		maxSentences = 1
	}

	out := make([]ports.SummaryResult, 0, len(docs))
	for _, doc := range docs {
		content, err := c.complete(ctx, doc.Text, maxSentences)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", doc.ID, err)
		}
		if content == "" {
			out = append(out, ports.SummaryResult{
				ID:  doc.ID,
				Err: &domain.DocumentError{Code: "EmptyCompletion", Message: "model returned no content"},
			})
			continue
		}
		out = append(out, ports.SummaryResult{ID: doc.ID, Sentences: leading(textutil.Sentences(content), maxSentences)})
	}
	return out, nil
}

func (c *ChatGPTClient) complete(ctx context.Context, text string, maxSentences int) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt, maxSentences)},
			{"role": "user", "content": text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chatgpt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &domain.StatusError{
			Service: "chatgpt",
			Code:    resp.StatusCode,
			Status:  resp.Status,
			Body:    strings.TrimSpace(string(payload)),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func safePrompt(prompt string, maxSentences int) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Sprintf("Summarize the discussion in at most %d sentence(s) copied from the text.", maxSentences)
	}
	return prompt
}
