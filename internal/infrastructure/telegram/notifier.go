package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// maxMessage is the Telegram limit for one text message.
const maxMessage = 4096

// Notifier sends export reports to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   defaultAPIURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIURL points the notifier at another Bot API host.
func (n *Notifier) WithAPIURL(apiURL string, client *http.Client) *Notifier {
	n.apiURL = strings.TrimSuffix(apiURL, "/")
	if client != nil {
		n.client = client
	}
	return n
}

// Configured reports whether both token and chat are set.
func (n *Notifier) Configured() bool {
	return n != nil && n.botToken != "" && n.chatID != ""
}

// PublishDigest posts a plain-text message, cut to the Telegram size limit.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if !n.Configured() || n.client == nil {
		return fmt.Errorf("telegram notifier: %w", domain.ErrNotConfigured)
	}

	if runes := []rune(digest); len(runes) > maxMessage {
		digest = string(runes[:maxMessage])
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", digest)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.StatusError{
			Service: "telegram",
			Code:    resp.StatusCode,
			Status:  resp.Status,
			Body:    strings.TrimSpace(string(body)),
		}
	}

	return nil
}
