package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DiscussionScanner/internal/domain"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotText, gotChat, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, r.ParseForm())
		gotText = r.PostForm.Get("text")
		gotChat = r.PostForm.Get("chat_id")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier("123:abc", "42").WithAPIURL(srv.URL, srv.Client())
	require.NoError(t, n.PublishDigest(context.Background(), "Export finished: 3 articles"))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "Export finished: 3 articles", gotText)
}

func TestPublishDigestTruncates(t *testing.T) {
	t.Parallel()

	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		gotLen = len([]rune(r.PostForm.Get("text")))
	}))
	t.Cleanup(srv.Close)

	n := NewNotifier("t", "c").WithAPIURL(srv.URL, srv.Client())
	require.NoError(t, n.PublishDigest(context.Background(), strings.Repeat("é", maxMessage+10)))
	assert.Equal(t, maxMessage, gotLen)
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	err := NewNotifier("", "").PublishDigest(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	err = NewNotifier("t", "c").WithAPIURL(srv.URL, srv.Client()).PublishDigest(context.Background(), "x")
	var statusErr *domain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
}
