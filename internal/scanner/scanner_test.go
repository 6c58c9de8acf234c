package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DiscussionScanner/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.ArticleDraft, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner("rss"))
	reg.Register(namedScanner("nyt-archive"))

	got, err := reg.Resolve("rss")
	require.NoError(t, err)
	assert.Equal(t, "rss", got.Name())
	assert.Equal(t, []string{"nyt-archive", "rss"}, reg.Names())

	_, err = reg.Resolve("atom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nyt-archive")
}
