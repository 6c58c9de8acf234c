package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNounExtractorKeywords(t *testing.T) {
	t.Parallel()

	keywords := NounExtractor{}.Keywords("The Senate passes a budget for schools")
	assert.Contains(t, keywords, "Senate")
	assert.Contains(t, keywords, "budget")
	assert.NotContains(t, keywords, "The")
	assert.NotContains(t, keywords, "passes")
}

func TestNounExtractorEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NounExtractor{}.Keywords("   "))
}
