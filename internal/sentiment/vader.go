package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"

	"DiscussionScanner/internal/ports"
)

// VaderScorer scores comments with the VADER lexicon and rule set.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

var _ ports.SentimentScorer = (*VaderScorer)(nil)

// NewVaderScorer loads the bundled VADER lexicon.
func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score of text, clamped to [-1, 1].
// Blank text scores 0.
func (s *VaderScorer) Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return clamp(s.analyzer.PolarityScores(text).Compound)
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
