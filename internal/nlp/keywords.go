package nlp

import (
	"github.com/jdkato/prose/v2"

	"DiscussionScanner/internal/ports"
	"DiscussionScanner/internal/textutil"
)

var nounTags = map[string]struct{}{
	"NN":   {},
	"NNS":  {},
	"NNP":  {},
	"NNPS": {},
}

// NounExtractor keeps the common and proper nouns of a headline.
type NounExtractor struct{}

var _ ports.KeywordExtractor = NounExtractor{}

// Keywords returns the noun tokens of text in order.
func (NounExtractor) Keywords(text string) []string {
	text = textutil.CollapseSpaces(text)
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil
	}

	var keywords []string
	for _, tok := range doc.Tokens() {
		if _, ok := nounTags[tok.Tag]; ok && hasLetter(tok.Text) {
			keywords = append(keywords, tok.Text)
		}
	}
	return keywords
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}
