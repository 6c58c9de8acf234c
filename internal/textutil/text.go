package textutil

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// CollapseSpaces trims text and replaces every whitespace run with a single space.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// PlainText strips markup and entities from an HTML fragment and collapses whitespace.
// Input that cannot be parsed is returned collapsed but otherwise untouched.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return CollapseSpaces(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CollapseSpaces(fragment)
	}

	return CollapseSpaces(doc.Text())
}

// Truncate shortens text to maxLen runes, ending with "..." when it was cut.
func Truncate(text string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// ContainsAny reports whether the lower-cased text contains any of the keywords.
// Keywords are expected in lower case.
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Sentences splits text after '.', '!' or '?' followed by whitespace.
func Sentences(text string) []string {
	text = CollapseSpaces(text)
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || runes[i+1] == ' ') {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}
