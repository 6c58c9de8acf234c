package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpaces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", CollapseSpaces("  a\n\nb\t c  "))
	assert.Equal(t, "", CollapseSpaces(" \n "))
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"plain   title":                          "plain title",
		"<p>Markets <b>rally</b> after vote</p>": "Markets rally after vote",
		"Q&amp;A with the mayor":                 "Q&A with the mayor",
		"Tom &amp; Jerry\n<br/> return":          "Tom & Jerry return",
	}

	for in, want := range cases {
		assert.Equal(t, want, PlainText(in), "input %q", in)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "abcdefghij", Truncate("abcdefghij", 3))
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsAny("The SENATE voted", []string{"senate"}))
	assert.False(t, ContainsAny("nothing here", []string{"senate", ""}))
	assert.False(t, ContainsAny("anything", nil))
}

func TestSentences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"One here.", "Two?", "Yes!", "tail"}, Sentences("One here.  Two? Yes! tail"))
	assert.Equal(t, []string{"v1.2 is out."}, Sentences("v1.2 is out."))
	assert.Empty(t, Sentences("  "))
}
