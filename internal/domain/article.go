package domain

import "time"

// CommentSlots is the fixed number of comment columns stored per thread.
const CommentSlots = 5

// ArticleDraft is a news item returned by a source before it gets a local identifier.
type ArticleDraft struct {
	Title string
	URL   string
}

// Article is a stored news item together with its pipeline flags.
type Article struct {
	ID           int64
	Title        string
	URL          string
	IsSearched   bool
	IsSummarized bool
	CreatedAt    time.Time
}

// Submission is a discussion thread found for a keyword query.
type Submission struct {
	ID    string
	Title string
	URL   string
}

// Thread is a stored discussion thread linked to an article.
type Thread struct {
	ID        int64
	ArticleID int64
	Title     string
	URL       string
	Comments  [CommentSlots]string
}

// PadComments keeps the first CommentSlots comments in order and leaves the rest empty.
func PadComments(comments []string) [CommentSlots]string {
	var slots [CommentSlots]string
	copy(slots[:], comments)
	return slots
}

// NonEmptyComments returns the filled slots in slot order.
func (t Thread) NonEmptyComments() []string {
	out := make([]string, 0, CommentSlots)
	for _, c := range t.Comments {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ArticleSummary pairs an article with its stored summary, if any.
type ArticleSummary struct {
	Article Article
	Summary string
}
