package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
)

type memRepo struct {
	articles  []domain.Article
	threads   []domain.Thread
	summaries map[int64]string
}

func newMemRepo() *memRepo {
	return &memRepo{summaries: map[int64]string{}}
}

func (r *memRepo) CountArticles(context.Context) (int, error) { return len(r.articles), nil }

func (r *memRepo) InsertArticles(_ context.Context, drafts []domain.ArticleDraft) ([]domain.Article, error) {
	var maxID int64
	seen := map[string]bool{}
	for _, a := range r.articles {
		if a.ID > maxID {
			maxID = a.ID
		}
		seen[a.URL] = true
	}
	var out []domain.Article
	for _, d := range drafts {
		if d.URL != "" && seen[d.URL] {
			continue
		}
		seen[d.URL] = true
		maxID++
		a := domain.Article{ID: maxID, Title: d.Title, URL: d.URL}
		r.articles = append(r.articles, a)
		out = append(out, a)
	}
	return out, nil
}

func (r *memRepo) list(limit int, keep func(domain.Article) bool) []domain.Article {
	var out []domain.Article
	for _, a := range r.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memRepo) ListUnsearched(_ context.Context, limit int) ([]domain.Article, error) {
	return r.list(limit, func(a domain.Article) bool { return !a.IsSearched }), nil
}

func (r *memRepo) ListUnsummarized(_ context.Context, limit int) ([]domain.Article, error) {
	return r.list(limit, func(a domain.Article) bool { return a.IsSearched && !a.IsSummarized }), nil
}

func (r *memRepo) SaveThread(_ context.Context, t domain.Thread) error {
	t.ID = int64(len(r.threads) + 1)
	r.threads = append(r.threads, t)
	return nil
}

func (r *memRepo) MarkSearched(_ context.Context, id int64) error {
	for i := range r.articles {
		if r.articles[i].ID == id {
			r.articles[i].IsSearched = true
		}
	}
	return nil
}

func (r *memRepo) ThreadsForArticle(_ context.Context, id int64) ([]domain.Thread, error) {
	var out []domain.Thread
	for _, t := range r.threads {
		if t.ArticleID == id {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memRepo) SaveSummary(_ context.Context, id int64, summary string) error {
	r.summaries[id] = summary
	for i := range r.articles {
		if r.articles[i].ID == id {
			r.articles[i].IsSummarized = true
		}
	}
	return nil
}

func (r *memRepo) ListWithSummaries(context.Context) ([]domain.ArticleSummary, error) {
	out := make([]domain.ArticleSummary, 0, len(r.articles))
	for _, a := range r.list(0, func(domain.Article) bool { return true }) {
		out = append(out, domain.ArticleSummary{Article: a, Summary: r.summaries[a.ID]})
	}
	return out, nil
}

type stubSource struct {
	drafts   []domain.ArticleDraft
	err      error
	existing int
	limit    int
}

func (s *stubSource) FetchBatch(_ context.Context, limit, existing int) ([]domain.ArticleDraft, error) {
	s.limit, s.existing = limit, existing
	if s.err != nil {
		return nil, s.err
	}
	if len(s.drafts) > limit {
		return s.drafts[:limit], nil
	}
	return s.drafts, nil
}

type stubDiscussions struct {
	results  map[string][]domain.Submission
	comments map[string][]string
	err      error
	queries  []string

	// unbounded returns every result regardless of the requested limit.
	unbounded bool
}

func (s *stubDiscussions) Search(_ context.Context, query string, limit int) ([]domain.Submission, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	subs := s.results[query]
	if !s.unbounded && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (s *stubDiscussions) TopComments(_ context.Context, id string, limit int) ([]string, error) {
	c := s.comments[id]
	if len(c) > limit {
		c = c[:limit]
	}
	return c, nil
}

// wordKeywords treats every capitalized word as a noun.
type wordKeywords struct{}

func (wordKeywords) Keywords(text string) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if w[0] >= 'A' && w[0] <= 'Z' {
			out = append(out, w)
		}
	}
	return out
}

// signScorer scores "good" as 1, "bad" as -1 and anything else as 0.
type signScorer struct{}

func (signScorer) Polarity(text string) float64 {
	switch text {
	case "good":
		return 1
	case "bad":
		return -1
	default:
		return 0
	}
}

type stubSummarizer struct {
	calls  int
	docs   []ports.SummaryRequest
	reject map[string]bool
	err    error
}

func (s *stubSummarizer) Summarize(_ context.Context, docs []ports.SummaryRequest, _ int) ([]ports.SummaryResult, error) {
	s.calls++
	s.docs = append(s.docs, docs...)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]ports.SummaryResult, 0, len(docs))
	for _, d := range docs {
		if s.reject[d.ID] {
			out = append(out, ports.SummaryResult{ID: d.ID, Err: &domain.DocumentError{Code: "InvalidDocument", Message: "empty"}})
			continue
		}
		out = append(out, ports.SummaryResult{ID: d.ID, Sentences: []string{"summary of " + d.ID + "."}})
	}
	return out, nil
}

type recordNotifier struct {
	digests []string
	err     error
}

func (n *recordNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return n.err
}

type recordUploader struct {
	key  string
	body string
	err  error
}

func (u *recordUploader) Put(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	u.key = key
	u.body = string(data)
	return u.err
}

var errUpstream = errors.New("upstream down")
