package usecase

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/export"
	"DiscussionScanner/internal/visualize"
)

func seed(t *testing.T, repo *memRepo, titles ...string) {
	t.Helper()
	drafts := make([]domain.ArticleDraft, 0, len(titles))
	for _, title := range titles {
		drafts = append(drafts, domain.ArticleDraft{Title: title, URL: "https://news.test/" + strings.ReplaceAll(title, " ", "-")})
	}
	_, err := repo.InsertArticles(context.Background(), drafts)
	require.NoError(t, err)
}

func TestFetchBatchContinuesIdentifiers(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "one", "two", "three")
	source := &stubSource{drafts: []domain.ArticleDraft{
		{Title: "four", URL: "https://news.test/four"},
		{Title: "five", URL: "https://news.test/five"},
		{Title: "dup", URL: "https://news.test/one"},
	}}

	p := NewPipeline(PipelineDeps{Source: source, Repository: repo}, DefaultSettings())
	n, err := p.FetchBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 3, source.existing)
	assert.Equal(t, 25, source.limit)
	require.Len(t, repo.articles, 5)
	assert.Equal(t, int64(4), repo.articles[3].ID)
	assert.Equal(t, int64(5), repo.articles[4].ID)
}

func TestFetchBatchSourceFailureStoresNothing(t *testing.T) {
	repo := newMemRepo()
	p := NewPipeline(PipelineDeps{Source: &stubSource{err: errUpstream}, Repository: repo}, DefaultSettings())

	_, err := p.FetchBatch(context.Background())
	require.ErrorIs(t, err, errUpstream)
	assert.Empty(t, repo.articles)
}

func TestSearchBatchStoresPaddedThreads(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "Climate Summit opens", "quiet day")
	discussions := &stubDiscussions{
		results: map[string][]domain.Submission{
			"Climate Summit": {{ID: "s1", Title: "Summit thread", URL: "https://www.reddit.com/r/news/comments/s1/"}},
		},
		comments: map[string][]string{"s1": {"good", "bad", "meh"}},
	}

	p := NewPipeline(PipelineDeps{Repository: repo, Discussions: discussions, Keywords: wordKeywords{}}, DefaultSettings())
	n, err := p.SearchBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Climate Summit", "quiet day"}, discussions.queries)
	require.Len(t, repo.threads, 1)
	thread := repo.threads[0]
	assert.Equal(t, int64(1), thread.ArticleID)
	assert.Equal(t, "Summit thread", thread.Title)
	assert.Equal(t, [domain.CommentSlots]string{"good", "bad", "meh", "", ""}, thread.Comments)
	for _, a := range repo.articles {
		assert.True(t, a.IsSearched, "article %d", a.ID)
	}

	n, err = p.SearchBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchBatchStopsOnError(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "Climate Summit opens")
	discussions := &stubDiscussions{err: &domain.StatusError{Service: "reddit", Code: 503, Status: "503 Service Unavailable"}}

	p := NewPipeline(PipelineDeps{Repository: repo, Discussions: discussions, Keywords: wordKeywords{}}, DefaultSettings())
	_, err := p.SearchBatch(context.Background())

	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 503, statusErr.Code)
	assert.False(t, repo.articles[0].IsSearched)
}

func TestSummarizeBatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seed(t, repo, "Climate Summit opens", "Budget vote", "Unsearched story")
	require.NoError(t, repo.SaveThread(ctx, domain.Thread{
		ArticleID: 1,
		Title:     "Summit thread",
		Comments:  domain.PadComments([]string{"the summit was good", "unrelated chatter"}),
	}))
	require.NoError(t, repo.MarkSearched(ctx, 1))
	require.NoError(t, repo.MarkSearched(ctx, 2))

	summarizer := &stubSummarizer{reject: map[string]bool{"2": true}}
	p := NewPipeline(PipelineDeps{Repository: repo, Summarizer: summarizer, Keywords: wordKeywords{}}, DefaultSettings())

	n, err := p.SummarizeBatch(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	require.Len(t, summarizer.docs, 2)
	assert.Equal(t, "1", summarizer.docs[0].ID)
	assert.Equal(t, "Climate Summit opens Summit thread the summit was good", summarizer.docs[0].Text)
	assert.Equal(t, "Budget vote", summarizer.docs[1].Text)

	assert.Equal(t, "summary of 1.", repo.summaries[1])
	assert.True(t, repo.articles[0].IsSummarized)
	assert.False(t, repo.articles[1].IsSummarized)
	assert.False(t, repo.articles[2].IsSummarized)
}

func TestSummarizeBatchSkipsWhenNothingLeft(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seed(t, repo, "Done already")
	require.NoError(t, repo.MarkSearched(ctx, 1))
	require.NoError(t, repo.SaveSummary(ctx, 1, "old"))

	summarizer := &stubSummarizer{}
	p := NewPipeline(PipelineDeps{Repository: repo, Summarizer: summarizer}, DefaultSettings())

	n, err := p.SummarizeBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, summarizer.calls)
}

func TestSummarizeBatchProviderFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seed(t, repo, "Budget vote")
	require.NoError(t, repo.MarkSearched(ctx, 1))

	p := NewPipeline(PipelineDeps{Repository: repo, Summarizer: &stubSummarizer{err: errUpstream}}, DefaultSettings())
	_, err := p.SummarizeBatch(ctx)
	require.ErrorIs(t, err, errUpstream)
	assert.Empty(t, repo.summaries)
}

func TestBuildRowsAssignsYearBands(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	titles := make([]string, 30)
	for i := range titles {
		titles[i] = fmt.Sprintf("story %02d", i+1)
	}
	seed(t, repo, titles...)
	require.NoError(t, repo.SaveThread(ctx, domain.Thread{ArticleID: 1, Comments: domain.PadComments([]string{"good", "bad"})}))
	require.NoError(t, repo.SaveThread(ctx, domain.Thread{ArticleID: 1, Comments: domain.PadComments([]string{"meh"})}))
	require.NoError(t, repo.SaveSummary(ctx, 1, "A summary."))

	p := NewPipeline(PipelineDeps{Repository: repo, Scorer: signScorer{}}, DefaultSettings())
	rows, err := p.BuildRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 30)

	assert.Equal(t, []float64{1, -1, 0}, rows[0].Sentiments)
	assert.Equal(t, "A summary.", rows[0].Summary)
	assert.Empty(t, rows[1].Sentiments)
	for i, row := range rows {
		want := 2015
		if i >= 25 {
			want = 2016
		}
		assert.Equal(t, want, row.Year, "row %d", i)
	}
}

func TestExportFileUploadsAndNotifies(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seed(t, repo, "first", "second")
	require.NoError(t, repo.SaveThread(ctx, domain.Thread{ArticleID: 2, Comments: domain.PadComments([]string{"good", "bad"})}))

	uploader := &recordUploader{}
	notifier := &recordNotifier{err: errUpstream}
	p := NewPipeline(PipelineDeps{Repository: repo, Scorer: signScorer{}, Uploader: uploader, Notifier: notifier}, DefaultSettings())

	path := filepath.Join(t.TempDir(), "out", "articles.csv")
	rows, err := p.ExportFile(ctx, path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "articles.csv", uploader.key)
	assert.Equal(t, string(written), uploader.body)

	back, err := export.ReadCSV(bytes.NewReader(written))
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, []float64{1, -1}, back[1].Sentiments)

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "Export finished: 2 articles, 1 with comments, 0 summarized")
}

func TestExportFileUploadFailure(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "first")

	settings := DefaultSettings()
	settings.ExportKey = "exports/latest.csv"
	uploader := &recordUploader{err: errUpstream}
	p := NewPipeline(PipelineDeps{Repository: repo, Scorer: signScorer{}, Uploader: uploader}, settings)

	path := filepath.Join(t.TempDir(), "articles.csv")
	_, err := p.ExportFile(context.Background(), path)
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, "exports/latest.csv", uploader.key)
	assert.FileExists(t, path)
}

func TestRun(t *testing.T) {
	repo := newMemRepo()
	source := &stubSource{drafts: []domain.ArticleDraft{
		{Title: "Climate Summit opens", URL: "https://news.test/climate"},
		{Title: "Budget vote", URL: "https://news.test/budget"},
	}}
	discussions := &stubDiscussions{
		results: map[string][]domain.Submission{
			"Climate Summit": {{ID: "s1", Title: "Summit thread"}},
		},
		comments: map[string][]string{"s1": {"good", "bad"}},
	}
	summarizer := &stubSummarizer{}

	p := NewPipeline(PipelineDeps{
		Source:      source,
		Repository:  repo,
		Discussions: discussions,
		Keywords:    wordKeywords{},
		Scorer:      signScorer{},
		Summarizer:  summarizer,
	}, DefaultSettings())

	report, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "articles.csv"))
	require.NoError(t, err)

	assert.Equal(t, RunReport{Fetched: 2, Searched: 2, Summarized: 2, Exported: 2}, report)
	assert.Equal(t, 1, summarizer.calls)
}

func TestBuildReport(t *testing.T) {
	rows := []domain.ExportRow{
		{ArticleID: 1, Title: "calm", Year: 2015, Sentiments: []float64{0.1, 0.2}, URL: "u1", Summary: "s"},
		{ArticleID: 2, Title: "heated", Year: 2015, Sentiments: []float64{-1, 1}, URL: "u2"},
		{ArticleID: 3, Title: "quiet", Year: 2016},
	}

	report := BuildReport(rows)
	assert.Contains(t, report, "Export finished: 3 articles, 2 with comments, 1 summarized")
	assert.Contains(t, report, "- 2015: heated (spread 2.00)")
	assert.NotContains(t, report, "2016")
}

func TestPlotterWritesChartPage(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "articles.csv")

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, []domain.ExportRow{
		{ArticleID: 1, Title: "heated", Year: 2015, Sentiments: []float64{-1, 1}, URL: "https://news.test/heated"},
	}))
	require.NoError(t, os.WriteFile(csvPath, buf.Bytes(), 0o644))

	plotter := Plotter{Renderer: visualize.Renderer{SampleSize: 4, Seed: 1}, OutDir: filepath.Join(dir, "charts")}
	out, err := plotter.Plot(csvPath, visualize.KindControversy)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "charts", "controversy.html"), out)
	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "heated")
}

func TestPlotterEmptyExport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "articles.csv")

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))
	require.NoError(t, os.WriteFile(csvPath, buf.Bytes(), 0o644))

	plotter := Plotter{OutDir: filepath.Join(dir, "charts")}
	out, err := plotter.Plot(csvPath, visualize.KindAverages)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoDirExists(t, plotter.OutDir)
}

type manualDriver struct {
	job     func(context.Context, time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(context.Context, time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipeline(t *testing.T) {
	repo := newMemRepo()
	source := &stubSource{drafts: []domain.ArticleDraft{{Title: "Budget vote", URL: "https://news.test/budget"}}}
	p := NewPipeline(PipelineDeps{
		Source:      source,
		Repository:  repo,
		Discussions: &stubDiscussions{},
		Keywords:    wordKeywords{},
		Scorer:      signScorer{},
		Summarizer:  &stubSummarizer{},
	}, DefaultSettings())

	driver := &manualDriver{}
	path := filepath.Join(t.TempDir(), "articles.csv")
	s := NewScheduler(driver, p, path)
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(context.Background(), time.Now())
	assert.Len(t, repo.articles, 1)
	assert.FileExists(t, path)

	source.err = errUpstream
	driver.job(context.Background(), time.Now())
	assert.Len(t, repo.articles, 1)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSearchBatchCapsThreadsPerArticle(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "Budget vote")
	subs := make([]domain.Submission, 7)
	for i := range subs {
		subs[i] = domain.Submission{ID: fmt.Sprintf("s%d", i), Title: fmt.Sprintf("thread %d", i)}
	}
	discussions := &stubDiscussions{results: map[string][]domain.Submission{"Budget": subs}, unbounded: true}

	p := NewPipeline(PipelineDeps{Repository: repo, Discussions: discussions, Keywords: wordKeywords{}}, DefaultSettings())
	_, err := p.SearchBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.threads, 5)
	assert.Equal(t, "thread 0", repo.threads[0].Title)
	assert.Equal(t, "thread 4", repo.threads[4].Title)
}

func TestSearchQuery(t *testing.T) {
	p := NewPipeline(PipelineDeps{Keywords: wordKeywords{}}, DefaultSettings())

	assert.Equal(t, "Senate Budget", p.searchQuery("Senate passes Budget"))
	assert.Equal(t, "is it over?", p.searchQuery("  is it   over? "))
}
