package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"DiscussionScanner/internal/domain"
	"DiscussionScanner/internal/ports"
)

var commentColumns = []string{"comment1", "comment2", "comment3", "comment4", "comment5"}

// SQLiteRepository persists articles, threads, and summaries in a SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ArticleRepository = (*SQLiteRepository)(nil)

// Open connects to the SQLite file at path (":memory:" for a private in-memory store).
func Open(path string) (*SQLiteRepository, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_foreign_keys=on&_busy_timeout=5000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" stores shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return NewSQLiteRepository(db), nil
}

// NewSQLiteRepository wires a sql.DB implementation.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close releases the underlying connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// CountArticles returns the number of stored articles.
func (r *SQLiteRepository) CountArticles(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("news").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// InsertArticles stores drafts in one transaction, numbering them after the current maximum.
// Drafts whose URL is already stored, or repeated within the batch, are skipped without consuming an identifier.
func (r *SQLiteRepository) InsertArticles(ctx context.Context, drafts []domain.ArticleDraft) ([]domain.Article, error) {
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxID sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(article_id) FROM news`).Scan(&maxID); err != nil {
		return nil, fmt.Errorf("select max id: %w", err)
	}
	next := maxID.Int64

	inserted := make([]domain.Article, 0, len(drafts))
	seen := map[string]struct{}{}
	for _, draft := range drafts {
		if draft.URL != "" {
			if _, dup := seen[draft.URL]; dup {
				continue
			}
			seen[draft.URL] = struct{}{}

			exists, err := urlExists(ctx, tx, draft.URL)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}

		next++
		query, args, err := sq.Insert("news").
			Columns("article_id", "title", "url").
			Values(next, draft.Title, draft.URL).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert article %d: %w", next, err)
		}
		inserted = append(inserted, domain.Article{ID: next, Title: draft.Title, URL: draft.URL})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

func urlExists(ctx context.Context, tx *sql.Tx, url string) (bool, error) {
	query, args, err := sq.Select("1").From("news").Where(sq.Eq{"url": url}).Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build lookup: %w", err)
	}

	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup url: %w", err)
	}
	return true, nil
}

// ListUnsearched returns up to limit articles that have not been searched yet.
func (r *SQLiteRepository) ListUnsearched(ctx context.Context, limit int) ([]domain.Article, error) {
	return r.listArticles(ctx, sq.Eq{"is_searched": 0}, limit)
}

// ListUnsummarized returns up to limit articles with is_searched = 1 and is_summarized = 0.
// Unsearched articles are left out so they never crowd the batch before their threads exist.
func (r *SQLiteRepository) ListUnsummarized(ctx context.Context, limit int) ([]domain.Article, error) {
	return r.listArticles(ctx, sq.Eq{"is_searched": 1, "is_summarized": 0}, limit)
}

func (r *SQLiteRepository) listArticles(ctx context.Context, where sq.Eq, limit int) ([]domain.Article, error) {
	builder := sq.Select("article_id", "title", "url", "is_searched", "is_summarized", "created_at").
		From("news").
		Where(where).
		OrderBy("article_id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.IsSearched, &a.IsSummarized, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// SaveThread inserts one discussion thread row.
func (r *SQLiteRepository) SaveThread(ctx context.Context, thread domain.Thread) error {
	values := []interface{}{thread.ArticleID, thread.Title, thread.URL}
	for _, c := range thread.Comments {
		values = append(values, c)
	}

	query, args, err := sq.Insert("reddit_posts").
		Columns(append([]string{"article_id", "reddit_title", "reddit_url"}, commentColumns...)...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build thread insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert thread for article %d: %w", thread.ArticleID, err)
	}
	return nil
}

// MarkSearched flips is_searched to 1.
func (r *SQLiteRepository) MarkSearched(ctx context.Context, articleID int64) error {
	return r.setFlag(ctx, r.db, "is_searched", articleID)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *SQLiteRepository) setFlag(ctx context.Context, db execer, column string, articleID int64) error {
	query, args, err := sq.Update("news").
		Set(column, 1).
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build flag update: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s for article %d: %w", column, articleID, err)
	}
	return nil
}

// ThreadsForArticle returns the article's threads in insertion order.
func (r *SQLiteRepository) ThreadsForArticle(ctx context.Context, articleID int64) ([]domain.Thread, error) {
	query, args, err := sq.Select(append([]string{"id", "article_id", "reddit_title", "reddit_url"}, commentColumns...)...).
		From("reddit_posts").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build thread query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		dest := []interface{}{&t.ID, &t.ArticleID, &t.Title, &t.URL}
		for i := range t.Comments {
			dest = append(dest, &t.Comments[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return threads, nil
}

// SaveSummary stores the summary and sets is_summarized in one transaction.
func (r *SQLiteRepository) SaveSummary(ctx context.Context, articleID int64, summary string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin summary: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := sq.Insert("article_summaries").
		Columns("article_id", "summary").
		Values(articleID, summary).
		Suffix("ON CONFLICT(article_id) DO UPDATE SET summary = excluded.summary").
		ToSql()
	if err != nil {
		return fmt.Errorf("build summary insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert summary for article %d: %w", articleID, err)
	}

	if err := r.setFlag(ctx, tx, "is_summarized", articleID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit summary: %w", err)
	}
	return nil
}

// ListWithSummaries returns every article ordered by identifier, joined with its summary.
func (r *SQLiteRepository) ListWithSummaries(ctx context.Context) ([]domain.ArticleSummary, error) {
	query, args, err := sq.Select(
		"n.article_id", "n.title", "n.url", "n.is_searched", "n.is_summarized", "n.created_at",
		"COALESCE(s.summary, '')",
	).
		From("news n").
		LeftJoin("article_summaries s ON n.article_id = s.article_id").
		OrderBy("n.article_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query export: %w", err)
	}
	defer rows.Close()

	var out []domain.ArticleSummary
	for rows.Next() {
		var item domain.ArticleSummary
		a := &item.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.IsSearched, &a.IsSummarized, &a.CreatedAt, &item.Summary); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
