package storage

import (
	"context"
	"fmt"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		is_searched INTEGER NOT NULL DEFAULT 0,
		is_summarized INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_news_url ON news(url);

	CREATE TABLE IF NOT EXISTS reddit_posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL,
		reddit_title TEXT NOT NULL DEFAULT '',
		reddit_url TEXT NOT NULL DEFAULT '',
		comment1 TEXT NOT NULL DEFAULT '',
		comment2 TEXT NOT NULL DEFAULT '',
		comment3 TEXT NOT NULL DEFAULT '',
		comment4 TEXT NOT NULL DEFAULT '',
		comment5 TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (article_id) REFERENCES news(article_id)
	);
	CREATE INDEX IF NOT EXISTS idx_reddit_posts_article ON reddit_posts(article_id);`,

	`CREATE TABLE IF NOT EXISTS article_summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL UNIQUE,
		summary TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (article_id) REFERENCES news(article_id)
	);`,
}

// SchemaVersion is the version a fully migrated store reports.
func SchemaVersion() int {
	return len(migrations)
}

// Migrate applies every pending migration. Running it on an up-to-date store is a no-op.
func (r *SQLiteRepository) Migrate(ctx context.Context) (int, error) {
	current, err := r.Version(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for v := current; v < len(migrations); v++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("apply migration %d: %w", v+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %d: %w", v+1, err)
		}
		applied++
	}

	return applied, nil
}

// Reset drops every table and rewinds the schema version. All stored data is lost.
func (r *SQLiteRepository) Reset(ctx context.Context) error {
	statements := []string{
		`DROP TABLE IF EXISTS article_summaries`,
		`DROP TABLE IF EXISTS reddit_posts`,
		`DROP TABLE IF EXISTS news`,
		`PRAGMA user_version = 0`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
	}
	return nil
}

// Version reports the number of applied migrations.
func (r *SQLiteRepository) Version(ctx context.Context) (int, error) {
	var version int
	if err := r.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
