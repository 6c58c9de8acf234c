package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(dotEnvPathEnv, filepath.Join(dir, "missing.env"))
	t.Setenv(configPathEnv, "")
	for _, env := range []string{databasePathEnv, logLevelEnv, nytAPIKeyEnv, exportBucketEnv} {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg := Load()
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "news.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.News.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Azure.PollInterval)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /data/scanner.db
news:
  source: rss
  batchSize: 10
summarizer:
  provider: cohere
azure:
  pollInterval: 500ms
export:
  s3:
    bucket: from-yaml
`), 0o644))
	t.Setenv(configPathEnv, path)
	t.Setenv(exportBucketEnv, "from-env")

	cfg := Load()
	assert.Equal(t, "/data/scanner.db", cfg.Database.Path)
	assert.Equal(t, "rss", cfg.News.Source)
	assert.Equal(t, 10, cfg.News.BatchSize)
	assert.Equal(t, "cohere", cfg.Summarizer.Provider)
	assert.Equal(t, 500*time.Millisecond, cfg.Azure.PollInterval)
	assert.Equal(t, "from-env", cfg.Export.S3.Bucket)

	// untouched sections keep their defaults
	assert.Equal(t, 5, cfg.Reddit.ThreadLimit)
	assert.Equal(t, "charts", cfg.Charts.Dir)
}

func TestLoadBrokenYAMLFallsBack(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("news: [unclosed"), 0o644))
	t.Setenv(configPathEnv, path)

	assert.Equal(t, Default(), Load())
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TELEGRAM_CHAT_ID=12345\n"), 0o644))
	t.Setenv(dotEnvPathEnv, envPath)
	t.Setenv(telegramChatIDEnv, "")
	os.Unsetenv(telegramChatIDEnv)

	cfg := Load()
	assert.Equal(t, "12345", cfg.Notifications.Telegram.ChatID)
}

func TestNormalize(t *testing.T) {
	cfg := Config{News: NewsConfig{StartYear: 2020, LastYear: 2010}}
	cfg.normalize()

	def := Default()
	assert.Equal(t, def.Database.Path, cfg.Database.Path)
	assert.Equal(t, def.News.Source, cfg.News.Source)
	assert.Equal(t, 2020, cfg.News.LastYear)
	assert.Equal(t, def.Export.BandSize, cfg.Export.BandSize)
	assert.Equal(t, def.Run.SearchPasses, cfg.Run.SearchPasses)
}
