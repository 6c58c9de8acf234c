package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "DISCUSSION_SCANNER_CONFIG"
	dotEnvPathEnv      = "ENV_PATH"
	logLevelEnv        = "LOG_LEVEL"
	databasePathEnv    = "DATABASE_PATH"
	nytAPIKeyEnv       = "NYT_API_KEY"
	redditClientIDEnv  = "REDDIT_CLIENT_ID"
	redditSecretEnv    = "REDDIT_CLIENT_SECRET"
	redditUserAgentEnv = "REDDIT_USER_AGENT"
	azureKeyEnv        = "AZURE_LANGUAGE_KEY"
	azureEndpointEnv   = "AZURE_LANGUAGE_ENDPOINT"
	cohereAPIKeyEnv    = "COHERE_API_KEY"
	chatGPTAPIKeyEnv   = "CHATGPT_API_KEY"
	chatGPTModelEnv    = "CHATGPT_MODEL"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	exportBucketEnv    = "EXPORT_S3_BUCKET"
	exportRegionEnv    = "EXPORT_S3_REGION"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	News          NewsConfig         `yaml:"news"`
	Reddit        RedditConfig       `yaml:"reddit"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	Azure         AzureConfig        `yaml:"azure"`
	Cohere        CohereConfig       `yaml:"cohere"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Export        ExportConfig       `yaml:"export"`
	Charts        ChartsConfig       `yaml:"charts"`
	Notifications NotificationConfig `yaml:"notifications"`
	Progress      ProgressConfig     `yaml:"progress"`
	Run           RunConfig          `yaml:"run"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NewsConfig selects the article source and its endpoints.
type NewsConfig struct {
	Source        string `yaml:"source"`
	BatchSize     int    `yaml:"batchSize"`
	APIKey        string `yaml:"apiKey"`
	ArchiveURL    string `yaml:"archiveUrl"`
	TopStoriesURL string `yaml:"topStoriesUrl"`
	FeedURL       string `yaml:"feedUrl"`
	StartYear     int    `yaml:"startYear"`
	LastYear      int    `yaml:"lastYear"`
	YearBandSize  int    `yaml:"yearBandSize"`
}

// RedditConfig wires the app-only OAuth client and search bounds.
type RedditConfig struct {
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`
	UserAgent    string `yaml:"userAgent"`
	AuthURL      string `yaml:"authUrl"`
	APIURL       string `yaml:"apiUrl"`
	Subreddit    string `yaml:"subreddit"`
	BatchSize    int    `yaml:"batchSize"`
	ThreadLimit  int    `yaml:"threadLimit"`
	CommentLimit int    `yaml:"commentLimit"`
}

// SummarizerConfig picks the provider and batch bounds.
type SummarizerConfig struct {
	Provider     string `yaml:"provider"`
	BatchSize    int    `yaml:"batchSize"`
	MaxSentences int    `yaml:"maxSentences"`
}

// AzureConfig describes the Azure AI Language resource.
type AzureConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"apiKey"`
	APIVersion   string        `yaml:"apiVersion"`
	Language     string        `yaml:"language"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// CohereConfig describes the Cohere summarize client.
type CohereConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ExportConfig controls the CSV export.
type ExportConfig struct {
	Path     string   `yaml:"path"`
	BaseYear int      `yaml:"baseYear"`
	BandSize int      `yaml:"bandSize"`
	S3       S3Config `yaml:"s3"`
}

// S3Config enables uploading the export; empty Bucket disables it.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Key          string `yaml:"key"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// ChartsConfig controls HTML chart rendering.
type ChartsConfig struct {
	Dir        string `yaml:"dir"`
	SampleSize int    `yaml:"sampleSize"`
	Seed       int64  `yaml:"seed"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ProgressConfig toggles the terminal spinner.
type ProgressConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RunConfig controls the all-in-one driver.
type RunConfig struct {
	SearchPasses int `yaml:"searchPasses"`
}

// ScheduleConfig drives the long-running schedule command.
type ScheduleConfig struct {
	Cron       string `yaml:"cron"`
	RunOnStart bool   `yaml:"runOnStart"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	loadDotEnv()

	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = Default()
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg
}

func loadDotEnv() {
	path := os.Getenv(dotEnvPathEnv)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func (c *Config) applyEnvOverrides() {
	overrides := map[string]*string{
		logLevelEnv:        &c.Logging.Level,
		databasePathEnv:    &c.Database.Path,
		nytAPIKeyEnv:       &c.News.APIKey,
		redditClientIDEnv:  &c.Reddit.ClientID,
		redditSecretEnv:    &c.Reddit.ClientSecret,
		redditUserAgentEnv: &c.Reddit.UserAgent,
		azureKeyEnv:        &c.Azure.APIKey,
		azureEndpointEnv:   &c.Azure.Endpoint,
		cohereAPIKeyEnv:    &c.Cohere.APIKey,
		chatGPTAPIKeyEnv:   &c.ChatGPT.APIKey,
		chatGPTModelEnv:    &c.ChatGPT.Model,
		telegramTokenEnv:   &c.Notifications.Telegram.BotToken,
		telegramChatIDEnv:  &c.Notifications.Telegram.ChatID,
		exportBucketEnv:    &c.Export.S3.Bucket,
		exportRegionEnv:    &c.Export.S3.Region,
	}

	for env, target := range overrides {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
}

// normalize restores defaults for zero values a partial YAML file may leave behind.
func (c *Config) normalize() {
	def := Default()

	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.News.Source == "" {
		c.News.Source = def.News.Source
	}
	if c.News.BatchSize <= 0 {
		c.News.BatchSize = def.News.BatchSize
	}
	if c.News.YearBandSize <= 0 {
		c.News.YearBandSize = def.News.YearBandSize
	}
	if c.News.StartYear == 0 {
		c.News.StartYear = def.News.StartYear
	}
	if c.News.LastYear < c.News.StartYear {
		c.News.LastYear = c.News.StartYear
	}
	if c.Reddit.BatchSize <= 0 {
		c.Reddit.BatchSize = def.Reddit.BatchSize
	}
	if c.Reddit.ThreadLimit <= 0 {
		c.Reddit.ThreadLimit = def.Reddit.ThreadLimit
	}
	if c.Reddit.CommentLimit <= 0 {
		c.Reddit.CommentLimit = def.Reddit.CommentLimit
	}
	if c.Reddit.Subreddit == "" {
		c.Reddit.Subreddit = def.Reddit.Subreddit
	}
	if c.Summarizer.BatchSize <= 0 {
		c.Summarizer.BatchSize = def.Summarizer.BatchSize
	}
	if c.Summarizer.MaxSentences <= 0 {
		c.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
	if c.Azure.PollInterval <= 0 {
		c.Azure.PollInterval = def.Azure.PollInterval
	}
	if c.Export.Path == "" {
		c.Export.Path = def.Export.Path
	}
	if c.Export.BaseYear == 0 {
		c.Export.BaseYear = def.Export.BaseYear
	}
	if c.Export.BandSize <= 0 {
		c.Export.BandSize = def.Export.BandSize
	}
	if c.Charts.Dir == "" {
		c.Charts.Dir = def.Charts.Dir
	}
	if c.Charts.SampleSize <= 0 {
		c.Charts.SampleSize = def.Charts.SampleSize
	}
	if c.Run.SearchPasses <= 0 {
		c.Run.SearchPasses = def.Run.SearchPasses
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = def.Schedule.Cron
	}
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "news.db"},
		News: NewsConfig{
			Source:        "nyt-archive",
			BatchSize:     25,
			ArchiveURL:    "https://api.nytimes.com/svc/archive/v1",
			TopStoriesURL: "https://api.nytimes.com/svc/topstories/v2/home.json",
			FeedURL:       "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
			StartYear:     2019,
			LastYear:      2022,
			YearBandSize:  25,
		},
		Reddit: RedditConfig{
			UserAgent:    "DiscussionScanner/1.0",
			AuthURL:      "https://www.reddit.com/api/v1/access_token",
			APIURL:       "https://oauth.reddit.com",
			Subreddit:    "all",
			BatchSize:    5,
			ThreadLimit:  5,
			CommentLimit: 5,
		},
		Summarizer: SummarizerConfig{Provider: "azure", BatchSize: 25, MaxSentences: 1},
		Azure: AzureConfig{
			APIVersion:   "2023-04-01",
			Language:     "en",
			PollInterval: 2 * time.Second,
		},
		Cohere: CohereConfig{Model: "command"},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "Summarize the discussion in exactly one sentence taken from the text.",
		},
		Export: ExportConfig{
			Path:     "output.csv",
			BaseYear: 2015,
			BandSize: 25,
			S3:       S3Config{Key: "exports/output.csv"},
		},
		Charts:   ChartsConfig{Dir: "charts", SampleSize: 12, Seed: 1},
		Progress: ProgressConfig{Enabled: true},
		Run:      RunConfig{SearchPasses: 5},
		Schedule: ScheduleConfig{Cron: "0 */6 * * *", RunOnStart: true},
	}
}
