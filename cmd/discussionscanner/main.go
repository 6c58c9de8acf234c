package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"DiscussionScanner/internal/app"
	"DiscussionScanner/internal/config"
	"DiscussionScanner/internal/logging"
)

const usage = `usage: discussionscanner [-config file] <command>

commands:
  setup [--clear]   apply schema migrations (--clear drops all data first)
  fetch             store one batch of news articles
  search            find Reddit threads for one batch of articles
  summarize         summarize one batch of searched articles
  export            write the CSV export
  plot <kind|all>   render charts (controversy, categories, averages, articles)
  run               setup, fetch, search, summarize and export in sequence
  schedule          repeat run on the configured cron schedule until interrupted
`

var errUsage = errors.New("invalid usage")

func main() {
	flags := flag.NewFlagSet("discussionscanner", flag.ExitOnError)
	flags.Usage = func() { fmt.Fprint(flags.Output(), usage) }
	configPath := flags.String("config", "", "path to a YAML config file")
	_ = flags.Parse(os.Args[1:])

	if *configPath != "" {
		_ = os.Setenv("DISCUSSION_SCANNER_CONFIG", *configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level).With("run_id", uuid.NewString())

	err := execute(ctx, cfg, logger, flags.Args())
	stop()
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	var clear bool
	var kind string
	switch command {
	case "setup":
		setupFlags := flag.NewFlagSet("setup", flag.ContinueOnError)
		setupFlags.BoolVar(&clear, "clear", false, "drop every table before migrating")
		if err := setupFlags.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	case "plot":
		if len(rest) != 1 {
			return fmt.Errorf("%w: plot takes exactly one chart kind", errUsage)
		}
		kind = rest[0]
	case "fetch", "search", "summarize", "export", "run", "schedule":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	logger.Debug("command started", "command", command)
	switch command {
	case "setup":
		return application.Setup(ctx, clear)
	case "fetch":
		return application.Fetch(ctx)
	case "search":
		return application.Search(ctx)
	case "summarize":
		return application.Summarize(ctx)
	case "export":
		return application.Export(ctx)
	case "plot":
		return application.Plot(kind)
	case "schedule":
		return application.Schedule(ctx)
	default:
		return application.Run(ctx)
	}
}
