package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"roster/cli"
	"roster/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}

	level := new(slog.LevelVar)
	level.Set(getLogLevel(cfg.LogLevel))

	logger := setupLogger(cfg, level)
	slog.SetDefault(logger)

	cmd := cli.NewRootCommand(cfg, logger, level)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// setupLogger writes to stderr so command output on stdout stays parseable.
func setupLogger(cfg *config.Config, level *slog.LevelVar) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Env == "development" && level.Level() == slog.LevelDebug,
	}

	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func getLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
