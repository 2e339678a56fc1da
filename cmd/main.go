package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/survival/internal/app"
	"github.com/okian/survival/internal/config"
	"github.com/okian/survival/pkg/logger"
	"github.com/okian/survival/pkg/metrics"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout)
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

// run executes one pipeline pass and returns the process exit code.
func run(ctx context.Context, out io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if cfg.LogJSON {
		_ = logger.Init(logger.WithJSON(true))
	}

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(loggerInstance),
		app.WithOutput(out),
		app.WithMetrics(metrics.Default()),
	)
	_, runErr := svc.Run(ctx)

	// A batch job has no scrape endpoint; metrics go to a textfile when asked.
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			loggerInstance.Error(ctx, "failed to write metrics", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}

	if runErr != nil {
		return 1
	}
	return 0
}
