package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/survival/internal/adapters/csvfile"
	"github.com/okian/survival/internal/sampledata"
	"github.com/okian/survival/pkg/logger"
)

const usage = `Synthetic Passenger Generator
=============================

Writes a labelled training manifest and an unlabelled test manifest with the
Titanic column layout, for running the pipeline without the Kaggle files.
The same seed always produces the same files.

Usage:
  go run ./cmd/gen-passengers [options]

Options:
  -train string
        Training manifest destination (default "titanic/train.csv")
  -test string
        Test manifest destination (default "titanic/test.csv")
  -train-rows int
        Labelled passengers (default 891)
  -test-rows int
        Unlabelled passengers (default 418)
  -seed int
        Random seed (default 1)
  -help
        Show this help message
`

func main() {
	var (
		trainPath = flag.String("train", "titanic/train.csv", "Training manifest destination")
		testPath  = flag.String("test", "titanic/test.csv", "Test manifest destination")
		trainRows = flag.Int("train-rows", sampledata.DefaultTrainRows, "Labelled passengers")
		testRows  = flag.Int("test-rows", sampledata.DefaultTestRows, "Unlabelled passengers")
		seed      = flag.Int64("seed", sampledata.DefaultSeed, "Random seed")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		os.Stdout.WriteString(usage)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := sampledata.Config{TrainRows: *trainRows, TestRows: *testRows, Seed: *seed}
	if err := sampledata.WriteFiles(ctx, csvfile.New(), cfg, *trainPath, *testPath); err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
	log.Info(ctx, "passenger manifests written",
		logger.String("train", *trainPath),
		logger.Int("train_rows", cfg.TrainRows),
		logger.String("test", *testPath),
		logger.Int("test_rows", cfg.TestRows),
		logger.Int64("seed", cfg.Seed),
	)
}
