package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangruizhe/gentle/internal/batch"
	"github.com/huangruizhe/gentle/internal/cli"
	"github.com/huangruizhe/gentle/internal/ctxlog"
)

func main() {
	opts, exit, err := cli.Parse(os.Args[1:], os.Stderr)
	if exit {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}

	cfg := opts.Config
	logger := ctxlog.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	utts, err := batch.ReadManifestFile(opts.Manifest)
	if err != nil {
		logger.Error("Failed to read manifest.", "path", opts.Manifest, "error", err)
		os.Exit(1)
	}

	maker, err := batch.NewGraphMaker(cfg)
	if err != nil {
		logger.Error("Failed to set up graph maker.", "error", err)
		os.Exit(1)
	}

	r := &batch.Runner{
		Maker:    maker,
		Output:   cfg.Output,
		Workers:  cfg.Workers,
		Job:      opts.Job,
		TextOnly: opts.TextOnly,
	}
	logger.Info("Starting.", "manifest", opts.Manifest, "utterances", len(utts), "strategy", cfg.Strategy,
		"conservative", cfg.Conservative, "disfluency", cfg.Disfluency)

	sum, err := r.Run(ctx, utts)
	if err != nil {
		logger.Error("Run interrupted.", "error", err, "processed", sum.Processed)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Done: %d processed, %d skipped, %d failed\n", sum.Processed, sum.Skipped, sum.Failed)
}
