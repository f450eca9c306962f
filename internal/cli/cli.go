// Package cli parses the align command line into configuration, validating
// user input and mapping failures to process exit codes.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/huangruizhe/gentle/internal/batch"
	"github.com/huangruizhe/gentle/internal/config"
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the parsed command line.
type Options struct {
	Config   *config.Config
	Manifest string
	Job      batch.Job
	TextOnly bool
}

// Parse processes command-line arguments. It returns the parsed options, a
// boolean telling the caller to exit cleanly (help was shown), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("align", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
align - build per-utterance decoding graphs for forced alignment.

Usage:
  align [options] MANIFEST

Arguments:
  MANIFEST
    JSON-lines file of {"id", "recording_id", "text"} utterances.

Options:
`)
		flagSet.PrintDefaults()
	}

	configPath := flagSet.String("config", "", "Path to an HCL configuration file.")
	jobs := flagSet.String("jobs", "1:1", "Shard to process, as job_id:total_jobs.")
	outputDir := flagSet.String("output", "", "Output directory (overrides config).")
	strategy := flagSet.String("strategy", "", "Grammar strategy: 'bigram' or 'transcript' (overrides config).")
	conservative := flagSet.Bool("conservative", false, "Allow an OOV word between any two transcript words.")
	disfluency := flagSet.Bool("disfluency", false, "Allow disfluencies (uh, um) between transcript words.")
	workers := flagSet.Int("workers", 0, "Number of utterances processed concurrently (overrides config).")
	textOnly := flagSet.Bool("text-only", false, "Write grammar text only; do not run the graph compiler.")
	logLevel := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn', 'error'.")
	logFormat := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "exactly one MANIFEST argument is required"}
	}

	job, err := batch.ParseJob(*jobs)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Flags override the configuration only when given explicitly.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *outputDir
		case "strategy":
			cfg.Strategy = *strategy
		case "conservative":
			cfg.Conservative = *conservative
		case "disfluency":
			cfg.Disfluency = *disfluency
		case "workers":
			cfg.Workers = *workers
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return &Options{
		Config:   cfg,
		Manifest: flagSet.Arg(0),
		Job:      job,
		TextOnly: *textOnly,
	}, false, nil
}
