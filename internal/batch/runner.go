// Package batch makes one decoding graph per manifest utterance.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/huangruizhe/gentle"
	"github.com/huangruizhe/gentle/internal/config"
	"github.com/huangruizhe/gentle/internal/ctxlog"
	"github.com/huangruizhe/gentle/language"
	"github.com/huangruizhe/gentle/lexicon"
	"github.com/huangruizhe/gentle/mkgraph"
	"golang.org/x/sync/errgroup"
)

// Runner makes graphs for the utterances owned by one job.
type Runner struct {
	Maker    *gentle.GraphMaker
	Output   string // root directory of per-recording outputs
	Workers  int
	Job      Job
	TextOnly bool // write grammar text and skip the compiler
}

// Summary counts the outcome of a run.
type Summary struct {
	Owned     int // utterances belonging to this job
	Skipped   int // output already present
	Processed int
	Failed    int
}

// NewGraphMaker builds a GraphMaker from configuration, loading the
// vocabulary if one is configured.
func NewGraphMaker(cfg *config.Config) (*gentle.GraphMaker, error) {
	builder, err := language.NewGraphBuilder(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	opts := []gentle.Option{
		gentle.WithBuilder(builder),
		gentle.WithCompiler(mkgraph.NewExec(cfg.Compiler)),
		gentle.WithOptions(cfg.GraphOptions()),
	}
	if cfg.Vocabulary != "" {
		vocab, err := lexicon.LoadVocabularyFile(cfg.Vocabulary)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		opts = append(opts, gentle.WithVocabulary(vocab))
	}
	return gentle.NewGraphMaker(cfg.ProtoLangDir, opts...), nil
}

// OutputPath returns where the graph for u is written.
func (r *Runner) OutputPath(u Utterance) string {
	name := u.ID + "_HCLG.fst"
	if r.TextOnly {
		name = u.ID + ".fst.txt"
	}
	return filepath.Join(r.Output, u.RecordingID, name)
}

// Run processes every owned utterance whose output does not exist yet.
// Failures of single utterances are logged and counted; only cancellation
// of ctx is returned as an error.
func (r *Runner) Run(ctx context.Context, utts []Utterance) (Summary, error) {
	logger := ctxlog.FromContext(ctx).With("run_id", uuid.NewString(), "job", r.Job.String())
	ctx = ctxlog.WithLogger(ctx, logger)

	var sum Summary
	var processed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))

	for i, u := range utts {
		if !r.Job.Owns(i) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		sum.Owned++

		out := r.OutputPath(u)
		if _, err := os.Stat(out); err == nil {
			logger.Debug("Output exists, skipping.", "utterance", u.ID, "path", out)
			sum.Skipped++
			continue
		}

		u := u
		g.Go(func() error {
			if err := r.process(gctx, u, out); err != nil {
				logger.Error("Failed to make graph.", "utterance", u.ID, "error", err)
				failed.Add(1)
				return nil
			}
			logger.Info("Made graph.", "utterance", u.ID, "path", out)
			processed.Add(1)
			return nil
		})
	}

	// Workers never return errors, so Wait only reports nil.
	_ = g.Wait()
	sum.Processed = int(processed.Load())
	sum.Failed = int(failed.Load())
	logger.Info("Done.", "owned", sum.Owned, "processed", sum.Processed, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, ctx.Err()
}

func (r *Runner) process(ctx context.Context, u Utterance, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if !r.TextOnly {
		_, err := r.Maker.MakeGraphFromText(ctx, u.Text, out)
		return err
	}

	fst, err := r.Maker.BuildFST(language.SingleSequence(lexicon.Tokenize(u.Text)...))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, fst, 0o644); err != nil {
		// Leave no partial file behind, or the next run would skip it.
		if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			ctxlog.FromContext(ctx).Warn("Failed to remove partial output.", "path", out, "error", rmErr)
		}
		return fmt.Errorf("write grammar: %w", err)
	}
	return nil
}
