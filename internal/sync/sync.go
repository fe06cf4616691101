// Package sync drives the file synchronization batch: list every descriptor
// on the source store, optionally skip duplicates, materialize the rest on
// the target store, and tally the outcome. Strictly sequential, one request
// in flight at a time, best effort: a file's failure never aborts the run.
package sync

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront-tools/mediasync/internal/match"
	"github.com/storefront-tools/mediasync/internal/shopify"
)

// Mode selects the duplicate policy for a run.
type Mode string

const (
	// ModeOverwrite always materializes, even when the target already has
	// a file with the same key.
	ModeOverwrite Mode = "overwrite"
	// ModeDedupe consults the matcher and skips descriptors whose key is
	// already present on the target.
	ModeDedupe Mode = "dedupe"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOverwrite, ModeDedupe:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want overwrite or dedupe)", ErrUnknownMode, s)
	}
}

// Materializer creates one descriptor on the target store.
type Materializer interface {
	Materialize(ctx context.Context, f shopify.File) (shopify.MaterializeResult, error)
}

// Failure records one file that could not be synchronized.
type Failure struct {
	Filename string
	Message  string
}

// Summary is the outcome of one run.
type Summary struct {
	RunID     string
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Runner sequences the pipeline over a descriptor sequence.
type Runner struct {
	files        iter.Seq2[shopify.File, error]
	matcher      match.Matcher
	materializer Materializer
	mode         Mode
	out          io.Writer
	logger       *zap.Logger
	runID        string
}

func NewRunner(files iter.Seq2[shopify.File, error], matcher match.Matcher, materializer Materializer, mode Mode, out io.Writer, logger *zap.Logger) *Runner {
	return &Runner{
		files:        files,
		matcher:      matcher,
		materializer: materializer,
		mode:         mode,
		out:          out,
		logger:       logger.With(zap.String("mode", string(mode))),
		runID:        uuid.NewString(),
	}
}

// Run walks the descriptor sequence once. The returned error is non-nil only
// for listing-level fatal failures; per-file failures land in the summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: r.runID}
	n := 0

	for f, err := range r.files {
		if err != nil {
			// A listing failure aborts the whole run; whatever was
			// already attempted stays attempted.
			r.printTally(summary)
			return summary, err
		}

		n++
		fmt.Fprintf(r.out, "[%d] %s (%s) ", n, f.Filename, f.Kind)

		if r.mode == ModeDedupe {
			exists, err := r.matcher.Exists(ctx, f.Filename)
			if err != nil {
				summary.fail(f.Filename, fmt.Sprintf("duplicate check: %v", err))
				fmt.Fprintf(r.out, "FAILED: %v\n", err)
				continue
			}
			if exists {
				summary.Skipped++
				fmt.Fprintln(r.out, "skipped, already on target")
				continue
			}
		}

		res, err := r.materializer.Materialize(ctx, f)
		if err != nil {
			summary.fail(f.Filename, err.Error())
			fmt.Fprintf(r.out, "FAILED: %v\n", err)
			continue
		}

		summary.Succeeded++
		switch {
		case res.Recoded:
			fmt.Fprintf(r.out, "created (re-encoded) %s\n", res.DeliveryURL)
		case res.DeliveryURL == "":
			fmt.Fprintln(r.out, "created, processing")
		default:
			fmt.Fprintf(r.out, "created %s\n", res.DeliveryURL)
		}
	}

	r.printTally(summary)
	return summary, nil
}

func (s *Summary) fail(filename, message string) {
	s.Failed++
	s.Failures = append(s.Failures, Failure{Filename: filename, Message: message})
}

func (r *Runner) printTally(s Summary) {
	fmt.Fprintf(r.out, "\nDone: %d succeeded, %d skipped, %d failed\n", s.Succeeded, s.Skipped, s.Failed)
	for _, f := range s.Failures {
		fmt.Fprintf(r.out, "  failed: %s: %s\n", f.Filename, f.Message)
	}
	r.logger.Info("sync run finished",
		zap.String("run_id", s.RunID),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed))
}
