// Package reconcile drives one reconciliation: read the repository's labels,
// plan the changes, and apply them through a rate-limited writer.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ALT-F4-LLC/labelsync/internal/model"
	"github.com/ALT-F4-LLC/labelsync/internal/planner"
	"github.com/ALT-F4-LLC/labelsync/internal/throttle"
)

// Reader lists the labels currently defined on a repository.
type Reader interface {
	ListLabels(ctx context.Context) ([]model.ExistingLabel, error)
}

// Writer performs the remote operation behind each change variant.
type Writer interface {
	CreateLabel(ctx context.Context, c model.Create) error
	UpdateLabel(ctx context.Context, c model.Update) error
	DeleteLabel(ctx context.Context, c model.Delete) error
}

// Options configures Run.
type Options struct {
	Reader  Reader
	Writer  Writer
	Gate    throttle.Gate
	Desired []model.DesiredLabel
	DryRun  bool
	Logger  *slog.Logger

	// Confirm, when set, is called with the plan before anything is
	// applied. Returning false skips the apply and marks the report
	// declined.
	Confirm func(changes []model.Change) (bool, error)
}

// Result is the outcome of one applied change.
type Result struct {
	Change model.Change
	Err    error
}

// Report summarises a reconciliation.
type Report struct {
	Existing []model.ExistingLabel
	Changes  model.ChangeList
	// Results holds one entry per change in plan order. It is empty for dry
	// runs.
	Results  []Result
	DryRun   bool
	Declined bool
}

// Applied returns the number of changes that succeeded.
func (r *Report) Applied() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of changes that failed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Applied()
}

// ApplyError reports the changes that failed during Apply. Successful
// changes are not rolled back; re-running converges.
type ApplyError struct {
	Failed []Result
	Total  int
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%d of %d changes failed: %v", len(e.Failed), e.Total, errors.Join(e.Unwrap()...))
}

// Unwrap exposes every underlying failure to errors.Is and errors.As.
func (e *ApplyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, res := range e.Failed {
		errs = append(errs, res.Err)
	}
	return errs
}

// Plan reads the existing labels once and computes the change list. A read
// failure aborts before any planning.
func Plan(ctx context.Context, reader Reader, desired []model.DesiredLabel) (*Report, error) {
	existing, err := reader.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading existing labels: %w", err)
	}
	return &Report{
		Existing: existing,
		Changes:  model.ChangeList(planner.Plan(existing, desired)),
	}, nil
}

// Apply dispatches every change concurrently, each admitted by gate. A
// failing change never cancels the others. The returned results are in the
// same order as changes; the error is an *ApplyError when any change failed.
func Apply(ctx context.Context, w Writer, gate throttle.Gate, changes []model.Change, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = discardLogger()
	}
	if gate == nil {
		gate = throttle.Unlimited()
	}

	results := make([]Result, len(changes))
	var g errgroup.Group
	for i, c := range changes {
		i, c := i, c
		g.Go(func() error {
			results[i] = Result{Change: c, Err: applyOne(ctx, w, gate, c)}
			if err := results[i].Err; err != nil {
				logger.Warn("change failed", "kind", c.Kind(), "label", c.Target(), "error", err)
			} else {
				logger.Debug("change applied", "kind", c.Kind(), "label", c.Target())
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		return results, &ApplyError{Failed: failed, Total: len(changes)}
	}
	return results, nil
}

func applyOne(ctx context.Context, w Writer, gate throttle.Gate, c model.Change) error {
	if err := gate.Wait(ctx); err != nil {
		return fmt.Errorf("waiting to %s: %w", model.Describe(c), err)
	}
	switch c := c.(type) {
	case model.Create:
		return w.CreateLabel(ctx, c)
	case model.Update:
		return w.UpdateLabel(ctx, c)
	case model.Delete:
		return w.DeleteLabel(ctx, c)
	default:
		return fmt.Errorf("unknown change type %T", c)
	}
}

// Run plans against the live label set and, unless DryRun, applies the plan.
// The report is returned alongside any *ApplyError so callers can show
// partial progress.
func Run(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	report, err := Plan(ctx, opts.Reader, opts.Desired)
	if err != nil {
		return nil, err
	}
	report.DryRun = opts.DryRun

	counts := model.CountByKind(report.Changes)
	logger.Info("planned label changes",
		"existing", len(report.Existing),
		"create", counts[model.ChangeCreate],
		"update", counts[model.ChangeUpdate],
		"delete", counts[model.ChangeDelete],
		"dry_run", opts.DryRun,
	)

	if opts.DryRun || len(report.Changes) == 0 {
		return report, nil
	}

	if opts.Confirm != nil {
		ok, err := opts.Confirm(report.Changes)
		if err != nil {
			return report, fmt.Errorf("confirming changes: %w", err)
		}
		if !ok {
			logger.Info("apply declined", "changes", len(report.Changes))
			report.Declined = true
			return report, nil
		}
	}

	results, err := Apply(ctx, opts.Writer, opts.Gate, report.Changes, logger)
	report.Results = results
	return report, err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
