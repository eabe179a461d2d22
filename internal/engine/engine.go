package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/bamsammich/dcp/internal/event"
	"github.com/bamsammich/dcp/internal/filter"
	"github.com/bamsammich/dcp/internal/stats"
)

// Config describes a copy operation. It is read-only for the duration of a
// run.
type Config struct {
	Src string
	Dst string

	// BufferSize is the chunk size for every read and write. Zero selects
	// the filesystem's preferred block size; negative values are rejected.
	BufferSize int

	Overwrite OverwriteMode
	DryRun    bool

	PreserveMode  bool
	PreserveTimes bool
	Verify        bool

	// Compare names the comparison oracle ("hash" or "bytes"). Oracle, when
	// set, takes precedence.
	Compare string
	Oracle  Oracle

	Filter  *filter.Chain
	BWLimit int64 // bytes per second, 0 = unlimited

	// Confirm is asked before overwriting in Prompt mode. Required there.
	Confirm Confirmer

	// Events receives one event per entry plus RunStarted and RunFinished.
	// Sends block, so the consumer must keep draining until Run returns.
	Events chan<- event.Event

	// Stats, if set, is updated live so a presenter can poll it. Run calls
	// Finish on it.
	Stats *stats.Collector
}

// Result is the outcome of a copy operation.
type Result struct {
	Stats stats.Snapshot
	Err   error

	// Fatal is set when the run was rejected before any entry was touched.
	// Stats are zero in that case.
	Fatal bool
}

func (cfg Config) validate() error {
	if cfg.Src == "" {
		return fmt.Errorf("%w: empty source path", ErrInvalidRequest)
	}
	if cfg.Dst == "" {
		return fmt.Errorf("%w: empty destination path", ErrInvalidRequest)
	}
	if cfg.BufferSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, cfg.BufferSize)
	}
	if cfg.BWLimit < 0 {
		return fmt.Errorf("%w: negative bandwidth limit", ErrInvalidRequest)
	}
	return nil
}

// Run executes a copy operation, blocking until complete.
func Run(ctx context.Context, cfg Config) Result {
	if err := cfg.validate(); err != nil {
		return Result{Err: err, Fatal: true}
	}

	oracle := cfg.Oracle
	if oracle == nil {
		var err error
		oracle, err = NewOracle(cfg.Compare, cfg.BufferSize)
		if err != nil {
			return Result{Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err), Fatal: true}
		}
	}

	policy, err := NewOverwritePolicy(cfg.Overwrite, cfg.Confirm)
	if err != nil {
		return Result{Err: err, Fatal: true}
	}

	var limiter *rate.Limiter
	if cfg.BWLimit > 0 {
		limiter = NewBWLimiter(cfg.BWLimit)
	}
	xfer, err := NewTransferer(TransferConfig{
		BufferSize:    cfg.BufferSize,
		PreserveMode:  cfg.PreserveMode,
		PreserveTimes: cfg.PreserveTimes,
		Verify:        cfg.Verify,
		Limiter:       limiter,
	})
	if err != nil {
		return Result{Err: err, Fatal: true}
	}

	walker, err := ResolveTargets(cfg.Src, cfg.Dst, WalkOptions{Filter: cfg.Filter})
	if err != nil {
		return Result{Err: err, Fatal: true}
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	r := &runner{
		cfg:    cfg,
		walker: walker,
		oracle: oracle,
		policy: policy,
		xfer:   xfer,
		stats:  collector,
	}
	return r.run(ctx)
}

// runner carries the state of a single run.
type runner struct {
	cfg    Config
	walker *Walker
	oracle Oracle
	policy *OverwritePolicy
	xfer   *Transferer
	stats  *stats.Collector

	failures []*EntryError
}

func (r *runner) run(ctx context.Context) Result {
	src, dst := r.walker.Root()
	r.emit(event.Event{Type: event.RunStarted, SrcPath: src, DstPath: dst, DryRun: r.cfg.DryRun})

	var abort error
	root := true
	for abort == nil {
		if ctx.Err() != nil {
			abort = ErrInterrupted
			break
		}
		plan, ok := r.walker.Next()
		if !ok {
			break
		}

		out, err := r.handle(ctx, plan, root)
		root = false
		if err != nil {
			abort = err
			break
		}
		r.record(out)
	}

	r.stats.Finish()
	cleanupErr := r.xfer.Cleanup()
	r.emit(event.Event{Type: event.RunFinished, SrcPath: src, DstPath: dst, DryRun: r.cfg.DryRun})

	var errs []error
	if abort != nil {
		errs = append(errs, abort)
	}
	if len(r.failures) > 0 {
		errs = append(errs, &RunError{Failures: r.failures})
	}
	if cleanupErr != nil {
		errs = append(errs, cleanupErr)
	}

	return Result{
		Stats: r.stats.Snapshot(),
		Err:   errors.Join(errs...),
	}
}

// handle decides and performs the work for one plan. A non-nil error stops
// the run; per-entry failures are returned in the outcome instead.
func (r *runner) handle(ctx context.Context, plan Plan, root bool) (Outcome, error) {
	if plan.Err != nil {
		if plan.Kind == Directory {
			r.walker.Prune()
		}
		return failed(plan, plan.Err), nil
	}

	if plan.Kind == Directory {
		return r.handleDir(plan, root), nil
	}
	return r.handleFile(ctx, plan, root)
}

func (r *runner) handleDir(plan Plan, root bool) Outcome {
	kind, err := Classify(plan.Dst)
	if err != nil {
		r.walker.Prune()
		return failed(plan, err)
	}

	switch kind {
	case Directory:
		return Outcome{Plan: plan, Action: DirExisting}
	case Missing:
	default:
		r.walker.Prune()
		return failed(plan, fmt.Errorf("%w: %s is a %s", ErrKindMismatch, plan.Dst, kind))
	}

	if r.cfg.DryRun {
		return Outcome{Plan: plan, Action: DirCreated}
	}

	mkdir := os.Mkdir
	if root {
		mkdir = os.MkdirAll
	}
	if err := mkdir(plan.Dst, 0o755); err != nil {
		r.walker.Prune()
		return failed(plan, fmt.Errorf("create directory: %w", err))
	}
	return Outcome{Plan: plan, Action: DirCreated}
}

func (r *runner) handleFile(ctx context.Context, plan Plan, root bool) (Outcome, error) {
	kind, err := Classify(plan.Dst)
	if err != nil {
		return failed(plan, err), nil
	}

	action := Copied
	switch kind {
	case Missing:
	case File:
		same, err := r.oracle.Equivalent(ctx, plan.Src, plan.Dst)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ErrInterrupted
			}
			return failed(plan, fmt.Errorf("compare (%s): %w", r.oracle.Name(), err)), nil
		}
		if same {
			return Outcome{Plan: plan, Action: Skipped, Reason: event.IdenticalContent}, nil
		}

		decision, err := r.policy.Decide(ctx, plan.Dst)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ErrInterrupted
			}
			return Outcome{}, fmt.Errorf("confirm overwrite of %s: %w", plan.Dst, err)
		}
		if decision == Skip {
			return Outcome{Plan: plan, Action: Skipped, Reason: event.UserDeclined}, nil
		}
		action = Overwritten
	default:
		return failed(plan, fmt.Errorf("%w: %s is a %s", ErrKindMismatch, plan.Dst, kind)), nil
	}

	if r.cfg.DryRun {
		return Outcome{Plan: plan, Action: action, Bytes: plan.Size}, nil
	}

	if root {
		if err := os.MkdirAll(filepath.Dir(plan.Dst), 0o755); err != nil {
			return failed(plan, fmt.Errorf("create parent directory: %w", err)), nil
		}
	}

	n, err := r.xfer.Transfer(ctx, plan)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ErrInterrupted
		}
		return failed(plan, err), nil
	}
	return Outcome{Plan: plan, Action: action, Bytes: n}, nil
}

func failed(plan Plan, err error) Outcome {
	return Outcome{Plan: plan, Action: Failed, Err: err}
}

// record folds an outcome into the statistics and emits its event.
func (r *runner) record(out Outcome) {
	p := out.Plan
	ev := event.Event{
		Path:    p.Rel,
		SrcPath: p.Src,
		DstPath: p.Dst,
		Size:    p.Size,
		DryRun:  r.cfg.DryRun,
	}

	switch out.Action {
	case Copied:
		r.stats.AddFilesCopied(1, out.Bytes)
		ev.Type = event.FileCopied
		ev.Size = out.Bytes
	case Overwritten:
		r.stats.AddFilesCopied(1, out.Bytes)
		r.stats.AddFilesOverwritten(1)
		ev.Type = event.FileOverwritten
		ev.Size = out.Bytes
	case Skipped:
		r.stats.AddFilesSkipped(1, p.Size)
		if out.Reason == event.UserDeclined {
			r.stats.AddFilesDeclined(1)
		}
		ev.Type = event.FileSkipped
		ev.Reason = out.Reason
	case DirCreated:
		r.stats.AddDirsCreated(1)
		ev.Type = event.DirCreated
	case DirExisting:
		ev.Type = event.DirExists
	case Failed:
		r.stats.AddFilesFailed(1)
		r.failures = append(r.failures, &EntryError{Path: p.Src, Err: out.Err})
		ev.Type = event.FileFailed
		if p.Kind == Directory {
			ev.Type = event.DirFailed
		}
		ev.Error = out.Err
	}

	r.emit(ev)
}

func (r *runner) emit(ev event.Event) {
	if r.cfg.Events == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	r.cfg.Events <- ev
}
