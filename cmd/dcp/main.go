package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dcp/internal/config"
	"github.com/bamsammich/dcp/internal/engine"
	"github.com/bamsammich/dcp/internal/event"
	"github.com/bamsammich/dcp/internal/stats"
	"github.com/bamsammich/dcp/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// streams are the terminal endpoints of one invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func run() int {
	cmd := newRootCmd(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	return execute(cmd)
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	return 2
}

func newRootCmd(s streams) *cobra.Command {
	opts := newOptions()

	rootCmd := &cobra.Command{
		Use:   "dcp [flags] SOURCE DESTINATION",
		Short: "Copy a file or directory tree with buffered I/O",
		Long: `dcp copies a file or a whole directory tree through a fixed-size buffer.
Files already identical at the destination are skipped; other existing files
are only replaced after confirmation, unless --overwrite is given.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion || opts.writeConfig {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(s.out, "dcp %s\n", version)
				return nil
			}
			return runCopy(cmd, s, opts, args)
		},
	}
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.err)

	opts.register(rootCmd.Flags())
	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: wires every flag into the engine
func runCopy(cmd *cobra.Command, s streams, opts *options, args []string) error {
	logger, closeLog, err := setupLogging(s.err, opts)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	if err := opts.applyConfigDefaults(cmd, cfg); err != nil {
		return fmt.Errorf("config %s: %w", config.Path(), err)
	}

	if opts.writeConfig {
		path := config.Path()
		if err := config.Write(path, opts.effectiveConfig()); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "wrote %s\n", path)
		return nil
	}

	bufSize, err := opts.bufferSize()
	if err != nil {
		return err
	}
	chain, err := opts.buildFilter()
	if err != nil {
		return err
	}

	errTTY := isTerminal(s.err)
	colored := ui.ColorEnabled(opts.color, errTTY)
	errs := ui.NewErrorPrinter(s.err, colored)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// With --log, events are teed through a goroutine that writes structured
	// records before forwarding to the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if logger != nil {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				if ev.Type != event.Flush {
					ui.LogEvent(context.Background(), logger, ev)
				}
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	outTTY := isTerminal(s.out)
	width := 0
	if f, ok := s.out.(*os.File); ok {
		width = ui.TermWidth(f)
	}
	presenter := ui.NewPresenter(ui.Config{
		Writer:    s.out,
		ErrWriter: s.err,
		Stats:     collector,
		IsTTY:     outTTY,
		Quiet:     opts.quiet,
		Verbose:   opts.verbose,
		Width:     width,
		Errors:    errs,
	})

	mode := engine.Prompt
	if opts.overwrite {
		mode = engine.Force
	}
	engineCfg := engine.Config{
		Src:           args[0],
		Dst:           args[1],
		BufferSize:    bufSize,
		Overwrite:     mode,
		DryRun:        opts.dryRun,
		PreserveMode:  opts.preserve,
		PreserveTimes: opts.preserve,
		Verify:        opts.verify,
		Compare:       opts.compare,
		Filter:        chain,
		BWLimit:       opts.bwLimit.n,
		Confirm:       flushFirst(events, ui.NewPrompter(s.in, s.err, colored)),
		Events:        events,
		Stats:         collector,
	}

	slog.Debug("starting copy",
		"src", engineCfg.Src,
		"dst", engineCfg.Dst,
		"buffer", engineCfg.BufferSize,
		"overwrite", mode,
		"dry_run", engineCfg.DryRun,
		"compare", engineCfg.Compare,
		"filter", chain.String(),
	)

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	result := engine.Run(ctx, engineCfg)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(s.err, "presenter: %v\n", presenterErr)
	}

	if !opts.quiet && !result.Fatal {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(s.out, summary)
		}
	}

	if result.Err != nil {
		slog.Debug("copy finished with errors", "error", result.Err)
		for _, e := range unreported(result) {
			errs.Error(e)
		}
	}

	if code := exitCode(result); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// setupLogging installs the default slog logger. With --log it also returns
// a logger writing only to the JSON file, used for per-event records.
func setupLogging(stderr io.Writer, opts *options) (*slog.Logger, func(), error) {
	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})

	if opts.logFile == "" {
		slog.SetDefault(slog.New(textHandler))
		return nil, func() {}, nil
	}

	lf, err := os.Create(opts.logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(ui.NewMultiHandler(textHandler, jsonHandler)))
	return slog.New(jsonHandler), func() { lf.Close() }, nil
}

// exitCode maps a result to the process exit status: 0 on success, 2 when
// the run was rejected up front, 1 for partial failures and interrupts.
func exitCode(res engine.Result) int {
	switch {
	case res.Err == nil:
		return 0
	case res.Fatal:
		return 2
	default:
		return 1
	}
}

// unreported returns the parts of the result error the presenter has not
// already printed. Per-entry failures are shown as they happen.
func unreported(res engine.Result) []error {
	if res.Err == nil {
		return nil
	}
	if res.Fatal {
		return []error{res.Err}
	}

	parts := []error{res.Err}
	if joined, ok := res.Err.(interface{ Unwrap() []error }); ok {
		if _, isRun := res.Err.(*engine.RunError); !isRun {
			parts = joined.Unwrap()
		}
	}

	var out []error
	for _, e := range parts {
		if _, ok := e.(*engine.RunError); ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// flushFirst asks c only after the presenter has displayed every event sent
// on events before the question, so file lines never land on the prompt line.
func flushFirst(events chan<- event.Event, c engine.Confirmer) engine.ConfirmFunc {
	return func(ctx context.Context, question string) (bool, error) {
		ack := make(chan struct{})
		select {
		case events <- event.Event{Type: event.Flush, Ack: ack}:
		case <-ctx.Done():
			return false, ctx.Err()
		}
		select {
		case <-ack:
		case <-ctx.Done():
			return false, ctx.Err()
		}
		return c.Confirm(ctx, question)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTTY(f)
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
