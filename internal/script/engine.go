// Package script runs caller-supplied JavaScript against a namespace of
// tables and supporting libraries.
//
// Each Execute call is an isolated interpreter boundary: a fresh goja
// runtime is seeded from the request's tables plus the fixed libraries, the
// script runs with its output captured into a per-call sink, and only the
// names listed in Retain are read back out of the post-execution namespace.
// Nothing else survives the call.
package script

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// Library binding names. A table stored under one of these names is not
// bound, so scripts always see the library.
const (
	BindPrint   = "print"
	BindConsole = "console"
	BindTables  = "tables"
	BindStats   = "stats"
	BindChart   = "chart"
	BindFS      = "fs"
)

// Libraries returns the reserved library binding names.
func Libraries() []string {
	return []string{BindPrint, BindConsole, BindTables, BindStats, BindChart, BindFS}
}

// Config holds execution limits.
type Config struct {
	// MaxOutputChars caps captured output in characters. Zero means
	// unlimited.
	MaxOutputChars int

	// Timeout interrupts a script that runs longer. Zero disables it.
	Timeout time.Duration

	// WorkDir resolves relative paths passed to fs and chart. Empty means
	// the process working directory.
	WorkDir string

	// ChartDir resolves relative chart output paths. Empty means WorkDir.
	ChartDir string
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxOutputChars: 20000,
		Timeout:        120 * time.Second,
	}
}

// Request is one script execution.
type Request struct {
	// Code is the script body.
	Code string

	// Tables seeds the namespace; each table is bound under its key.
	Tables map[string]*dataset.Table

	// Retain lists names to read back from the namespace after the script
	// completes.
	Retain []string
}

// Export is a retained table.
type Export struct {
	Name  string
	Table *dataset.Table
}

// Result is the outcome of a successful execution.
type Result struct {
	// Output is everything the script printed.
	Output string

	// Truncated reports whether Output was cut at MaxOutputChars.
	Truncated bool

	// Exports holds the retained names that resolved to tables, in Retain
	// order.
	Exports []Export

	// Rejected holds retained names that were bound to something other
	// than a table. Names the script never bound appear in neither list.
	Rejected []string

	// Duration is the wall time of the execution.
	Duration time.Duration
}

// Engine executes scripts. It holds no state between calls.
type Engine struct {
	config Config
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil logger discards log output.
func NewEngine(config Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{config: config, logger: logger}
}

// Execute runs req.Code. Any fault raised by the script, including a panic
// inside a library binding or an interrupt, is returned as an *ExecError.
func (e *Engine) Execute(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()

	out, release := acquireCapture(e.config.MaxOutputChars)
	defer release()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("script panicked", slog.Any("panic", r))
			res, err = nil, fromPanic(r)
		}
	}()

	vm := goja.New()

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	disarm := armInterrupt(ctx, vm)
	defer disarm()

	ns := newNamespace(vm, out, e.config)
	if skipped := ns.bindTables(req.Tables); len(skipped) > 0 {
		e.logger.Warn("tables not bound", slog.Any("names", skipped))
	}
	if err := ns.bindLibraries(); err != nil {
		return nil, &ExecError{Message: "failed to bind libraries: " + err.Error(), Err: err}
	}

	if _, err := vm.RunString(req.Code); err != nil {
		e.logger.Debug("script failed", slog.String("error", err.Error()))
		return nil, toExecError(err)
	}

	// The script body has completed; a deadline passing from here on must
	// not drop retained names.
	disarm()

	res = &Result{
		Output:    out.String(),
		Truncated: out.truncated,
	}
	for _, name := range req.Retain {
		v, ok, err := ns.lookup(name)
		if err != nil {
			return nil, toExecError(err)
		}
		if !ok {
			continue
		}
		t, ok := ns.asTable(v)
		if !ok {
			res.Rejected = append(res.Rejected, name)
			continue
		}
		res.Exports = append(res.Exports, Export{Name: name, Table: t})
	}
	res.Duration = time.Since(start)

	e.logger.Debug("script executed",
		slog.Int("output_bytes", len(res.Output)),
		slog.Int("exports", len(res.Exports)),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

// armInterrupt interrupts vm when ctx ends. The returned function stops
// watching ctx and clears any interrupt that was delivered; it is safe to
// call more than once.
func armInterrupt(ctx context.Context, vm *goja.Runtime) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
			vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			vm.ClearInterrupt()
		})
	}
}
