// Package session holds the state of one data-exploration session: the
// tables loaded or retained so far, the default-name counter and the audit
// log, together with the two entry points that change them, Load and Run.
//
// A Session performs no locking. Callers must not invoke Load or Run
// concurrently, and a script must not trigger another Run on the same
// Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itsmostafa/dataexplore/internal/audit"
	"github.com/itsmostafa/dataexplore/internal/dataset"
	"github.com/itsmostafa/dataexplore/internal/loader"
	"github.com/itsmostafa/dataexplore/internal/script"
	"github.com/itsmostafa/dataexplore/internal/store"
)

// NoOutput is returned by Run when the script printed nothing.
const NoOutput = "No output"

// Config holds session settings.
type Config struct {
	// MaxOutputChars caps the captured output of one Run. Zero means
	// unlimited.
	MaxOutputChars int

	// ScriptTimeout interrupts a Run that takes longer. Zero disables it.
	ScriptTimeout time.Duration

	// WorkDir resolves relative paths used by scripts.
	WorkDir string

	// ChartDir resolves relative chart paths. Empty means WorkDir.
	ChartDir string

	// AuditDB, when set, is a SQLite file mirroring the audit log.
	AuditDB string
}

// DefaultConfig returns the default session settings.
func DefaultConfig() Config {
	engine := script.DefaultConfig()
	return Config{
		MaxOutputChars: engine.MaxOutputChars,
		ScriptTimeout:  engine.Timeout,
	}
}

// LoadRequest names a file to load.
type LoadRequest struct {
	// Path is the file to read; its suffix selects the format.
	Path string

	// Name is the table name. Empty means the next default name.
	Name string

	// Sheet selects a spreadsheet sheet. Empty means the first sheet.
	Sheet string
}

// RunRequest is a script to run.
type RunRequest struct {
	Script string

	// Retain lists names to write back into the session after the script
	// completes.
	Retain []string
}

// TableInfo summarizes a stored table.
type TableInfo struct {
	Name    string
	Rows    int
	Columns []string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithAuditSink mirrors every audit entry to sink.
func WithAuditSink(sink audit.Sink) Option {
	return func(s *Session) {
		s.sinks = append(s.sinks, sink)
	}
}

// WithClock sets the audit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is one data-exploration session.
type Session struct {
	id     string
	config Config
	logger *slog.Logger
	now    func() time.Time

	tables *store.Store
	namer  *store.Namer
	notes  *audit.Log
	engine *script.Engine

	sinks  []audit.Sink
	closer io.Closer
	closed bool
}

// New creates a Session. When config.AuditDB is set the audit log is also
// written to that SQLite file under the session ID.
func New(config Config, opts ...Option) (*Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	s := &Session{
		id:     id.String(),
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		tables: store.New(),
		namer:  &store.Namer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("session", s.id))

	if config.AuditDB != "" {
		sink, err := audit.OpenSQLite(config.AuditDB, s.id)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		s.sinks = append(s.sinks, sink)
		s.closer = sink
	}

	logOpts := []audit.Option{audit.WithLogger(s.logger), audit.WithClock(s.now)}
	for _, sink := range s.sinks {
		logOpts = append(logOpts, audit.WithSink(sink))
	}
	s.notes = audit.NewLog(logOpts...)

	s.engine = script.NewEngine(script.Config{
		MaxOutputChars: config.MaxOutputChars,
		Timeout:        config.ScriptTimeout,
		WorkDir:        config.WorkDir,
		ChartDir:       config.ChartDir,
	}, s.logger)

	s.logger.Debug("session created")
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Load reads req.Path into a table and stores it, returning the table name.
// The default-name counter advances on every call, even when req.Name is
// set or the load fails. On failure the store is unchanged and the error is
// a *LoadError.
func (s *Session) Load(ctx context.Context, req LoadRequest) (string, error) {
	if s.closed {
		return "", ErrClosed
	}

	name := s.namer.Next()
	if req.Name != "" {
		name = req.Name
	}

	res, err := loader.Load(ctx, req.Path, req.Sheet)
	if err != nil {
		lerr := &LoadError{
			Path: req.Path,
			Ext:  strings.ToLower(filepath.Ext(req.Path)),
			Err:  err,
		}
		s.notes.Append("ERROR: Error loading file: " + lerr.Error())
		s.logger.Warn("load failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		return "", lerr
	}

	s.tables.Put(name, res.Table)

	switch res.Format {
	case loader.FormatXLSX:
		sheet := req.Sheet
		if sheet == "" {
			sheet = "first"
		}
		s.notes.Append(fmt.Sprintf("Successfully loaded XLSX into table '%s' from '%s' (sheet: %s)", name, req.Path, sheet))
	default:
		s.notes.Append(fmt.Sprintf("Successfully loaded CSV into table '%s' from '%s'", name, req.Path))
	}

	s.logger.Info("table loaded",
		slog.String("table", name),
		slog.String("format", string(res.Format)),
		slog.Int("rows", res.Table.Len()),
		slog.Int("tables", s.tables.Len()),
	)
	return name, nil
}

// Run executes req.Script against the stored tables and returns its output,
// or NoOutput when it printed nothing. Only names listed in req.Retain that
// the script bound to a table are written back; names it never bound are
// skipped. On a fault nothing is written back and the error is an
// *ExecError.
func (s *Session) Run(ctx context.Context, req RunRequest) (string, error) {
	if s.closed {
		return "", ErrClosed
	}

	snapshot := s.tables.Snapshot()
	s.notes.Append("Running script: \n" + req.Script)

	res, err := s.engine.Execute(ctx, script.Request{
		Code:   req.Script,
		Tables: snapshot,
		Retain: req.Retain,
	})
	if err != nil {
		s.notes.Append("ERROR: Error running script: " + err.Error())
		s.logger.Warn("script failed", slog.String("error", err.Error()))

		var execErr *ExecError
		if !errors.As(err, &execErr) {
			execErr = &ExecError{Message: err.Error(), Err: err}
		}
		return "", execErr
	}

	exports := make(map[string]*dataset.Table, len(res.Exports))
	for _, export := range res.Exports {
		exports[export.Name] = export.Table
	}
	for _, name := range req.Retain {
		if t, ok := exports[name]; ok {
			s.notes.Append(fmt.Sprintf("Saving table '%s' to memory", name))
			s.tables.Put(name, t)
		} else if slices.Contains(res.Rejected, name) {
			s.notes.Append(fmt.Sprintf("Skipping '%s': not a table", name))
		}
	}

	output := res.Output
	if output == "" {
		output = NoOutput
	}
	s.notes.Append("Result: " + output)

	s.logger.Info("script completed",
		slog.Int("retained", len(res.Exports)),
		slog.Bool("truncated", res.Truncated),
		slog.Duration("duration", res.Duration),
	)
	return output, nil
}

// Notes returns the audit log, one entry per line.
func (s *Session) Notes() string {
	return s.notes.Render()
}

// Entries returns a copy of the audit entries.
func (s *Session) Entries() []audit.Entry {
	return s.notes.Entries()
}

// Tables lists the stored tables sorted by name.
func (s *Session) Tables() []TableInfo {
	names := s.tables.Names()
	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		t, _ := s.tables.Get(name)
		infos = append(infos, TableInfo{Name: name, Rows: t.Len(), Columns: t.Columns()})
	}
	return infos
}

// Close releases the audit database, if any. It is safe to call more than
// once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
