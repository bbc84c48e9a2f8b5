// Package audit records what a session has done as an append-only sequence
// of human-readable entries.
//
// The in-memory Log is authoritative. Sinks receive a copy of every entry
// as it is appended; a failing sink is logged and otherwise ignored.
package audit

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Entry is one immutable audit line.
type Entry struct {
	// Seq is the 1-based position of the entry in its log.
	Seq int

	// Time is when the entry was appended.
	Time time.Time

	// Text is the human-readable description of the event.
	Text string
}

// Sink receives every appended entry.
type Sink interface {
	Write(e Entry) error
}

// Log is an append-only, ordered list of entries.
type Log struct {
	entries []Entry
	sinks   []Sink
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithSink mirrors entries to s.
func WithSink(s Sink) Option {
	return func(l *Log) {
		if s != nil {
			l.sinks = append(l.sinks, s)
		}
	}
}

// WithLogger sets the logger used for sink failures and debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLog creates an empty Log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds an entry and forwards it to every sink.
func (l *Log) Append(text string) Entry {
	e := Entry{
		Seq:  len(l.entries) + 1,
		Time: l.now(),
		Text: text,
	}
	l.entries = append(l.entries, e)
	l.logger.Debug("audit entry", slog.Int("seq", e.Seq), slog.Int("bytes", len(text)))

	for _, s := range l.sinks {
		if err := s.Write(e); err != nil {
			l.logger.Warn("audit sink write failed", slog.Int("seq", e.Seq), slog.String("error", err.Error()))
		}
	}
	return e
}

// Entries returns a copy of all entries in append order.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Render joins the text of every entry with newlines, in append order.
func (l *Log) Render() string {
	texts := make([]string, len(l.entries))
	for i, e := range l.entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, "\n")
}
