package audit

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	entries []Entry
	err     error
}

func (s *recordingSink) Write(e Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func fixedClock() func() time.Time {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestLog_AppendOrdersEntries(t *testing.T) {
	l := NewLog(WithClock(fixedClock()))

	first := l.Append("one")
	second := l.Append("two")

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.True(t, second.Time.After(first.Time))
	assert.Equal(t, 2, l.Len())
}

func TestLog_Render(t *testing.T) {
	l := NewLog()
	assert.Equal(t, "", l.Render())

	l.Append("one")
	l.Append("two\nlines")
	l.Append("three")

	assert.Equal(t, "one\ntwo\nlines\nthree", l.Render())
}

func TestLog_EntriesIsACopy(t *testing.T) {
	l := NewLog()
	l.Append("one")

	got := l.Entries()
	got[0].Text = "changed"

	assert.Equal(t, "one", l.Entries()[0].Text)
}

func TestLog_ForwardsToSinks(t *testing.T) {
	sink := &recordingSink{}
	l := NewLog(WithSink(sink))

	l.Append("one")
	l.Append("two")

	require.Len(t, sink.entries, 2)
	assert.Equal(t, "two", sink.entries[1].Text)
}

func TestLog_SinkFailureDoesNotLoseEntry(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	l := NewLog(WithSink(sink))

	l.Append("one")

	assert.Equal(t, "one", l.Render())
	assert.Len(t, sink.entries, 1)
}

func TestSQLiteSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	sink, err := OpenSQLite(path, "session-a")
	require.NoError(t, err)

	l := NewLog(WithSink(sink), WithClock(fixedClock()))
	l.Append("Running script: \nprint(1)")
	l.Append("Result: 1\n")
	require.NoError(t, sink.Close())

	entries, err := ReadEntries(context.Background(), path, "session-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, "Running script: \nprint(1)", entries[0].Text)
	assert.True(t, l.Entries()[1].Time.Equal(entries[1].Time))

	other, err := ReadEntries(context.Background(), path, "session-b")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteSink_DuplicateSeqFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := OpenSQLite(path, "s")
	require.NoError(t, err)
	defer sink.Close()

	e := Entry{Seq: 1, Time: time.Now(), Text: "x"}
	require.NoError(t, sink.Write(e))
	assert.Error(t, sink.Write(e))
}

func TestSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	clock := fixedClock()

	for _, id := range []string{"older", "newer"} {
		sink, err := OpenSQLite(path, id)
		require.NoError(t, err)
		NewLog(WithSink(sink), WithClock(clock)).Append("entry for " + id)
		require.NoError(t, sink.Close())
	}

	ids, err := Sessions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "older"}, ids)
}

func TestSessions_OrdersBySubsecondTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	writes := []struct {
		id string
		at time.Time
	}{
		{"whole-second", base},
		{"half-second", base.Add(500 * time.Millisecond)},
		{"earlier", base.Add(-time.Second)},
	}
	for _, w := range writes {
		sink, err := OpenSQLite(path, w.id)
		require.NoError(t, err)
		require.NoError(t, sink.Write(Entry{Seq: 1, Time: w.at, Text: w.id}))
		require.NoError(t, sink.Close())
	}

	ids, err := Sessions(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"half-second", "whole-second", "earlier"}, ids)

	entries, err := ReadEntries(context.Background(), path, "half-second")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Time.Equal(base.Add(500*time.Millisecond)))
}

func TestReaders_DoNotCreateMissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	_, err := Sessions(context.Background(), path)
	assert.Error(t, err)
	_, err = ReadEntries(context.Background(), path, "s")
	assert.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
