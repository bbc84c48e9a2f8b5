package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itsmostafa/dataexplore/internal/audit"
	"github.com/itsmostafa/dataexplore/internal/session"
)

func TestFormatHeader(t *testing.T) {
	var buf bytes.Buffer
	FormatHeader(&buf, "0192-abc", "audit.db")
	assert.Contains(t, buf.String(), "0192-abc")
	assert.Contains(t, buf.String(), "audit.db")
}

func TestFormatLoad(t *testing.T) {
	var buf bytes.Buffer
	FormatLoad(&buf, "a.csv", "df_1", nil)
	FormatLoad(&buf, "b.txt", "", errors.New("unsupported"))

	out := buf.String()
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "df_1")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "unsupported")
}

func TestFormatResult(t *testing.T) {
	var buf bytes.Buffer
	FormatResult(&buf, "42\n", nil)
	assert.Contains(t, buf.String(), "OUTPUT")
	assert.Contains(t, buf.String(), "42\n")

	buf.Reset()
	FormatResult(&buf, "", errors.New("boom"))
	assert.Contains(t, buf.String(), "Error running script: boom")
}

func TestFormatTables(t *testing.T) {
	var buf bytes.Buffer
	FormatTables(&buf, nil)
	assert.Contains(t, buf.String(), "No tables")

	buf.Reset()
	FormatTables(&buf, []session.TableInfo{{Name: "df_1", Rows: 3, Columns: []string{"a", "b"}}})
	assert.Contains(t, buf.String(), "df_1")
	assert.Contains(t, buf.String(), "3 rows x 2 columns:")
	assert.Contains(t, buf.String(), "a, b")
}

func TestFormatEntries(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	FormatEntries(&buf, []audit.Entry{
		{Seq: 1, Time: at, Text: "Running script: \nprint(1)"},
		{Seq: 2, Time: at, Text: "ERROR: Error running script: x"},
	})

	out := buf.String()
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "2026-01-02 03:04:05")
	assert.Contains(t, out, "print(1)")
	assert.Contains(t, out, "ERROR: Error running script: x")
}

func TestFormatSessions(t *testing.T) {
	var buf bytes.Buffer
	FormatSessions(&buf, nil)
	assert.Contains(t, buf.String(), "No sessions")

	buf.Reset()
	FormatSessions(&buf, []string{"s1", "s2"})
	assert.Contains(t, buf.String(), "s1")
	assert.Contains(t, buf.String(), "s2")
}
