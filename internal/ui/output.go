// Package ui renders exec and audit output for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/itsmostafa/dataexplore/internal/audit"
	"github.com/itsmostafa/dataexplore/internal/session"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for summary boxes
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	// headerBoxStyle for the session header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	// bannerStyle for section banners
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("33")).
			Padding(0, 2)
)

// FormatHeader renders the session header.
func FormatHeader(w io.Writer, sessionID string, auditDB string) {
	content := fmt.Sprintf("%s %s", dimStyle.Render("Session:"), titleStyle.Render(sessionID))
	if auditDB != "" {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Audit DB:"), auditDB)
	}
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatLoad renders the outcome of one load.
func FormatLoad(w io.Writer, path, name string, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", errorStyle.Render("ERROR"), path, dimStyle.Render(err.Error()))
		return
	}
	fmt.Fprintf(w, "%s %s %s %s\n", successStyle.Render("OK"), path, dimStyle.Render("->"), titleStyle.Render(name))
}

// FormatBanner renders a section banner.
func FormatBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(" "+strings.ToUpper(title)+" "))
	fmt.Fprintln(w)
}

// FormatResult renders the output of a script run, or its error.
func FormatResult(w io.Writer, output string, err error) {
	FormatBanner(w, "output")
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render("Error running script: "+err.Error()))
		return
	}
	fmt.Fprintln(w, strings.TrimRight(output, "\n"))
}

// FormatTables renders the stored tables in a summary box.
func FormatTables(w io.Writer, infos []session.TableInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tables"))
		return
	}
	lines := []string{titleStyle.Render("Tables")}
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			info.Name,
			dimStyle.Render(fmt.Sprintf("%d rows x %d columns:", info.Rows, len(info.Columns))),
			strings.Join(info.Columns, ", "),
		))
	}
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
}

// FormatEntries renders audit entries with their sequence numbers and times.
func FormatEntries(w io.Writer, entries []audit.Entry) {
	FormatBanner(w, "notes")
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s\n%s\n",
			dimStyle.Render(fmt.Sprintf("#%d", e.Seq)),
			dimStyle.Render(e.Time.Format("2006-01-02 15:04:05")),
			styleEntry(e.Text),
		)
	}
}

func styleEntry(text string) string {
	if strings.HasPrefix(text, "ERROR:") {
		return errorStyle.Render(text)
	}
	return text
}

// FormatSessions renders a list of session IDs.
func FormatSessions(w io.Writer, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No sessions"))
		return
	}
	content := titleStyle.Render("Sessions") + "\n" + strings.Join(ids, "\n")
	fmt.Fprintln(w, boxStyle.Render(content))
}
