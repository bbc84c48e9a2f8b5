package server

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates
var templateFS embed.FS

var explorePrompt = template.Must(template.ParseFS(templateFS, "templates/explore_data.tmpl"))

// Tool descriptions shown to clients.
var (
	loadFileDescription  = mustRead("templates/load_file.txt")
	runScriptDescription = mustRead("templates/run_script.txt")
)

func mustRead(name string) string {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(data))
}

// ExploreArgs parameterizes the explore-data prompt.
type ExploreArgs struct {
	FilePath  string
	Topic     string
	SheetName string
}

// BuildExplorePrompt renders the explore-data prompt, trimmed of leading
// and trailing whitespace.
func BuildExplorePrompt(args ExploreArgs) (string, error) {
	var buf bytes.Buffer
	if err := explorePrompt.Execute(&buf, args); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
