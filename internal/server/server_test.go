package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/dataexplore/internal/session"
)

func connect(t *testing.T) (*mcp.ClientSession, *session.Session) {
	t.Helper()
	ctx := context.Background()

	sess, err := session.New(session.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	srv := New(sess, Options{Version: "test"})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs, sess
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestBuildExplorePrompt_Golden(t *testing.T) {
	text, err := BuildExplorePrompt(ExploreArgs{
		FilePath:  "/data/sales.xlsx",
		Topic:     "regional revenue",
		SheetName: "Q1",
	})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(text), text)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explore_data", []byte(text))
}

func TestListing(t *testing.T) {
	cs, _ := connect(t)
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolLoadFile, ToolRunScript}, names)

	resources, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, resources.Resources, 1)
	assert.Equal(t, NotesURI, resources.Resources[0].URI)
	assert.Equal(t, "text/plain", resources.Resources[0].MIMEType)

	prompts, err := cs.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, PromptExplore, prompts.Prompts[0].Name)
	require.Len(t, prompts.Prompts[0].Arguments, 3)
	assert.True(t, prompts.Prompts[0].Arguments[0].Required)
}

func TestLoadAndRun(t *testing.T) {
	cs, sess := connect(t)
	path := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("city,n\noslo,3\nrome,5\n"), 0644))

	text, isErr := callTool(t, cs, ToolLoadFile, map[string]any{"file_path": path})
	assert.False(t, isErr)
	assert.Equal(t, "Successfully loaded data into table 'df_1'", text)

	text, isErr = callTool(t, cs, ToolLoadFile, map[string]any{"file_path": path, "df_name": "cities"})
	assert.False(t, isErr)
	assert.Equal(t, "Successfully loaded data into table 'cities'", text)

	text, isErr = callTool(t, cs, ToolRunScript, map[string]any{
		"script":         `big = df_1.filter(r => r.n > 4); print(big.length)`,
		"save_to_memory": []string{"big"},
	})
	assert.False(t, isErr)
	assert.Equal(t, "print out result: 1\n", text)

	text, isErr = callTool(t, cs, ToolRunScript, map[string]any{"script": `var x = 1`})
	assert.False(t, isErr)
	assert.Equal(t, "print out result: No output", text)

	var names []string
	for _, info := range sess.Tables() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"big", "cities", "df_1"}, names)
}

func TestToolErrors(t *testing.T) {
	cs, _ := connect(t)

	text, isErr := callTool(t, cs, ToolLoadFile, map[string]any{"file_path": "/tmp/data.parquet"})
	assert.True(t, isErr)
	assert.Equal(t, "Error: Error loading file: Unsupported file type: .parquet. Only .csv and .xlsx are supported.", text)

	text, isErr = callTool(t, cs, ToolRunScript, map[string]any{"script": `throw new Error("boom")`})
	assert.True(t, isErr)
	assert.True(t, strings.HasPrefix(text, "Error: Error running script: "))
	assert.Contains(t, text, "boom")
}

func TestClosedSessionFailsRequests(t *testing.T) {
	cs, sess := connect(t)
	require.NoError(t, sess.Close())
	ctx := context.Background()

	_, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolLoadFile,
		Arguments: map[string]any{"file_path": "/tmp/a.csv"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), session.ErrClosed.Error())

	_, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolRunScript,
		Arguments: map[string]any{"script": `print(1)`},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), session.ErrClosed.Error())
}

func TestReadNotes(t *testing.T) {
	cs, _ := connect(t)
	ctx := context.Background()

	callTool(t, cs, ToolRunScript, map[string]any{"script": `print("hi")`})

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: NotesURI})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "Running script: \nprint(\"hi\")\nResult: hi\n", res.Contents[0].Text)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)

	_, err = cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "data-exploration://other"})
	assert.Error(t, err)
}

func TestExplorePrompt(t *testing.T) {
	cs, _ := connect(t)
	ctx := context.Background()

	res, err := cs.GetPrompt(ctx, &mcp.GetPromptParams{
		Name: PromptExplore,
		Arguments: map[string]string{
			"file_path":  "/data/sales.xlsx",
			"topic":      "regional revenue",
			"sheet_name": "Q1",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Data exploration template for regional revenue", res.Description)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.Role("user"), res.Messages[0].Role)

	want, err := BuildExplorePrompt(ExploreArgs{FilePath: "/data/sales.xlsx", Topic: "regional revenue", SheetName: "Q1"})
	require.NoError(t, err)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, want, text.Text)

	_, err = cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: PromptExplore, Arguments: map[string]string{"topic": "x"}})
	assert.Error(t, err)
}
