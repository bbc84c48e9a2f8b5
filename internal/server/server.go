// Package server exposes a Session over the Model Context Protocol: the
// load_file and run_script tools, the data-exploration://notes resource and
// the explore-data prompt.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/itsmostafa/dataexplore/internal/session"
)

// Protocol names.
const (
	ToolLoadFile  = "load_file"
	ToolRunScript = "run_script"
	NotesURI      = "data-exploration://notes"
	PromptExplore = "explore-data"
	DefaultName   = "data-exploration-server"
)

const (
	notesMIMEType   = "text/plain"
	argFilePath     = "file_path"
	argTopic        = "topic"
	argSheetName    = "sheet_name"
	runResultPrefix = "print out result: "
)

// LoadFileArgs are the load_file arguments.
type LoadFileArgs struct {
	FilePath  string `json:"file_path" jsonschema:"absolute path to the CSV or XLSX file"`
	DFName    string `json:"df_name,omitempty" jsonschema:"table name; defaults to df_N"`
	SheetName string `json:"sheet_name,omitempty" jsonschema:"sheet to load from an XLSX file; defaults to the first sheet"`
}

// RunScriptArgs are the run_script arguments.
type RunScriptArgs struct {
	Script       string   `json:"script" jsonschema:"JavaScript source to run"`
	SaveToMemory []string `json:"save_to_memory,omitempty" jsonschema:"names bound by the script to keep as tables"`
}

// Options configures a Server.
type Options struct {
	// Name is advertised to clients. Empty means DefaultName.
	Name string

	// Version is advertised to clients.
	Version string

	Logger *slog.Logger
}

// Server serves one Session. Handlers are serialized; the Session is never
// entered by two requests at once.
type Server struct {
	mu      sync.Mutex
	session *session.Session
	logger  *slog.Logger
	mcp     *mcp.Server
}

// New creates a Server for sess.
func New(sess *session.Session, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		session: sess,
		logger:  opts.Logger,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, &mcp.ServerOptions{
		Logger: opts.Logger,
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolLoadFile,
		Description: loadFileDescription,
	}, s.loadFile)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolRunScript,
		Description: runScriptDescription,
	}, s.runScript)

	s.mcp.AddResource(&mcp.Resource{
		URI:         NotesURI,
		Name:        "Data Exploration Notes",
		Description: "Notes generated by the data exploration server",
		MIMEType:    notesMIMEType,
	}, s.readNotes)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        PromptExplore,
		Description: "A prompt to explore a dataset as a data scientist",
		Arguments: []*mcp.PromptArgument{
			{Name: argFilePath, Description: "The absolute path to the data file (CSV or XLSX)", Required: true},
			{Name: argTopic, Description: "The topic the data exploration needs to focus on"},
			{Name: argSheetName, Description: "The name of the sheet to load for XLSX files (optional)"},
		},
	}, s.explorePrompt)

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on t until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("serving", slog.String("session", s.session.ID()))
	return s.mcp.Run(ctx, t)
}

func (s *Server) loadFile(ctx context.Context, _ *mcp.CallToolRequest, args LoadFileArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, err := s.session.Load(ctx, session.LoadRequest{
		Path:  args.FilePath,
		Name:  args.DFName,
		Sheet: args.SheetName,
	})
	if err != nil {
		if errors.Is(err, session.ErrClosed) {
			return nil, nil, protocolError(err)
		}
		return errorResult("Error loading file: " + err.Error()), nil, nil
	}
	return textResult(fmt.Sprintf("Successfully loaded data into table '%s'", name)), nil, nil
}

func (s *Server) runScript(ctx context.Context, _ *mcp.CallToolRequest, args RunScriptArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.session.Run(ctx, session.RunRequest{
		Script: args.Script,
		Retain: args.SaveToMemory,
	})
	if err != nil {
		if errors.Is(err, session.ErrClosed) {
			return nil, nil, protocolError(err)
		}
		return errorResult("Error running script: " + err.Error()), nil, nil
	}
	return textResult(runResultPrefix + out), nil, nil
}

func (s *Server) readNotes(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req.Params.URI != NotesURI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	s.mu.Lock()
	notes := s.session.Notes()
	s.mu.Unlock()

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      NotesURI,
			MIMEType: notesMIMEType,
			Text:     notes,
		}},
	}, nil
}

func (s *Server) explorePrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	filePath, ok := args[argFilePath]
	if !ok {
		return nil, fmt.Errorf("Missing required argument: %s", argFilePath)
	}
	topic := args[argTopic]

	text, err := BuildExplorePrompt(ExploreArgs{
		FilePath:  filePath,
		Topic:     topic,
		SheetName: args[argSheetName],
	})
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: "Data exploration template for " + topic,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errorResult(msg string) *mcp.CallToolResult {
	res := textResult("Error: " + msg)
	res.IsError = true
	return res
}

// protocolError fails the request itself. Plain handler errors would be
// reported as tool results.
func protocolError(err error) error {
	return &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: err.Error()}
}
