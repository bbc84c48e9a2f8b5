package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/dataexplore/internal/session"
	"github.com/itsmostafa/dataexplore/internal/ui"
)

var (
	execLoads  []string
	execRetain []string
	execEval   string
	execNotes  bool
	execTables bool
)

var execCmd = &cobra.Command{
	Use:   "exec [script-file]",
	Short: "Load files and run one script in a fresh session",
	Long: `Load data files into a fresh session, run a JavaScript script against them and
print its output.

Files are given with --load PATH[#SHEET][=NAME]. The script comes from --eval or
from a file argument; "-" reads it from stdin.`,
	Example: `  dataexplore exec --load sales.csv -e 'print(df_1.describe())'
  dataexplore exec --load book.xlsx#Q1=q1 analysis.js --retain top --notes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := readScript(cmd, args)
		if err != nil {
			return err
		}

		sess, err := session.New(cfg.Session(), session.WithLogger(logger))
		if err != nil {
			return err
		}
		defer sess.Close()

		out := cmd.OutOrStdout()
		ctx := cmd.Context()
		ui.FormatHeader(out, sess.ID(), cfg.AuditDB)

		for _, spec := range execLoads {
			req, err := parseLoadSpec(spec)
			if err != nil {
				return err
			}
			name, err := sess.Load(ctx, req)
			ui.FormatLoad(out, req.Path, name, err)
		}

		var runErr error
		if script != "" {
			var result string
			result, runErr = sess.Run(ctx, session.RunRequest{Script: script, Retain: execRetain})
			ui.FormatResult(out, result, runErr)
		}

		if execTables {
			fmt.Fprintln(out)
			ui.FormatTables(out, sess.Tables())
		}
		if execNotes {
			ui.FormatEntries(out, sess.Entries())
		}
		return runErr
	},
}

func init() {
	flags := execCmd.Flags()
	flags.StringArrayVarP(&execLoads, "load", "l", nil, "File to load as PATH[#SHEET][=NAME] (repeatable)")
	flags.StringSliceVarP(&execRetain, "retain", "r", nil, "Names bound by the script to keep as tables")
	flags.StringVarP(&execEval, "eval", "e", "", "Script source to run")
	flags.BoolVar(&execNotes, "notes", false, "Print the audit log after running")
	flags.BoolVar(&execTables, "tables", false, "Print the stored tables after running")
	rootCmd.AddCommand(execCmd)
}

func readScript(cmd *cobra.Command, args []string) (string, error) {
	if execEval != "" && len(args) > 0 {
		return "", fmt.Errorf("use either --eval or a script file, not both")
	}
	if execEval != "" {
		return execEval, nil
	}
	if len(args) == 0 {
		return "", nil
	}
	if args[0] == "-" {
		var b bytes.Buffer
		if _, err := b.ReadFrom(cmd.InOrStdin()); err != nil {
			return "", fmt.Errorf("reading script from stdin: %w", err)
		}
		return b.String(), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}

// parseLoadSpec splits PATH[#SHEET][=NAME]. The name is taken after the last
// '=' and the sheet after the last '#' that precedes it.
func parseLoadSpec(spec string) (session.LoadRequest, error) {
	var req session.LoadRequest
	rest := spec
	if i := strings.LastIndex(rest, "="); i >= 0 {
		req.Name = rest[i+1:]
		rest = rest[:i]
		if req.Name == "" {
			return req, fmt.Errorf("load %q: empty table name", spec)
		}
	}
	if i := strings.LastIndex(rest, "#"); i >= 0 {
		req.Sheet = rest[i+1:]
		rest = rest[:i]
		if req.Sheet == "" {
			return req, fmt.Errorf("load %q: empty sheet name", spec)
		}
	}
	if rest == "" {
		return req, fmt.Errorf("load %q: missing path", spec)
	}
	req.Path = rest
	return req, nil
}
