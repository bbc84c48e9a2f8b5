package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/dataexplore/internal/audit"
	"github.com/itsmostafa/dataexplore/internal/ui"
)

var auditCmd = &cobra.Command{
	Use:   "audit [session-id]",
	Short: "Show audit logs stored in the audit database",
	Long: `Without arguments, list the sessions recorded in the audit database, most
recent first. With a session ID, print that session's audit log.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AuditDB == "" {
			return errors.New("no audit database configured (use --audit-db or audit_db)")
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			ids, err := audit.Sessions(cmd.Context(), cfg.AuditDB)
			if err != nil {
				return err
			}
			ui.FormatSessions(out, ids)
			return nil
		}

		entries, err := audit.ReadEntries(cmd.Context(), cfg.AuditDB, args[0])
		if err != nil {
			return err
		}
		ui.FormatEntries(out, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
