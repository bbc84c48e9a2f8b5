package cmd

import (
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/itsmostafa/dataexplore/internal/server"
	"github.com/itsmostafa/dataexplore/internal/session"
	"github.com/itsmostafa/dataexplore/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a session over MCP on stdio",
	Long: `Serve one data exploration session over the Model Context Protocol on
stdin/stdout. The session lives until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sess, err := session.New(cfg.Session(), session.WithLogger(logger))
		if err != nil {
			return err
		}
		defer sess.Close()

		if !version.IsRelease() {
			logger.Debug("development build", "version", version.String())
		}
		srv := server.New(sess, server.Options{
			Name:    cfg.ServerName,
			Version: version.Version,
			Logger:  logger,
		})
		return srv.Run(ctx, &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
