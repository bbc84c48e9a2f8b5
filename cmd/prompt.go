package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/dataexplore/internal/server"
)

var (
	promptFile  string
	promptTopic string
	promptSheet string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the explore-data prompt",
	Long:  `Print the explore-data prompt served to MCP clients, filled in for a file and topic.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := server.BuildExplorePrompt(server.ExploreArgs{
			FilePath:  promptFile,
			Topic:     promptTopic,
			SheetName: promptSheet,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	promptCmd.Flags().StringVarP(&promptFile, "file", "f", "", "Absolute path to the data file (CSV or XLSX)")
	promptCmd.Flags().StringVarP(&promptTopic, "topic", "t", "", "Topic the exploration should focus on")
	promptCmd.Flags().StringVar(&promptSheet, "sheet", "", "Sheet to load for XLSX files")
	_ = promptCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(promptCmd)
}
