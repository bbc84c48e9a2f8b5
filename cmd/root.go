package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsmostafa/dataexplore/internal/config"
	"github.com/itsmostafa/dataexplore/internal/version"
)

var (
	configFile     string
	verbose        bool
	maxOutputChars int
	scriptTimeout  time.Duration
	auditDB        string
	chartDir       string
	logLevel       string

	// cfg and logger are set before any subcommand runs
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dataexplore",
	Short: "Session-scoped data exploration engine",
	Long: `dataexplore loads CSV and XLSX files into named tables and runs JavaScript
analysis scripts against them, keeping an audit log of everything the session did.

It is served to agents over the Model Context Protocol (dataexplore serve) or
driven locally from the shell (dataexplore exec).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c
		logger = newLogger(c)
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("dataexplore %s\n", version.String()))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML config file (env: DATAEXPLORE_CONFIG)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	flags.IntVar(&maxOutputChars, "max-output", 0, "Maximum characters of script output (0 = unlimited)")
	flags.DurationVar(&scriptTimeout, "timeout", 0, "Script timeout, e.g. 30s (0 = none)")
	flags.StringVar(&auditDB, "audit-db", "", "SQLite file mirroring the audit log")
	flags.StringVar(&chartDir, "chart-dir", "", "Directory for relative chart paths")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig layers defaults, the config file, the environment and finally
// any flags set on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	c, err := config.Load(path)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-output") {
		c.MaxOutputChars = maxOutputChars
	}
	if flags.Changed("timeout") {
		c.ScriptTimeout = scriptTimeout
	}
	if flags.Changed("audit-db") {
		c.AuditDB = auditDB
	}
	if flags.Changed("chart-dir") {
		c.ChartDir = chartDir
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if verbose {
		c.LogLevel = "debug"
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// newLogger writes to stderr; stdout carries the MCP stream.
func newLogger(c config.Config) *slog.Logger {
	level, _ := c.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
