// Package config loads dataexplore settings from defaults, an optional YAML
// file and DATAEXPLORE_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itsmostafa/dataexplore/internal/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DATAEXPLORE_"

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// ErrConfiguration is returned when settings are invalid.
var ErrConfiguration = errors.New("invalid configuration")

// Config holds dataexplore settings.
type Config struct {
	// ServerName is advertised to MCP clients.
	ServerName string `yaml:"server_name"`

	// MaxOutputChars caps the output returned by one script run (0 = unlimited).
	MaxOutputChars int `yaml:"max_output_chars"`

	// ScriptTimeout interrupts long-running scripts (0 = no timeout).
	ScriptTimeout time.Duration `yaml:"script_timeout"`

	// AuditDB mirrors the audit log into a SQLite file when set.
	AuditDB string `yaml:"audit_db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ChartDir is where relative chart paths are written.
	ChartDir string `yaml:"chart_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	defaults := session.DefaultConfig()
	return Config{
		ServerName:     "data-exploration-server",
		MaxOutputChars: defaults.MaxOutputChars,
		ScriptTimeout:  defaults.ScriptTimeout,
		LogLevel:       "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and then the environment.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return c, err
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile overlays the YAML file at path. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", ErrConfiguration, path, err)
	}
	return nil
}

// ApplyEnv overlays DATAEXPLORE_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var bad []string

	if v, ok := lookup(EnvPrefix + "SERVER_NAME"); ok {
		c.ServerName = v
	}
	if v, ok := lookup(EnvPrefix + "MAX_OUTPUT_CHARS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, EnvPrefix+"MAX_OUTPUT_CHARS")
		} else {
			c.MaxOutputChars = n
		}
	}
	if v, ok := lookup(EnvPrefix + "SCRIPT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			bad = append(bad, EnvPrefix+"SCRIPT_TIMEOUT")
		} else {
			c.ScriptTimeout = d
		}
	}
	if v, ok := lookup(EnvPrefix + "AUDIT_DB"); ok {
		c.AuditDB = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPrefix + "CHART_DIR"); ok {
		c.ChartDir = v
	}

	if len(bad) > 0 {
		return fmt.Errorf("%w: malformed environment: %s", ErrConfiguration, strings.Join(bad, ", "))
	}
	return nil
}

// Validate checks every field. Returns ErrConfiguration naming the bad
// fields.
func (c *Config) Validate() error {
	var bad []string

	if strings.TrimSpace(c.ServerName) == "" {
		bad = append(bad, "server_name")
	}
	if c.MaxOutputChars < 0 {
		bad = append(bad, "max_output_chars")
	}
	if c.ScriptTimeout < 0 {
		bad = append(bad, "script_timeout")
	}
	if _, err := c.Level(); err != nil {
		bad = append(bad, "log_level")
	}

	if len(bad) > 0 {
		return fmt.Errorf("%w: invalid fields: %s", ErrConfiguration, strings.Join(bad, ", "))
	}
	return nil
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Session returns the session settings.
func (c *Config) Session() session.Config {
	wd, _ := os.Getwd()
	return session.Config{
		MaxOutputChars: c.MaxOutputChars,
		ScriptTimeout:  c.ScriptTimeout,
		WorkDir:        wd,
		ChartDir:       c.ChartDir,
		AuditDB:        c.AuditDB,
	}
}
