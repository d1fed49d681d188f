/*
main.go - hrops entry point

PURPOSE:
  Command-line front end for the division's HR operations.

COMMANDS:
  serve                        HTTP API + notification worker + scheduler
  import attendance FILE       Assign attendance points from a workbook
  import safety FILE           Assign safety points from a workbook
  import drivers FILE          Hire drivers from a roster workbook
  remind                       Run the reminder sweep once
  reset sick|floating          Run a balance reset once

GLOBAL FLAGS:
  --config     YAML config file (default: $HROPS_CONFIG)
  --env-file   .env file (default: .env, skipped when missing)
  --db         SQLite database path, overrides the config
  --log-level  debug|info|warn|error, overrides the config

EXAMPLES:
  hrops serve --config /etc/hrops.yaml
  hrops import attendance points.xlsx --actor 77
  hrops remind --as-of 2024-06-03

SEE ALSO:
  - config/config.go: Configuration layers
  - app.go: Dependency wiring shared by every command
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/division-ops/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var globalFlags struct {
	configPath string
	envFile    string
	dbPath     string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "hrops",
	Short: "Progressive discipline and time-off operations for the transportation division",
	Long: `hrops tracks attendance and safety points, issues the counseling they
call for, manages holds, settlements and time-off requests, and reminds
supervisors about unsigned documents.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&globalFlags.configPath, "config", os.Getenv("HROPS_CONFIG"), "YAML config file")
	f.StringVar(&globalFlags.envFile, "env-file", ".env", "dotenv file loaded before HROPS_* variables")
	f.StringVar(&globalFlags.dbPath, "db", "", "SQLite database path (overrides config)")
	f.StringVar(&globalFlags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.Version = version
}

// loadConfig applies the flag layer on top of config.Load.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalFlags.configPath, globalFlags.envFile)
	if err != nil {
		return nil, err
	}
	if globalFlags.dbPath != "" {
		cfg.Database.Path = globalFlags.dbPath
	}
	if globalFlags.logLevel != "" {
		cfg.Log.Level = globalFlags.logLevel
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
