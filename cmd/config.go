package cmd

import (
	"fmt"
	"os"

	"github.com/jfmyers9/albumlog/internal/config"
	"github.com/spf13/cobra"
)

var (
	initProject string
	initName    string
	initSink    string
	initDir     string
	initSQLite  string
	initForce   bool
)

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write a configuration file with the given project and sink settings.

Database and object store credentials are never written; set them in a
.env file or as ALBUMLOG_* environment variables, for example
ALBUMLOG_DATABASE_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigFile())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().StringVar(&initProject, "project", "", "Project slug")
	configInitCmd.Flags().StringVar(&initName, "name", "", "Project name (used when --project is empty)")
	configInitCmd.Flags().StringVar(&initSink, "sink", "", "Sink kind (sqlite, mysql, jsonl, s3)")
	configInitCmd.Flags().StringVar(&initDir, "dir", "", "Output directory for the jsonl sink")
	configInitCmd.Flags().StringVar(&initSQLite, "sqlite-path", "", "Database file for the sqlite sink")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GetConfigFile()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	// Start from the current settings so defaults and env are kept
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if initProject != "" {
		cfg.Project = initProject
	}
	if initName != "" {
		cfg.ProjectName = initName
	}
	if initSink != "" {
		cfg.Sink.Kind = initSink
	}
	if initDir != "" {
		cfg.Sink.Dir = initDir
	}
	if initSQLite != "" {
		cfg.Sink.SQLitePath = initSQLite
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
