/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "albumlog",
	Short: "1001 Albums Generator exporter",
	Long: `albumlog exports a 1001 Albums Generator project.

Each run fetches the project, normalizes the current album and the rated
listening history, and replaces the stored copy in the configured sink
(JSON-lines files, SQLite, MySQL, or an S3 compatible bucket).

Schedule 'albumlog run' with cron or a systemd timer to keep the copy
up to date, and use 'albumlog show' to print the listening dashboard.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
