package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playbookctl",
	Short: "Operate the playbook catalog database",
	Long: `Administrative commands for the playbook catalog.

Configuration is read from the same environment variables as the API server
(DB_DRIVER, DB_DSN, POSTGRES_HOST, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, dbcheckCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
