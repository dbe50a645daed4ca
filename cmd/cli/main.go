package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host        string
	playerID    string
	permissions string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "courtside",
	Short: "A CLI to interact with the courtside server",
	Long: `A command-line interface for enrolling players, building the
tournament schedule and publishing it through the courtside API.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&playerID, "as", "", "Player id to act as (sent as X-Player-ID)")
	rootCmd.PersistentFlags().StringVar(&permissions, "permissions", "", "Comma separated permissions (sent as X-Permissions)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Ask the server not to persist or notify")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
