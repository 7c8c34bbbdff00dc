package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: "Real-time chat relay",
	Long: `chatrelay is a presence/broadcast relay that fans out chat messages
and typing-status notifications among connected participants. It keeps no
history: everything is process-resident and scoped to open connections.

Available commands:
  serve    Start the relay listening on the configured port
  topics   List the pub/sub topics the relay registers

Use "chatrelay [command] --help" for more information about a specific command.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
