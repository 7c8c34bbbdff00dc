package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/chatrelay/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay server",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := server.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
			os.Exit(1)
		}
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
