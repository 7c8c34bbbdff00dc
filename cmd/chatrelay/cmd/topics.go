package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nfrund/chatrelay/internal/topics"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the pub/sub topics the relay registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := topics.NewRegistry()
		if err := topics.RegisterSessionTopics(reg); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOPIC\tDESCRIPTION\tEXAMPLE")
		for _, t := range reg.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name(), t.Description(), t.Example())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
