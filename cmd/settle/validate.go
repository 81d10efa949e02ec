package main

import (
	"fmt"

	"github.com/aretw0/settle/pkg/scenario"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario>",
	Short: "Check a scenario file without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scenario %q is valid: %d subscribers, %d steps ✅\n",
			doc.Name, len(doc.Subscribers), len(doc.Steps))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
