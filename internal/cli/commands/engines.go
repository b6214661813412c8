package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/pkg/engine"
)

// NewEnginesCommand creates the engines command.
func NewEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the available tabular engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			if cfg.OutputFormat == "json" {
				return renderJSON(cmd.OutOrStdout(), engine.ListEngines())
			}
			for _, name := range engine.ListEngines() {
				marker := " "
				if name == cfg.Engine {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
}
