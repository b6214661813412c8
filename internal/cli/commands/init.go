package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/framebench/internal/cli/config"
)

const configFileName = "framebench.yaml"

// scaffold is the config file written by init, with defaults filled in.
type scaffold struct {
	Engine   string `yaml:"engine"`
	Database string `yaml:"database"`
	History  string `yaml:"history"`
	Rows     int    `yaml:"rows"`
	Cols     int    `yaml:"cols"`
	Bins     int    `yaml:"bins"`
	Seed     uint64 `yaml:"seed"`
	Output   string `yaml:"output"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a framebench.yaml with the default configuration",
		Example: `  # Scaffold a config in the current directory
  framebench init

  # Overwrite an existing config
  framebench init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(configFileName); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
				}
			}

			body, err := yaml.Marshal(scaffold{
				Engine:   config.DefaultEngine,
				Database: config.DefaultDatabase,
				History:  config.DefaultHistory,
				Rows:     config.DefaultRows,
				Cols:     config.DefaultCols,
				Bins:     config.DefaultBins,
				Seed:     config.DefaultSeed,
				Output:   config.DefaultOutput,
			})
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}

			content := append([]byte("# framebench configuration\n# Values may be overridden by FRAMEBENCH_* env vars and command-line flags.\n"), body...)
			if err := os.WriteFile(configFileName, content, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configFileName, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configFileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	return cmd
}
