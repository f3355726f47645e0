package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/internal/tui"
)

// NewTUICommand creates the tui command
func NewTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run migrations interactively",
		Long: `Open the interactive terminal interface. The run is described in a
form, executed with live progress and summarized afterwards. Policies
not shown in the form come from the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return tui.Run(cfg)
		},
	}
}
