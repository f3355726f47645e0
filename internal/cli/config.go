package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify casemover configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			maxOps := "unlimited"
			if cfg.Move.MaxOperations > 0 {
				maxOps = fmt.Sprintf("%d", cfg.Move.MaxOperations)
			}

			fmt.Printf("On Dest Exists: %s\n", cfg.Move.OnDestExists)
			fmt.Printf("Duplicates Action: %s\n", cfg.Move.DuplicatesAction)
			fmt.Printf("Matching Strategy: %s\n", cfg.Move.Strategy)
			fmt.Printf("Case Sensitive: %t\n", cfg.Move.CaseSensitive)
			fmt.Printf("Max Operations: %s\n", maxOps)
			fmt.Printf("Exclude Patterns: %v\n", cfg.Exclude)
			fmt.Printf("Buffer Size: %d\n", cfg.Performance.BufferSize)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Progress Bar: %t\n", cfg.Output.Progress)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
			fmt.Printf("History Enabled: %t\n", cfg.History.Enabled)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}
}
