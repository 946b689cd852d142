package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var validThemes = map[string]bool{
	"auto":    true,
	"dark":    true,
	"light":   true,
	"notty":   true,
	"ascii":   true,
	"dracula": true,
	"pink":    true,
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(newSetThemeCommand())
	cmd.AddCommand(newSetCatalogCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := yaml.Marshal(config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newSetThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-theme THEME",
		Short: "Set the markdown rendering theme (auto, dark, light, notty, ascii, dracula, pink)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := args[0]
			if !validThemes[theme] {
				return fmt.Errorf("unknown theme %q", theme)
			}

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			config.Rendering.Theme = theme
			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %q\n", theme)
			return nil
		},
	}
}

func newSetCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-catalog PATH",
		Short: "Use a catalog file instead of the built-in one (empty string resets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			config.Catalog = args[0]
			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if args[0] == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Using the built-in catalog")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Using catalog %s\n", args[0])
			}
			return nil
		},
	}
}
