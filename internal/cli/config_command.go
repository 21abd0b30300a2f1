package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// ErrConfigExists is returned by config init when it would overwrite a file
var ErrConfigExists = errors.New("config file already exists")

func newConfigCommand(c *CLI) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConfigShow(cmd.OutOrStdout())
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long:  "Write the effective configuration, including any flag and environment overrides, to --config or to the user config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			force, _ := cmd.Flags().GetBool("force")
			return c.runConfigInit(cmd.OutOrStdout(), path, force)
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

func (c *CLI) runConfigShow(stdout io.Writer) error {
	data, err := json.MarshalIndent(c.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func (c *CLI) runConfigInit(stdout io.Writer, path string, force bool) error {
	if path == "" {
		path = c.configManager.UserConfigPath()
	}

	exists, err := afero.Exists(c.fsFactory.Production(), path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}
	if exists && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	if err := c.configManager.SaveToFile(c.cfg, path); err != nil {
		return err
	}
	slog.Info("config written", "path", path, "overwrote", exists)
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}
