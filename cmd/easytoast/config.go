package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/theme"
)

var configOpts struct {
	force bool
	yaml  bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Write the default configuration to the config path. An existing file is
kept unless --force is given. Use --config with a .yaml path (or --yaml) to
write YAML instead of TOML.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cfg.Marshal(configOpts.yaml)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available layouts and themes",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "layouts:")
		for _, name := range layout.ListEmbeddedTemplates() {
			fmt.Fprintln(out, "  "+name)
		}

		dir, err := theme.ThemesDir()
		if err != nil {
			logger.Debug("no user theme directory", "error", err)
		}
		fmt.Fprintln(out, "themes:")
		for _, name := range theme.List(dir) {
			fmt.Fprintln(out, "  "+name)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd, configListCmd)

	// init and path must work while the current file is broken.
	for _, c := range []*cobra.Command{configInitCmd, configPathCmd} {
		c.PersistentPreRun = func(*cobra.Command, []string) { setupLogger() }
	}

	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false, "Overwrite an existing file")
	for _, c := range []*cobra.Command{configInitCmd, configShowCmd} {
		c.Flags().BoolVar(&configOpts.yaml, "yaml", false, "Use YAML instead of TOML")
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if configOpts.yaml && globalOpts.configPath == "" {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	}

	if _, err := os.Stat(path); err == nil && !configOpts.force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
