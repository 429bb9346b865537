package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/toast"
)

var presetsOpts struct {
	format string
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the toast presets",
	Long: `List the info, success and error presets with any overrides from the
config file applied.`,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().StringVarP(&presetsOpts.format, "format", "f", "table",
		"Output format: table, yaml or json")
}

// presetRow is one preset as printed.
type presetRow struct {
	Name       string `json:"name" yaml:"name"`
	Title      string `json:"title" yaml:"title"`
	Icon       string `json:"icon" yaml:"icon"`
	TitleColor string `json:"title_color" yaml:"title_color"`
	TextColor  string `json:"text_color" yaml:"text_color"`
	BackColor  string `json:"back_color" yaml:"back_color"`
	Sound      string `json:"sound,omitempty" yaml:"sound,omitempty"`
}

func presetRows(c *config.Config) ([]presetRow, error) {
	var rows []presetRow
	for _, p := range toast.Presets() {
		pal, err := c.Palette(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, presetRow{
			Name:       p.String(),
			Title:      pal.Title,
			Icon:       string(pal.Icon),
			TitleColor: config.FormatColor(pal.TitleColor),
			TextColor:  config.FormatColor(pal.TextColor),
			BackColor:  config.FormatColor(pal.BackColor),
			Sound:      c.SoundFor(p),
		})
	}
	return rows, nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	rows, err := presetRows(cfg)
	if err != nil {
		return err
	}
	return writePresets(cmd.OutOrStdout(), rows, presetsOpts.format)
}

func writePresets(w io.Writer, rows []presetRow, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("PRESET", "TITLE", "ICON", "TITLE COLOR", "TEXT COLOR", "BACK COLOR")
		for _, r := range rows {
			t.Row(r.Name, r.Title, r.Icon, r.TitleColor, r.TextColor, r.BackColor)
		}
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		return fmt.Errorf("unknown format %q, must be one of: table, yaml, json", format)
	}
}
