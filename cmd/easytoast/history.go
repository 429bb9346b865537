package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/store"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// historyTextWidth bounds the message column in table output.
const historyTextWidth = 48

var historyOpts struct {
	limit  int
	since  time.Duration
	preset string
	json   bool
	clear  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List toasts recently shown by the service",
	Long: `List the toasts that 'easytoast serve' has shown and closed, most recent
first. The history is kept in ~/.local/share/easytoast/history.jsonl unless
history.path says otherwise.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	f := historyCmd.Flags()
	f.IntVarP(&historyOpts.limit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	f.DurationVar(&historyOpts.since, "since", 0, "Only show toasts closed within this duration")
	f.StringVarP(&historyOpts.preset, "preset", "p", "", "Only show toasts of this preset")
	f.BoolVar(&historyOpts.json, "json", false, "Output as JSON")
	f.BoolVar(&historyOpts.clear, "clear", false, "Delete the history")
}

// historyPath resolves the history file for c.
func historyPath(c *config.Config) string {
	if path := c.HistoryPath(); path != "" {
		return path
	}
	return store.DefaultPath()
}

// openHistory opens and loads the history store described by c.
func openHistory(c *config.Config) (*store.Store, error) {
	p, err := store.NewJSONLPersistence(historyPath(c))
	if err != nil {
		return nil, err
	}
	s := store.NewStore(p, c.History.MaxEntries)
	if err := s.Hydrate(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load history: %w", err)
	}
	return s, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	opts := store.FilterOptions{Since: historyOpts.since, Limit: historyOpts.limit}
	if historyOpts.preset != "" {
		p, err := toast.ParsePreset(historyOpts.preset)
		if err != nil {
			return err
		}
		if p != toast.PresetNone {
			opts.Preset = p.String()
		}
	}

	s, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if historyOpts.clear {
		count := s.Count()
		if err := s.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s entries\n", humanize.Comma(int64(count)))
		return nil
	}

	records := s.Filter(opts)
	if historyOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeHistory(cmd.OutOrStdout(), records)
}

func writeHistory(w io.Writer, records []store.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No toasts in history")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CLOSED", "PRESET", "TITLE", "TEXT", "SHOWN FOR")
	for _, r := range records {
		preset := r.Preset
		if preset == "" {
			preset = "-"
		}
		t.Row(
			humanize.Time(r.ClosedAt),
			preset,
			r.Title,
			truncate(oneLine(r.Text), historyTextWidth),
			r.Duration().Round(100*time.Millisecond).String(),
		)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
