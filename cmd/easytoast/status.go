package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/easytoast/internal/daemon"
	"github.com/jmylchreest/easytoast/internal/dbus"
)

var statusOpts struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the running service",
	Long: `Show whether 'easytoast serve' is running, how long it has been up and
how many toasts it has shown. Exits non-zero when no service is reachable.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false, "Output as JSON")
}

// statusOutput is the --json form of the status.
type statusOutput struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	Shown     uint32    `json:"shown"`
	Active    uint32    `json:"active"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	info, err := client.Ping(ctx)
	if err != nil {
		return err
	}
	st, err := client.Status(ctx)
	if err != nil {
		return err
	}

	if statusOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statusOutput{
			Name:      info.Name,
			Version:   info.Version,
			StartedAt: st.StartedAt,
			Shown:     st.Shown,
			Active:    st.Active,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatStatus(info, st))
	return nil
}

// formatStatus renders a one-line summary such as
// "easytoast 1.0 running since 3 hours ago: 1,204 shown, 1 open".
func formatStatus(info dbus.ServerInfo, st daemon.Status) string {
	return fmt.Sprintf("%s %s running since %s: %s shown, %d open",
		info.Name,
		info.Version,
		humanize.Time(st.StartedAt),
		humanize.Comma(int64(st.Shown)),
		st.Active,
	)
}
