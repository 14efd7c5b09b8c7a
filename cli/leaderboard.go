package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"survivalboard/services"
	"survivalboard/utils"
)

// NewLeaderboardCommand creates the leaderboard command
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rootOpts.load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			app, err := NewApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			entries, err := app.Leaderboard.Top(ctx)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd, rootOpts.Format, entries)
		},
	}
}

func printLeaderboard(cmd *cobra.Command, format string, entries []services.LeaderboardEntry) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		data, err := utils.MarshalJSON(entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "no finished sessions yet")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAYER\tTIME\tSESSION")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%.2fs\t%s\n", i+1, e.PlayerName, e.FinalTime, e.SessionID)
	}
	return w.Flush()
}
