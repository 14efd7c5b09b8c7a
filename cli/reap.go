package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"survivalboard/utils"
)

// ReapOptions holds flags for the reap command
type ReapOptions struct {
	*RootOptions
	Timeout time.Duration
}

// NewReapCommand creates the one-shot reaper command, for cron deployments
func NewReapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Abandon stale active sessions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reap(cmd, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "maximum time for the sweep")
	return cmd
}

func reap(cmd *cobra.Command, opts *ReapOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ids, err := app.Reaper.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("reaper sweep: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		data, err := utils.MarshalJSON(map[string]interface{}{"abandoned": ids, "count": len(ids)})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprintf(out, "abandoned %d session(s)\n", len(ids))
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}
