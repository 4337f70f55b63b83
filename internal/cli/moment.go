package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newMomentCmd(opts *globalOptions) *cobra.Command {
	var windowMin int

	cmd := &cobra.Command{
		Use:   "moment [timestamp]",
		Short: "Show everything recorded around an instant",
		Long: `Gather the nearest location and mood plus every transaction, calendar entry,
health entry, note and voice memo within the window on each side of the
instant.

The timestamp is RFC 3339 or local "YYYY-MM-DD HH:MM"; it defaults to now.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			raw := "now"
			if len(args) == 1 {
				raw = args[0]
			}
			at, err := a.engine.ParseTimestamp(raw)
			if err != nil {
				return err
			}
			snap, err := a.engine.MomentData(cmd.Context(), at, time.Duration(windowMin)*time.Minute)
			if err != nil {
				return err
			}
			return a.print(snap)
		}),
	}

	cmd.Flags().IntVarP(&windowMin, "window", "w", 0, "minutes on each side (default from config)")
	return cmd
}

func newRedoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "redo [date]",
		Short: "Rebuild a day hour by hour",
		Long: `Rebuild a calendar day as 24 hourly slices with its mood arc.

The date is YYYY-MM-DD, "today" or "yesterday"; it defaults to today.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			raw := "today"
			if len(args) == 1 {
				raw = args[0]
			}
			d, err := a.engine.ParseDate(raw)
			if err != nil {
				return err
			}
			day, err := a.engine.HourlyReconstruction(cmd.Context(), d)
			if err != nil {
				return err
			}
			return a.print(day)
		}),
	}
}
