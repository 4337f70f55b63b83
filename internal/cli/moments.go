package cli

import (
	"github.com/spf13/cobra"
)

func newMomentsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "moments <start> <end>",
		Short: "Find the days that stood out in a date range",
		Long: `Scan every day from start to end (inclusive, YYYY-MM-DD) for mood drops and
spikes, stressful, productive and quiet days, discoveries and active happy
days. At most seven moments are returned, one per day.`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			start, err := a.engine.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := a.engine.ParseDate(args[1])
			if err != nil {
				return err
			}
			found, err := a.engine.DetectMoments(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return a.print(found)
		}),
	}
}

func newHighlightsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "highlights",
		Short: "The days that stood out this week",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			found, err := a.engine.WeeklyHighlights(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(found)
		}),
	}
}
