package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newCompareCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <p1-start> <p1-end> <p2-start> <p2-end>",
		Short: "Compare two date ranges across every domain",
		Long: `Compute mood, spending, health, calendar, notes, places and photo metrics for
two date ranges (inclusive, YYYY-MM-DD) and report what went up, down or
stayed put. Changes within 5% count as stable.`,
		Example: `  lifelens compare 2024-05-01 2024-05-31 2024-06-01 2024-06-30`,
		Args:    cobra.ExactArgs(4),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			d := make([]time.Time, len(args))
			for i, raw := range args {
				t, err := a.engine.ParseDate(raw)
				if err != nil {
					return err
				}
				d[i] = t
			}
			res, err := a.engine.ComparePeriods(cmd.Context(), d[0], d[1], d[2], d[3])
			if err != nil {
				return err
			}
			return a.print(res)
		}),
	}
}
