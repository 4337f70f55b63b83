package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/confront"
)

func newConfrontCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confront",
		Short: "Uncomfortable truths your data tells about you",
	}

	var period string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate confrontations for the trailing week or month",
		Long: `Run every detector over the trailing period and replace the stored
confrontations for that period. The other period's confrontations are left
alone.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			p, err := confront.ParsePeriod(period)
			if err != nil {
				return err
			}
			res, err := a.engine.GenerateConfrontations(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.print(res)
		}),
	}
	generate.Flags().StringVarP(&period, "period", "p", string(confront.Weekly), "weekly or monthly")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored confrontations, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			cs, err := a.engine.ListConfrontations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.print(cs)
		}),
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number to show (0 for all)")

	ack := &cobra.Command{
		Use:   "ack <id>",
		Short: "Mark a confrontation as seen",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.engine.Acknowledge(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Acknowledged %s\n", args[0])
			return nil
		}),
	}

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Delete a confrontation",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.engine.Dismiss(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Dismissed %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(generate, list, ack, dismiss)
	return cmd
}
