package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show event counts per type and stored confrontations",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			st, err := a.engine.Status(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(st)
		}),
	}
}
