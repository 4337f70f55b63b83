package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/journal"
)

func newForensicCmd(opts *globalOptions) *cobra.Command {
	var windowMin int

	cmd := &cobra.Command{
		Use:   "forensic <event-id>",
		Short: "Zoom in on one event",
		Long: `Reconstruct the surroundings of an event: what came just before and after,
what else was going on, similar moments on other days and the questions
worth asking about it.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			fc, err := a.engine.ForensicContext(cmd.Context(), args[0], time.Duration(windowMin)*time.Minute)
			if errors.Is(err, journal.ErrEventNotFound) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return a.print(fc)
		}),
	}

	cmd.Flags().IntVarP(&windowMin, "window", "w", 0, "neighbour window in minutes (default from config)")
	return cmd
}
