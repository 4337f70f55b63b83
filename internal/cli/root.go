// Package cli defines the Cobra command tree for the lifelens CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dbPath     string
	format     string
	timezone   string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "lifelens",
		Short: "Cross-domain correlation engine for your life journal",
		Long: `Lifelens reasons across everything your journal records: spending, places,
calendar, health, mood, notes, voice memos, photos and video.

It answers three questions: what was happening at a given moment, what changed
between two stretches of time, and what your own data says about you that you
might not want to hear.

Run 'lifelens init' to create the configuration and journal database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/lifelens/config.toml)")
	f.StringVar(&opts.dbPath, "db", "", "journal database path (overrides config)")
	f.StringVarP(&opts.format, "format", "o", "", "output format: text, markdown, json or yaml")
	f.StringVar(&opts.timezone, "tz", "", "IANA time zone used for calendar days (overrides config)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newInitCmd(opts),
		newStatusCmd(opts),
		newMomentCmd(opts),
		newRedoCmd(opts),
		newForensicCmd(opts),
		newMomentsCmd(opts),
		newHighlightsCmd(opts),
		newConfrontCmd(opts),
		newCompareCmd(opts),
		newMCPCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lifelens %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
