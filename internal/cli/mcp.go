package cli

import (
	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the journal to an assistant over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing snapshots, day
reconstruction, forensic zoom, moments, confrontations and comparisons as
tools. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			return mcp.NewServer(a.engine, version, a.cfg.Output.Format).Serve()
		}),
	}
}
