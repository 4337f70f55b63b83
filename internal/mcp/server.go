// Package mcp exposes the lifelens engine as MCP tools over stdio, so an
// assistant can ask what was happening, what changed and what stands out.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lifelens/lifelens/internal/engine"
	"github.com/lifelens/lifelens/internal/render"
)

// Server wires engine operations to MCP tools.
type Server struct {
	engine *engine.Engine
	format string
	opts   render.Options
	mcp    *server.MCPServer
}

// NewServer registers every tool. format is the default output format for
// tools called without one.
func NewServer(eng *engine.Engine, version, format string) *Server {
	if _, ok := render.Get(format); !ok {
		format = "text"
	}
	s := &Server{
		engine: eng,
		format: format,
		opts:   render.Options{Location: eng.Location()},
		mcp: server.NewMCPServer("lifelens", version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// Serve blocks serving MCP over stdin/stdout.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Output format: text, markdown, json or yaml"),
		mcp.Enum(render.ValidFormats()...),
	)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("moment_snapshot",
		mcp.WithDescription("Everything recorded around an instant: nearest location and mood, plus spending, calendar, health, notes and voice memos in the window."),
		mcp.WithString("timestamp", mcp.Required(), mcp.Description("RFC 3339 instant or local 'YYYY-MM-DD HH:MM'")),
		mcp.WithNumber("window_minutes", mcp.Description("Minutes on each side of the instant")),
		formatOption(),
	), s.handleMomentSnapshot)

	s.mcp.AddTool(mcp.NewTool("redo_day",
		mcp.WithDescription("Rebuild a whole day hour by hour with its mood arc."),
		mcp.WithString("date", mcp.Description("YYYY-MM-DD, 'today' or 'yesterday' (default today)")),
		formatOption(),
	), s.handleRedoDay)

	s.mcp.AddTool(mcp.NewTool("forensic_context",
		mcp.WithDescription("Zoom in on one event: its neighbours, what else was going on, similar moments from other days and questions worth asking."),
		mcp.WithString("event_id", mcp.Required(), mcp.Description("Event id")),
		mcp.WithNumber("window_minutes", mcp.Description("Neighbour window on each side (default 30)")),
		formatOption(),
	), s.handleForensicContext)

	s.mcp.AddTool(mcp.NewTool("detect_moments",
		mcp.WithDescription("Find the days that stood out between two dates (at most 7, one per day)."),
		mcp.WithString("start", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("end", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD")),
		formatOption(),
	), s.handleDetectMoments)

	s.mcp.AddTool(mcp.NewTool("weekly_highlights",
		mcp.WithDescription("The days that stood out in the last seven days."),
		formatOption(),
	), s.handleWeeklyHighlights)

	s.mcp.AddTool(mcp.NewTool("generate_confrontations",
		mcp.WithDescription("Regenerate the uncomfortable truths for the trailing week or month, replacing the previous ones for that period."),
		mcp.WithString("period", mcp.Description("weekly or monthly (default weekly)"), mcp.Enum("weekly", "monthly")),
		formatOption(),
	), s.handleGenerateConfrontations)

	s.mcp.AddTool(mcp.NewTool("list_confrontations",
		mcp.WithDescription("List stored confrontations, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number to return (default 20)")),
		formatOption(),
	), s.handleListConfrontations)

	s.mcp.AddTool(mcp.NewTool("acknowledge_confrontation",
		mcp.WithDescription("Mark a confrontation as seen."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Confrontation id")),
	), s.handleAcknowledge)

	s.mcp.AddTool(mcp.NewTool("dismiss_confrontation",
		mcp.WithDescription("Delete a confrontation."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Confrontation id")),
	), s.handleDismiss)

	s.mcp.AddTool(mcp.NewTool("compare_periods",
		mcp.WithDescription("Compare mood, spending, health, calendar, notes, places and photos between two date ranges."),
		mcp.WithString("p1_start", mcp.Required(), mcp.Description("First period start, YYYY-MM-DD")),
		mcp.WithString("p1_end", mcp.Required(), mcp.Description("First period end, YYYY-MM-DD")),
		mcp.WithString("p2_start", mcp.Required(), mcp.Description("Second period start, YYYY-MM-DD")),
		mcp.WithString("p2_end", mcp.Required(), mcp.Description("Second period end, YYYY-MM-DD")),
		formatOption(),
	), s.handleComparePeriods)

	s.mcp.AddTool(mcp.NewTool("journal_status",
		mcp.WithDescription("Event counts per type and the number of stored confrontations."),
		formatOption(),
	), s.handleStatus)
}
