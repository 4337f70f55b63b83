package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifelens/lifelens/internal/confront"
	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/render"
)

// respond renders v in the requested format.
func (s *Server) respond(req mcp.CallToolRequest, v any) (*mcp.CallToolResult, error) {
	format := req.GetString("format", s.format)
	r, ok := render.Get(format)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (valid: %v)", format, render.ValidFormats())), nil
	}
	out, err := r.Render(v, s.opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func window(req mcp.CallToolRequest) time.Duration {
	return time.Duration(req.GetInt("window_minutes", 0)) * time.Minute
}

func (s *Server) dates(req mcp.CallToolRequest, keys ...string) ([]time.Time, *mcp.CallToolResult) {
	out := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		raw, err := req.RequireString(k)
		if err != nil {
			return nil, mcp.NewToolResultError("missing required parameter: " + k)
		}
		d, err := s.engine.ParseDate(raw)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Server) handleMomentSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("timestamp")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: timestamp"), nil
	}
	at, err := s.engine.ParseTimestamp(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.engine.MomentData(ctx, at, window(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build snapshot: %v", err)), nil
	}
	return s.respond(req, snap)
}

func (s *Server) handleRedoDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := s.engine.ParseDate(req.GetString("date", "today"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := s.engine.HourlyReconstruction(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rebuild day: %v", err)), nil
	}
	return s.respond(req, day)
}

func (s *Server) handleForensicContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: event_id"), nil
	}
	fc, err := s.engine.ForensicContext(ctx, id, window(req))
	if errors.Is(err, journal.ErrEventNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("event %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reconstruct context: %v", err)), nil
	}
	return s.respond(req, fc)
}

func (s *Server) handleDetectMoments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, errResult := s.dates(req, "start", "end")
	if errResult != nil {
		return errResult, nil
	}
	found, err := s.engine.DetectMoments(ctx, d[0], d[1])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to detect moments: %v", err)), nil
	}
	return s.respond(req, found)
}

func (s *Server) handleWeeklyHighlights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found, err := s.engine.WeeklyHighlights(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to detect highlights: %v", err)), nil
	}
	return s.respond(req, found)
}

func (s *Server) handleGenerateConfrontations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, err := confront.ParsePeriod(req.GetString("period", string(confront.Weekly)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.engine.GenerateConfrontations(ctx, period)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate confrontations: %v", err)), nil
	}
	return s.respond(req, res)
}

func (s *Server) handleListConfrontations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.engine.ListConfrontations(ctx, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list confrontations: %v", err)), nil
	}
	return s.respond(req, list)
}

func (s *Server) handleAcknowledge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if err := s.engine.Acknowledge(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Confrontation %s acknowledged.", id)), nil
}

func (s *Server) handleDismiss(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if err := s.engine.Dismiss(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Confrontation %s dismissed.", id)), nil
}

func (s *Server) handleComparePeriods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, errResult := s.dates(req, "p1_start", "p1_end", "p2_start", "p2_end")
	if errResult != nil {
		return errResult, nil
	}
	res, err := s.engine.ComparePeriods(ctx, d[0], d[1], d[2], d[3])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compare periods: %v", err)), nil
	}
	return s.respond(req, res)
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.engine.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read journal: %v", err)), nil
	}
	return s.respond(req, st)
}
