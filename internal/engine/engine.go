// Package engine is the single entry point the command line and MCP
// surfaces use to query a journal.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lifelens/lifelens/internal/compare"
	"github.com/lifelens/lifelens/internal/confront"
	"github.com/lifelens/lifelens/internal/forensic"
	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/moments"
	"github.com/lifelens/lifelens/internal/snapshot"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the source of "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithForensic tunes the forensic reconstructor.
func WithForensic(opts forensic.Options) Option {
	return func(e *Engine) { e.forensicOpts = opts }
}

// WithDefaultWindow sets the snapshot and forensic window used when a
// caller passes zero.
func WithDefaultWindow(snapshotWindow, forensicWindow time.Duration) Option {
	return func(e *Engine) {
		if snapshotWindow > 0 {
			e.snapshotWindow = snapshotWindow
		}
		if forensicWindow > 0 {
			e.forensicWindow = forensicWindow
		}
	}
}

// Engine ties the journal store to every analysis component.
type Engine struct {
	store *journal.Store
	now   func() time.Time
	loc   *time.Location

	forensicOpts   forensic.Options
	snapshotWindow time.Duration
	forensicWindow time.Duration

	snap     *snapshot.Builder
	forensic *forensic.Reconstructor
	moments  *moments.Detector
	confront *confront.Engine
	comparer *compare.Comparer
}

// New creates an Engine over store.
func New(store *journal.Store, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		now:            time.Now,
		loc:            time.Local,
		snapshotWindow: forensic.DefaultWindow,
		forensicWindow: forensic.DefaultWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.snap = snapshot.NewBuilder(store)
	e.forensic = forensic.NewReconstructor(store, e.snap, e.loc, e.forensicOpts)
	e.moments = moments.NewDetector(store, e.loc)
	e.confront = confront.New(store, e.loc, e.now)
	e.comparer = compare.New(store, e.loc)
	return e
}

// Now returns the engine's current time in its location.
func (e *Engine) Now() time.Time { return e.now().In(e.loc) }

// Location returns the time zone calendar days are computed in.
func (e *Engine) Location() *time.Location { return e.loc }

// Store returns the underlying journal store.
func (e *Engine) Store() *journal.Store { return e.store }

// MomentData returns the snapshot around ts. A zero window uses the default.
func (e *Engine) MomentData(ctx context.Context, ts time.Time, window time.Duration) (snapshot.Snapshot, error) {
	if window <= 0 {
		window = e.snapshotWindow
	}
	log.Debug().Time("at", ts).Dur("window", window).Msg("moment snapshot")
	s, err := e.snap.Build(ctx, ts.In(e.loc), window)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	log.Info().
		Int("transactions", len(s.Transactions)).
		Int("calendar", len(s.CalendarEvents)).
		Bool("mood", s.Mood != nil).
		Msg("moment snapshot built")
	return s, nil
}

// HourlyReconstruction rebuilds date's calendar day hour by hour.
func (e *Engine) HourlyReconstruction(ctx context.Context, date time.Time) (snapshot.Day, error) {
	date = journal.StartOfDay(date, e.loc)
	log.Debug().Str("date", date.Format(journal.DateLayout)).Msg("redo day")
	day, err := e.snap.BuildDay(ctx, date)
	if err != nil {
		return snapshot.Day{}, err
	}
	log.Info().Str("date", day.Date).Int("events", day.TotalEvents).Int("mood_points", len(day.MoodArc)).Msg("day reconstructed")
	return day, nil
}

// ForensicContext zooms in on one event. The error wraps
// journal.ErrEventNotFound for unknown ids.
func (e *Engine) ForensicContext(ctx context.Context, eventID string, window time.Duration) (*forensic.Context, error) {
	if window <= 0 {
		window = e.forensicWindow
	}
	log.Debug().Str("event", eventID).Dur("window", window).Msg("forensic context")
	fc, err := e.forensic.GetContext(ctx, eventID, window)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("event", eventID).
		Int("before", len(fc.Before)).
		Int("after", len(fc.After)).
		Int("similar", len(fc.SimilarMoments)).
		Int("questions", len(fc.SuggestedQuestions)).
		Msg("forensic context built")
	return fc, nil
}

// DetectMoments scans the days from start through end.
func (e *Engine) DetectMoments(ctx context.Context, start, end time.Time) ([]moments.Moment, error) {
	log.Debug().Time("start", start).Time("end", end).Msg("detect moments")
	found, err := e.moments.Detect(ctx, start, end)
	if err != nil {
		return nil, err
	}
	log.Info().Int("moments", len(found)).Msg("moments detected")
	return found, nil
}

// WeeklyHighlights returns the moments of the trailing seven days.
func (e *Engine) WeeklyHighlights(ctx context.Context) ([]moments.Moment, error) {
	log.Debug().Msg("weekly highlights")
	found, err := e.moments.WeeklyHighlights(ctx, e.Now())
	if err != nil {
		return nil, err
	}
	log.Info().Int("moments", len(found)).Msg("weekly highlights detected")
	return found, nil
}

// GenerateConfrontations regenerates the confrontations of period, replacing
// the ones stored for it.
func (e *Engine) GenerateConfrontations(ctx context.Context, period confront.Period) (confront.Result, error) {
	log.Debug().Str("period", string(period)).Msg("generate confrontations")
	res, err := e.confront.Generate(ctx, period)
	if err != nil {
		return confront.Result{}, err
	}
	log.Info().Str("period", string(period)).Int("confrontations", res.Generated).Msg("confrontations generated")
	return res, nil
}

// ListConfrontations returns stored confrontations, newest first.
func (e *Engine) ListConfrontations(ctx context.Context, limit int) ([]journal.Confrontation, error) {
	return e.store.ListConfrontations(ctx, limit)
}

// Acknowledge marks a confrontation as seen.
func (e *Engine) Acknowledge(ctx context.Context, id string) error {
	if err := e.store.AcknowledgeConfrontation(ctx, id); err != nil {
		return err
	}
	log.Info().Str("confrontation", id).Msg("confrontation acknowledged")
	return nil
}

// Dismiss deletes a confrontation.
func (e *Engine) Dismiss(ctx context.Context, id string) error {
	if err := e.store.DismissConfrontation(ctx, id); err != nil {
		return err
	}
	log.Info().Str("confrontation", id).Msg("confrontation dismissed")
	return nil
}

// ComparePeriods measures [p1Start, p1End] against [p2Start, p2End].
func (e *Engine) ComparePeriods(ctx context.Context, p1Start, p1End, p2Start, p2End time.Time) (compare.Result, error) {
	log.Debug().
		Time("p1_start", p1Start).Time("p1_end", p1End).
		Time("p2_start", p2Start).Time("p2_end", p2End).
		Msg("compare periods")
	res, err := e.comparer.Compare(ctx,
		compare.Range{Start: p1Start, End: p1End},
		compare.Range{Start: p2Start, End: p2End},
	)
	if err != nil {
		return compare.Result{}, err
	}
	log.Info().Int("changes", len(res.Changes)).Msg("periods compared")
	return res, nil
}

// Status summarises what the journal holds.
type Status struct {
	EventsByType   map[journal.EventType]int `json:"events_by_type"`
	TotalEvents    int                       `json:"total_events"`
	Confrontations int                       `json:"confrontations"`
}

// Status counts events per type and stored confrontations.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	counts, err := e.store.CountEventsByType(ctx)
	if err != nil {
		return Status{}, err
	}
	n, err := e.store.CountConfrontations(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{EventsByType: counts, Confrontations: n}
	for _, c := range counts {
		st.TotalEvents += c
	}
	return st, nil
}

// ParseDate reads a YYYY-MM-DD day in the engine's location. "today" and
// "yesterday" are relative to the engine clock.
func (e *Engine) ParseDate(s string) (time.Time, error) {
	today := journal.StartOfDay(e.Now(), e.loc)
	switch s {
	case "", "today":
		return today, nil
	case "yesterday":
		return journal.AddDays(today, -1), nil
	}
	t, err := time.ParseInLocation(journal.DateLayout, s, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseTimestamp reads an RFC 3339 instant or a local "YYYY-MM-DD HH:MM".
func (e *Engine) ParseTimestamp(s string) (time.Time, error) {
	if s == "" || s == "now" {
		return e.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, e.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (want RFC 3339 or YYYY-MM-DD HH:MM)", s)
}
