// Package confront looks for uncomfortable truths in a period of the
// journal: trends, cross-domain correlations and anomalies. Each run
// replaces the previous findings for the same period.
package confront

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lifelens/lifelens/internal/journal"
)

// Period is the trailing span a generation run covers. Its name doubles as
// the storage scope.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Days is the number of calendar days the period spans, today included.
func (p Period) Days() int {
	switch p {
	case Monthly:
		return 30
	default:
		return 7
	}
}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Weekly, Monthly:
		return Period(s), nil
	}
	return "", fmt.Errorf("confront: unknown period %q (want weekly or monthly)", s)
}

// Result is the outcome of one generation run.
type Result struct {
	Generated      int                     `json:"generated"`
	Confrontations []journal.Confrontation `json:"confrontations"`
}

// Source is the slice of the event store the engine reads and writes.
type Source interface {
	MoodsInWindow(ctx context.Context, from, to time.Time) ([]journal.Mood, error)
	CalendarInWindow(ctx context.Context, from, to time.Time) ([]journal.CalendarEvent, error)
	TransactionsInWindow(ctx context.Context, from, to time.Time) ([]journal.Transaction, error)
	HealthInWindow(ctx context.Context, from, to time.Time) ([]journal.HealthEntry, error)
	LocationsInWindow(ctx context.Context, from, to time.Time) ([]journal.Location, error)
	NotesInWindow(ctx context.Context, from, to time.Time) ([]journal.Note, error)
	ReplaceConfrontations(ctx context.Context, scope string, batch []journal.Confrontation) ([]journal.Confrontation, error)
}

// Engine runs the detectors over a period.
type Engine struct {
	src Source
	loc *time.Location
	now func() time.Time
}

// New creates an Engine. now supplies the end of every period; calendar
// days are taken in loc.
func New(src Source, loc *time.Location, now func() time.Time) *Engine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{src: src, loc: loc, now: now}
}

// detector inspects a period and reports at most one finding.
type detector func(w *window) (journal.Confrontation, bool)

var detectors = []detector{
	moodTrend,
	meetingLoad,
	spendingMood,
	exerciseDecline,
	silentLocations,
	spendingTrend,
	calendarOverload,
}

// Generate runs every detector over the period ending now and atomically
// replaces that period's stored confrontations with the findings.
func (e *Engine) Generate(ctx context.Context, p Period) (Result, error) {
	now := e.now()
	start := journal.AddDays(journal.StartOfDay(now, e.loc), -(p.Days() - 1))

	w, err := e.load(ctx, start, now)
	if err != nil {
		return Result{}, err
	}

	batch := make([]journal.Confrontation, 0, len(detectors))
	for _, d := range detectors {
		c, ok := d(w)
		if !ok {
			continue
		}
		c.Scope = string(p)
		c.Severity = clamp(c.Severity)
		c.GeneratedAt = now
		if c.DataPoints == nil {
			c.DataPoints = []journal.DataPoint{}
		}
		if c.RelatedEventIDs == nil {
			c.RelatedEventIDs = []string{}
		}
		batch = append(batch, c)
	}

	stored, err := e.src.ReplaceConfrontations(ctx, string(p), batch)
	if err != nil {
		return Result{}, fmt.Errorf("confront: %s: %w", p, err)
	}
	return Result{Generated: len(stored), Confrontations: stored}, nil
}

// window is one period's data, split at its temporal midpoint.
type window struct {
	start, end, mid time.Time
	loc             *time.Location

	moods        []journal.Mood
	calendar     []journal.CalendarEvent
	transactions []journal.Transaction
	health       []journal.HealthEntry
	locations    []journal.Location
	notes        []journal.Note
}

func (e *Engine) load(ctx context.Context, start, end time.Time) (*window, error) {
	w := &window{start: start, end: end, mid: start.Add(end.Sub(start) / 2), loc: e.loc}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { w.moods, err = e.src.MoodsInWindow(gctx, start, end); return })
	g.Go(func() (err error) { w.calendar, err = e.src.CalendarInWindow(gctx, start, end); return })
	g.Go(func() (err error) { w.transactions, err = e.src.TransactionsInWindow(gctx, start, end); return })
	g.Go(func() (err error) { w.health, err = e.src.HealthInWindow(gctx, start, end); return })
	g.Go(func() (err error) { w.locations, err = e.src.LocationsInWindow(gctx, start, end); return })
	g.Go(func() (err error) { w.notes, err = e.src.NotesInWindow(gctx, start, end); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("confront: load: %w", err)
	}
	return w, nil
}

// halves splits items at the window midpoint.
func halves[T journal.Timed](w *window, items []T) (first, second []T) {
	for _, it := range items {
		if it.At().Before(w.mid) {
			first = append(first, it)
		} else {
			second = append(second, it)
		}
	}
	return first, second
}

// dailyMood averages the moods logged on each calendar day.
func dailyMood(w *window) map[string]float64 {
	out := make(map[string]float64)
	for day, moods := range journal.ByDay(w.moods, w.loc) {
		out[day] = avgMood(moods)
	}
	return out
}

func avgMood(moods []journal.Mood) float64 {
	if len(moods) == 0 {
		return 0
	}
	sum := 0
	for _, m := range moods {
		sum += m.Score
	}
	return float64(sum) / float64(len(moods))
}

func totalSpend(txs []journal.Transaction) float64 {
	var sum float64
	for _, t := range txs {
		sum += t.Spend()
	}
	return sum
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp(sev float64) float64 {
	return math.Max(0, math.Min(1, sev))
}

func eventIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func point(label, format string, args ...any) journal.DataPoint {
	return journal.DataPoint{Label: label, Value: fmt.Sprintf(format, args...)}
}
