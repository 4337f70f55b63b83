// Package snapshot reconstructs what was happening across every domain at an
// instant or over a whole day.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lifelens/lifelens/internal/journal"
)

// Source is the slice of the event store the builder reads.
type Source interface {
	EventsInWindow(ctx context.Context, from, to time.Time) ([]journal.Event, error)
	TransactionsInWindow(ctx context.Context, from, to time.Time) ([]journal.Transaction, error)
	LocationsInWindow(ctx context.Context, from, to time.Time) ([]journal.Location, error)
	CalendarInWindow(ctx context.Context, from, to time.Time) ([]journal.CalendarEvent, error)
	HealthInWindow(ctx context.Context, from, to time.Time) ([]journal.HealthEntry, error)
	MoodsInWindow(ctx context.Context, from, to time.Time) ([]journal.Mood, error)
	NotesInWindow(ctx context.Context, from, to time.Time) ([]journal.Note, error)
	VoiceMemosInWindow(ctx context.Context, from, to time.Time) ([]journal.VoiceMemo, error)
}

// Snapshot is a cross-domain read of everything active in or near a window.
// Location and Mood hold at most one record; the other streams hold every
// record in the window.
type Snapshot struct {
	Timestamp      time.Time               `json:"timestamp"`
	Location       *journal.Location       `json:"location,omitempty"`
	Mood           *journal.Mood           `json:"mood,omitempty"`
	Transactions   []journal.Transaction   `json:"transactions"`
	CalendarEvents []journal.CalendarEvent `json:"calendar_events"`
	HealthEntries  []journal.HealthEntry   `json:"health_entries"`
	Notes          []journal.Note          `json:"notes"`
	VoiceMemos     []journal.VoiceMemo     `json:"voice_memos"`
}

// Empty reports whether the snapshot holds no records at all.
func (s Snapshot) Empty() bool {
	return s.Location == nil && s.Mood == nil && len(s.Transactions) == 0 &&
		len(s.CalendarEvents) == 0 && len(s.HealthEntries) == 0 &&
		len(s.Notes) == 0 && len(s.VoiceMemos) == 0
}

// Builder assembles snapshots from a Source.
type Builder struct {
	src Source
}

// NewBuilder creates a Builder.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// Build returns the snapshot of [center-window, center+window]. Location and
// Mood are the in-window records nearest to center; ties go to the earlier one.
func (b *Builder) Build(ctx context.Context, center time.Time, window time.Duration) (Snapshot, error) {
	d, err := b.fetch(ctx, center.Add(-window), center.Add(window), false)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Timestamp:      center,
		Location:       nearest(d.locations, center),
		Mood:           nearest(d.moods, center),
		Transactions:   d.transactions,
		CalendarEvents: d.calendar,
		HealthEntries:  d.health,
		Notes:          d.notes,
		VoiceMemos:     d.voice,
	}, nil
}

// domainSlices holds one fetch of every stream for a window.
type domainSlices struct {
	events       []journal.Event
	transactions []journal.Transaction
	locations    []journal.Location
	calendar     []journal.CalendarEvent
	health       []journal.HealthEntry
	moods        []journal.Mood
	notes        []journal.Note
	voice        []journal.VoiceMemo
}

// fetch queries every domain for [from, to] concurrently.
func (b *Builder) fetch(ctx context.Context, from, to time.Time, withEvents bool) (domainSlices, error) {
	var d domainSlices
	g, gctx := errgroup.WithContext(ctx)

	if withEvents {
		g.Go(func() (err error) { d.events, err = b.src.EventsInWindow(gctx, from, to); return })
	}
	g.Go(func() (err error) { d.transactions, err = b.src.TransactionsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.locations, err = b.src.LocationsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.calendar, err = b.src.CalendarInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.health, err = b.src.HealthInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.moods, err = b.src.MoodsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.notes, err = b.src.NotesInWindow(gctx, from, to); return })
	g.Go(func() (err error) { d.voice, err = b.src.VoiceMemosInWindow(gctx, from, to); return })

	if err := g.Wait(); err != nil {
		return d, fmt.Errorf("snapshot: fetch: %w", err)
	}
	return d, nil
}

// nearest returns a copy of the item closest in time to center, or nil.
func nearest[T journal.Timed](items []T, center time.Time) *T {
	var best *T
	var bestDist time.Duration
	for i := range items {
		dist := items[i].At().Sub(center).Abs()
		if best == nil || dist < bestDist {
			v := items[i]
			best, bestDist = &v, dist
		}
	}
	return best
}

// first returns a copy of the first item, or nil.
func first[T any](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	v := items[0]
	return &v
}
