// Package forensic zooms in on a single event: its neighbours, what else was
// going on, similar moments from other days and questions worth asking.
package forensic

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/snapshot"
)

const (
	// DefaultWindow is the neighbour window on each side of the event.
	DefaultWindow = 30 * time.Minute

	// DefaultVisualTop is how many of the best similar moments are searched
	// for photos to compare with.
	DefaultVisualTop = 3
)

// Source is the slice of the event store the reconstructor reads.
type Source interface {
	snapshot.Source
	GetEvent(ctx context.Context, id string) (journal.Event, error)
	EventsByType(ctx context.Context, t journal.EventType) ([]journal.Event, error)
	Enrich(ctx context.Context, e journal.Event) (journal.EnrichedEvent, error)
	EnrichAll(ctx context.Context, events []journal.Event) ([]journal.EnrichedEvent, error)
	PhotosOnDate(ctx context.Context, date time.Time) ([]journal.Photo, error)
}

// Context is the forensic view of one event. Before is nearest-first, After
// is earliest-first.
type Context struct {
	Event              journal.EnrichedEvent   `json:"event"`
	Before             []journal.EnrichedEvent `json:"before"`
	After              []journal.EnrichedEvent `json:"after"`
	CrossDomain        snapshot.Snapshot       `json:"cross_domain"`
	SimilarMoments     []SimilarMoment         `json:"similar_moments"`
	SuggestedQuestions []string                `json:"suggested_questions"`
	VisualComparison   *VisualComparison       `json:"visual_comparison,omitempty"`
}

// VisualComparison pairs a photo event with photos from similar days.
type VisualComparison struct {
	Photo   journal.Photo `json:"photo"`
	Matches []VisualMatch `json:"matches"`
}

// VisualMatch is the first photo found on a similar moment's day.
type VisualMatch struct {
	EventID    string        `json:"event_id"`
	Date       string        `json:"date"`
	Similarity float64       `json:"similarity"`
	Photo      journal.Photo `json:"photo"`
}

// Options tunes a Reconstructor. Zero values fall back to defaults.
type Options struct {
	SimilarLimit int
	VisualTop    int
}

// Reconstructor builds forensic contexts.
type Reconstructor struct {
	src  Source
	snap *snapshot.Builder
	loc  *time.Location
	opts Options
}

// NewReconstructor creates a Reconstructor. Calendar days are judged in loc.
func NewReconstructor(src Source, snap *snapshot.Builder, loc *time.Location, opts Options) *Reconstructor {
	if loc == nil {
		loc = time.Local
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = DefaultSimilarLimit
	}
	if opts.VisualTop <= 0 {
		opts.VisualTop = DefaultVisualTop
	}
	return &Reconstructor{src: src, snap: snap, loc: loc, opts: opts}
}

// GetContext reconstructs the surroundings of eventID. It fails with an
// error wrapping journal.ErrEventNotFound when the id is unknown.
func (r *Reconstructor) GetContext(ctx context.Context, eventID string, window time.Duration) (*Context, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	ev, err := r.src.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	target, err := r.src.Enrich(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("forensic: enrich target: %w", err)
	}

	center := ev.Timestamp
	before, err := r.neighbours(ctx, ev.ID, center.Add(-window), center.Add(-time.Millisecond))
	if err != nil {
		return nil, err
	}
	slices.Reverse(before)
	after, err := r.neighbours(ctx, ev.ID, center, center.Add(window))
	if err != nil {
		return nil, err
	}

	cross, err := r.snap.Build(ctx, center, window)
	if err != nil {
		return nil, fmt.Errorf("forensic: cross-domain snapshot: %w", err)
	}

	similar, err := r.FindSimilar(ctx, target, r.opts.SimilarLimit)
	if err != nil {
		return nil, err
	}

	visual, err := r.visualComparison(ctx, target, similar)
	if err != nil {
		return nil, err
	}

	return &Context{
		Event:              target,
		Before:             before,
		After:              after,
		CrossDomain:        cross,
		SimilarMoments:     similar,
		SuggestedQuestions: suggestQuestions(target, before, cross, window, r.loc),
		VisualComparison:   visual,
	}, nil
}

// neighbours returns the enriched events in [from, to] other than excludeID, oldest first.
func (r *Reconstructor) neighbours(ctx context.Context, excludeID string, from, to time.Time) ([]journal.EnrichedEvent, error) {
	events, err := r.src.EventsInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("forensic: neighbours: %w", err)
	}
	events = slices.DeleteFunc(events, func(e journal.Event) bool { return e.ID == excludeID })
	enriched, err := r.src.EnrichAll(ctx, events)
	if err != nil {
		return nil, fmt.Errorf("forensic: enrich neighbours: %w", err)
	}
	return enriched, nil
}

// visualComparison links a photo event to photos taken on the days of its
// best similar moments. It returns nil when the target is not a photo or no
// such photos exist.
func (r *Reconstructor) visualComparison(ctx context.Context, target journal.EnrichedEvent, similar []SimilarMoment) (*VisualComparison, error) {
	photo, ok := target.Enrichment.(*journal.Photo)
	if !ok {
		return nil, nil
	}

	top := similar
	if len(top) > r.opts.VisualTop {
		top = top[:r.opts.VisualTop]
	}

	var matches []VisualMatch
	for _, sm := range top {
		day := sm.Event.Timestamp.In(r.loc)
		photos, err := r.src.PhotosOnDate(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("forensic: photos on %s: %w", day.Format(journal.DateLayout), err)
		}
		if len(photos) == 0 {
			continue
		}
		matches = append(matches, VisualMatch{
			EventID:    sm.Event.ID,
			Date:       day.Format(journal.DateLayout),
			Similarity: sm.Similarity,
			Photo:      photos[0],
		})
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &VisualComparison{Photo: *photo, Matches: matches}, nil
}
