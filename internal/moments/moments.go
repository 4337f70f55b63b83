// Package moments flags single days that stand out from the user's own
// recent history.
package moments

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lifelens/lifelens/internal/journal"
)

// Type names a significance pattern.
type Type string

const (
	TypeMoodDrop      Type = "mood_drop"
	TypeMoodSpike     Type = "mood_spike"
	TypeStressfulDay  Type = "stressful_day"
	TypeActiveHappy   Type = "active_happy"
	TypeDiscovery     Type = "discovery"
	TypeProductiveDay Type = "productive_day"
	TypeQuietDay      Type = "quiet_day"
)

// Moment is one notable day. Moments are derived on every scan and are not
// stored.
type Moment struct {
	ID              string   `json:"id"`
	Type            Type     `json:"type"`
	Date            string   `json:"date"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Icon            string   `json:"icon"`
	Score           float64  `json:"score"`
	RelatedEventIDs []string `json:"related_event_ids"`
}

// Source is the slice of the event store the detector reads.
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

// Detector scans date ranges for moments. Calendar days are taken in loc.
type Detector struct {
	src Source
	loc *time.Location
}

// NewDetector creates a Detector.
func NewDetector(src Source, loc *time.Location) *Detector {
	if loc == nil {
		loc = time.Local
	}
	return &Detector{src: src, loc: loc}
}

// day is everything recorded on one calendar day.
type day struct {
	date         string
	events       []journal.Event
	moods        []journal.Mood
	calendar     []journal.CalendarEvent
	health       []journal.HealthEntry
	locations    []journal.Location
	transactions []journal.Transaction
	notes        []journal.Note
	voice        []journal.VoiceMemo
}

// moodAvg returns the day's average mood and whether any mood was logged.
func (d day) moodAvg() (float64, bool) {
	if len(d.moods) == 0 {
		return 0, false
	}
	return avgMood(d.moods), true
}

// Detect scans the calendar days from start through end (inclusive) and
// returns at most maxMoments moments, at most one per day, best first.
func (d *Detector) Detect(ctx context.Context, start, end time.Time) ([]Moment, error) {
	first := journal.StartOfDay(start, d.loc)
	last := journal.StartOfDay(end, d.loc)
	if last.Before(first) {
		return []Moment{}, nil
	}
	until := journal.AddDays(last, 1).Add(-time.Millisecond)

	baseline, err := d.baseline(ctx, first)
	if err != nil {
		return nil, err
	}
	days, err := d.load(ctx, first, until)
	if err != nil {
		return nil, err
	}

	var found []candidate
	for cur := first; !cur.After(last); cur = journal.AddDays(cur, 1) {
		key := cur.Format(journal.DateLayout)
		stats := days[key]
		stats.date = key
		for i, r := range rules {
			if m, ok := r(stats, baseline); ok {
				found = append(found, candidate{moment: m, rule: i})
			}
		}
	}
	return rank(found), nil
}

// WeeklyHighlights returns the moments of the seven calendar days ending on now's day.
func (d *Detector) WeeklyHighlights(ctx context.Context, now time.Time) ([]Moment, error) {
	today := journal.StartOfDay(now, d.loc)
	return d.Detect(ctx, journal.AddDays(today, -(highlightDays-1)), today)
}

// baseline averages the moods of the baselineDays before first, falling
// back to defaultBaseline when none were logged.
func (d *Detector) baseline(ctx context.Context, first time.Time) (float64, error) {
	moods, err := d.src.MoodsInWindow(ctx, journal.AddDays(first, -baselineDays), first.Add(-time.Millisecond))
	if err != nil {
		return 0, fmt.Errorf("moments: baseline: %w", err)
	}
	if len(moods) == 0 {
		return defaultBaseline, nil
	}
	return avgMood(moods), nil
}

// load reads every stream for [from, to] and buckets it by day.
func (d *Detector) load(ctx context.Context, from, to time.Time) (map[string]day, error) {
	var (
		events       []journal.Event
		moods        []journal.Mood
		calendar     []journal.CalendarEvent
		health       []journal.HealthEntry
		locations    []journal.Location
		transactions []journal.Transaction
		notes        []journal.Note
		voice        []journal.VoiceMemo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { events, err = d.src.EventsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { moods, err = d.src.MoodsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { calendar, err = d.src.CalendarInWindow(gctx, from, to); return })
	g.Go(func() (err error) { health, err = d.src.HealthInWindow(gctx, from, to); return })
	g.Go(func() (err error) { locations, err = d.src.LocationsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { transactions, err = d.src.TransactionsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { notes, err = d.src.NotesInWindow(gctx, from, to); return })
	g.Go(func() (err error) { voice, err = d.src.VoiceMemosInWindow(gctx, from, to); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("moments: load: %w", err)
	}

	out := make(map[string]day)
	update := func(key string, fn func(*day)) {
		v := out[key]
		fn(&v)
		out[key] = v
	}
	for k, v := range journal.ByDay(events, d.loc) {
		update(k, func(x *day) { x.events = v })
	}
	for k, v := range journal.ByDay(moods, d.loc) {
		update(k, func(x *day) { x.moods = v })
	}
	for k, v := range journal.ByDay(calendar, d.loc) {
		update(k, func(x *day) { x.calendar = v })
	}
	for k, v := range journal.ByDay(health, d.loc) {
		update(k, func(x *day) { x.health = v })
	}
	for k, v := range journal.ByDay(locations, d.loc) {
		update(k, func(x *day) { x.locations = v })
	}
	for k, v := range journal.ByDay(transactions, d.loc) {
		update(k, func(x *day) { x.transactions = v })
	}
	for k, v := range journal.ByDay(notes, d.loc) {
		update(k, func(x *day) { x.notes = v })
	}
	for k, v := range journal.ByDay(voice, d.loc) {
		update(k, func(x *day) { x.voice = v })
	}
	return out, nil
}

// candidate is a pattern match before ranking. rule is the pattern's
// registration index.
type candidate struct {
	moment Moment
	rule   int
}

// rank orders candidates by score, then date, then later-registered rule,
// keeps the first per date and caps the result at maxMoments.
func rank(found []candidate) []Moment {
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.moment.Score != b.moment.Score {
			return a.moment.Score > b.moment.Score
		}
		if a.moment.Date != b.moment.Date {
			return a.moment.Date > b.moment.Date
		}
		return a.rule > b.rule
	})

	seen := make(map[string]bool)
	out := make([]Moment, 0, maxMoments)
	for _, c := range found {
		if seen[c.moment.Date] {
			continue
		}
		seen[c.moment.Date] = true
		out = append(out, c.moment)
		if len(out) == maxMoments {
			break
		}
	}
	return out
}

func avgMood(moods []journal.Mood) float64 {
	sum := 0
	for _, m := range moods {
		sum += m.Score
	}
	return float64(sum) / float64(len(moods))
}
