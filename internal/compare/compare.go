// Package compare measures two periods side by side and reports how each
// metric moved between them.
package compare

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lifelens/lifelens/internal/journal"
)

const (
	topMerchants = 5

	// stableBand is the largest absolute percentage change still reported
	// as stable.
	stableBand = 5.0
)

// Direction of a metric change. It always follows the sign of the change;
// whether "down" is good news is up to the presenter.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Stable Direction = "stable"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

type MoodMetrics struct {
	Avg   float64 `json:"avg"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Count int     `json:"count"`
}

type MerchantSpend struct {
	Merchant string  `json:"merchant"`
	Total    float64 `json:"total"`
}

type SpendingMetrics struct {
	Total        float64         `json:"total"`
	AvgDaily     float64         `json:"avg_daily"`
	TopMerchants []MerchantSpend `json:"top_merchants"`
}

type HealthMetrics struct {
	AvgSteps     float64 `json:"avg_steps"`
	AvgSleep     float64 `json:"avg_sleep"`
	WorkoutCount int     `json:"workout_count"`
}

type CalendarMetrics struct {
	EventCount int     `json:"event_count"`
	AvgPerDay  float64 `json:"avg_per_day"`
}

type NotesMetrics struct {
	Count      int `json:"count"`
	VoiceCount int `json:"voice_count"`
}

type LocationMetrics struct {
	Distinct int `json:"distinct"`
}

type VisualMetrics struct {
	Photos           int            `json:"photos"`
	Videos           int            `json:"videos"`
	MoodDistribution map[string]int `json:"mood_distribution"`
}

// Metrics summarises one period.
type Metrics struct {
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Days      int             `json:"days"`
	Mood      MoodMetrics     `json:"mood"`
	Spending  SpendingMetrics `json:"spending"`
	Health    HealthMetrics   `json:"health"`
	Calendar  CalendarMetrics `json:"calendar"`
	Notes     NotesMetrics    `json:"notes"`
	Locations LocationMetrics `json:"locations"`
	Visual    VisualMetrics   `json:"visual"`
}

// Change is one metric's movement from the first period to the second.
type Change struct {
	Domain    string    `json:"domain"`
	Metric    string    `json:"metric"`
	P1        float64   `json:"p1"`
	P2        float64   `json:"p2"`
	ChangePct float64   `json:"change_pct"`
	Direction Direction `json:"direction"`
}

// Result is a full two-period comparison.
type Result struct {
	Period1 Metrics  `json:"period1"`
	Period2 Metrics  `json:"period2"`
	Changes []Change `json:"changes"`
}

// Source is the slice of the event store the comparison reads.
type Source interface {
	MoodsInWindow(ctx context.Context, from, to time.Time) ([]journal.Mood, error)
	TransactionsInWindow(ctx context.Context, from, to time.Time) ([]journal.Transaction, error)
	HealthInWindow(ctx context.Context, from, to time.Time) ([]journal.HealthEntry, error)
	CalendarInWindow(ctx context.Context, from, to time.Time) ([]journal.CalendarEvent, error)
	NotesInWindow(ctx context.Context, from, to time.Time) ([]journal.Note, error)
	VoiceMemosInWindow(ctx context.Context, from, to time.Time) ([]journal.VoiceMemo, error)
	LocationsInWindow(ctx context.Context, from, to time.Time) ([]journal.Location, error)
	PhotosInWindow(ctx context.Context, from, to time.Time) ([]journal.Photo, error)
	VideosInWindow(ctx context.Context, from, to time.Time) ([]journal.Video, error)
}

// Comparer computes period metrics. Calendar days are taken in loc.
type Comparer struct {
	src Source
	loc *time.Location
}

// New creates a Comparer.
func New(src Source, loc *time.Location) *Comparer {
	if loc == nil {
		loc = time.Local
	}
	return &Comparer{src: src, loc: loc}
}

// Compare measures both periods concurrently and lists the changes of every
// metric that is non-zero in at least one of them.
func (c *Comparer) Compare(ctx context.Context, p1, p2 Range) (Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { res.Period1, err = c.Measure(gctx, p1); return })
	g.Go(func() (err error) { res.Period2, err = c.Measure(gctx, p2); return })
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	res.Changes = Changes(res.Period1, res.Period2)
	return res, nil
}

// Measure computes the metrics of one period.
func (c *Comparer) Measure(ctx context.Context, r Range) (Metrics, error) {
	first := journal.StartOfDay(r.Start, c.loc)
	last := journal.StartOfDay(r.End, c.loc)
	from, to := journal.DayBounds(first, last)

	var (
		moods     []journal.Mood
		txs       []journal.Transaction
		health    []journal.HealthEntry
		calendar  []journal.CalendarEvent
		notes     []journal.Note
		voice     []journal.VoiceMemo
		locations []journal.Location
		photos    []journal.Photo
		videos    []journal.Video
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { moods, err = c.src.MoodsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { txs, err = c.src.TransactionsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { health, err = c.src.HealthInWindow(gctx, from, to); return })
	g.Go(func() (err error) { calendar, err = c.src.CalendarInWindow(gctx, from, to); return })
	g.Go(func() (err error) { notes, err = c.src.NotesInWindow(gctx, from, to); return })
	g.Go(func() (err error) { voice, err = c.src.VoiceMemosInWindow(gctx, from, to); return })
	g.Go(func() (err error) { locations, err = c.src.LocationsInWindow(gctx, from, to); return })
	g.Go(func() (err error) { photos, err = c.src.PhotosInWindow(gctx, from, to); return })
	g.Go(func() (err error) { videos, err = c.src.VideosInWindow(gctx, from, to); return })
	if err := g.Wait(); err != nil {
		return Metrics{}, fmt.Errorf("compare: measure %s: %w", first.Format(journal.DateLayout), err)
	}

	days := DayCount(first, last)
	m := Metrics{
		Start:     first.Format(journal.DateLayout),
		End:       last.Format(journal.DateLayout),
		Days:      days,
		Mood:      moodMetrics(moods),
		Spending:  spendingMetrics(txs, days),
		Health:    healthMetrics(health),
		Calendar:  CalendarMetrics{EventCount: len(calendar), AvgPerDay: float64(len(calendar)) / float64(days)},
		Notes:     NotesMetrics{Count: len(notes), VoiceCount: len(voice)},
		Locations: LocationMetrics{Distinct: distinctPlaces(locations)},
		Visual:    visualMetrics(photos, videos),
	}
	return m, nil
}

// DayCount is the number of calendar days from start to end inclusive,
// never less than one.
func DayCount(start, end time.Time) int {
	n := int(math.Round(end.Sub(start).Hours()/24)) + 1
	return max(n, 1)
}

func moodMetrics(moods []journal.Mood) MoodMetrics {
	if len(moods) == 0 {
		return MoodMetrics{}
	}
	m := MoodMetrics{Min: moods[0].Score, Max: moods[0].Score, Count: len(moods)}
	sum := 0
	for _, x := range moods {
		sum += x.Score
		m.Min = min(m.Min, x.Score)
		m.Max = max(m.Max, x.Score)
	}
	m.Avg = float64(sum) / float64(len(moods))
	return m
}

func spendingMetrics(txs []journal.Transaction, days int) SpendingMetrics {
	byMerchant := make(map[string]float64)
	var total float64
	for _, t := range txs {
		spend := t.Spend()
		if spend == 0 {
			continue
		}
		total += spend
		name := t.Merchant
		if name == "" {
			name = "Unknown"
		}
		byMerchant[name] += spend
	}

	top := make([]MerchantSpend, 0, len(byMerchant))
	for name, sum := range byMerchant {
		top = append(top, MerchantSpend{Merchant: name, Total: sum})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Total != top[j].Total {
			return top[i].Total > top[j].Total
		}
		return top[i].Merchant < top[j].Merchant
	})
	if len(top) > topMerchants {
		top = top[:topMerchants]
	}
	return SpendingMetrics{Total: total, AvgDaily: total / float64(days), TopMerchants: top}
}

func healthMetrics(entries []journal.HealthEntry) HealthMetrics {
	var steps, sleep []float64
	var h HealthMetrics
	for _, e := range entries {
		switch e.MetricType {
		case journal.MetricSteps:
			steps = append(steps, e.Value)
		case journal.MetricSleep:
			sleep = append(sleep, e.Value)
		case journal.MetricWorkout:
			h.WorkoutCount++
		}
	}
	h.AvgSteps = mean(steps)
	h.AvgSleep = mean(sleep)
	return h
}

// distinctPlaces counts case-insensitively distinct addresses, using the
// place name when a visit has no address.
func distinctPlaces(locations []journal.Location) int {
	seen := make(map[string]bool)
	for _, l := range locations {
		key := l.Address
		if key == "" {
			key = l.Name
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}

func visualMetrics(photos []journal.Photo, videos []journal.Video) VisualMetrics {
	v := VisualMetrics{Photos: len(photos), Videos: len(videos), MoodDistribution: map[string]int{}}
	count := func(owner, raw string) {
		mi, err := journal.ParseMoodIndicators(raw)
		if err != nil {
			log.Debug().Err(err).Str("record", owner).Msg("compare: skipping unreadable mood indicators")
			return
		}
		if mi.Dominant != "" {
			v.MoodDistribution[mi.Dominant]++
		}
	}
	for _, p := range photos {
		count(p.ID, p.MoodIndicators)
	}
	for _, vid := range videos {
		for _, f := range vid.Frames {
			count(f.ID, f.MoodIndicators)
		}
	}
	return v
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
