package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/lifelens/lifelens/internal/journal"
)

// HourlySlice is one hour of a reconstructed day.
type HourlySlice struct {
	Hour         int               `json:"hour"`
	Label        string            `json:"label"`
	Snapshot     Snapshot          `json:"snapshot"`
	EventCount   int               `json:"event_count"`
	DominantType journal.EventType `json:"dominant_type,omitempty"`
}

// MoodPoint is one hour's mood on the day's arc.
type MoodPoint struct {
	Hour  int `json:"hour"`
	Score int `json:"score"`
}

// Day is a full day rebuilt as 24 hourly slices.
type Day struct {
	Date        string        `json:"date"`
	Slices      []HourlySlice `json:"slices"`
	MoodArc     []MoodPoint   `json:"mood_arc"`
	TotalEvents int           `json:"total_events"`
}

// BuildDay reconstructs date's calendar day (in date's location). Each hour
// covers [hh:00:00.000, hh:59:59.999]; its Location and Mood are the hour's
// first records rather than the ones nearest the half hour.
func (b *Builder) BuildDay(ctx context.Context, date time.Time) (Day, error) {
	loc := date.Location()
	dayStart := journal.StartOfDay(date, loc)
	_, dayEnd := journal.DayBounds(dayStart, dayStart)

	d, err := b.fetch(ctx, dayStart, dayEnd, true)
	if err != nil {
		return Day{}, fmt.Errorf("snapshot: build day: %w", err)
	}

	day := Day{
		Date:    dayStart.Format(journal.DateLayout),
		Slices:  make([]HourlySlice, 0, 24),
		MoodArc: []MoodPoint{},
	}
	for hour := 0; hour < 24; hour++ {
		from := time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), hour, 0, 0, 0, loc)
		to := from.Add(time.Hour - time.Millisecond)

		snap := Snapshot{
			Timestamp:      from.Add(30 * time.Minute),
			Location:       first(journal.Between(d.locations, from, to)),
			Mood:           first(journal.Between(d.moods, from, to)),
			Transactions:   journal.Between(d.transactions, from, to),
			CalendarEvents: journal.Between(d.calendar, from, to),
			HealthEntries:  journal.Between(d.health, from, to),
			Notes:          journal.Between(d.notes, from, to),
			VoiceMemos:     journal.Between(d.voice, from, to),
		}
		events := journal.Between(d.events, from, to)

		day.Slices = append(day.Slices, HourlySlice{
			Hour:         hour,
			Label:        fmt.Sprintf("%02d:00", hour),
			Snapshot:     snap,
			EventCount:   len(events),
			DominantType: dominantType(events),
		})
		day.TotalEvents += len(events)
		if snap.Mood != nil {
			day.MoodArc = append(day.MoodArc, MoodPoint{Hour: hour, Score: snap.Mood.Score})
		}
	}
	return day, nil
}

// dominantType returns the type with the strictly highest count; on a tie the
// type seen first wins.
func dominantType(events []journal.Event) journal.EventType {
	counts := make(map[journal.EventType]int)
	var order []journal.EventType
	for _, e := range events {
		if counts[e.Type] == 0 {
			order = append(order, e.Type)
		}
		counts[e.Type]++
	}
	var best journal.EventType
	bestN := 0
	for _, t := range order {
		if counts[t] > bestN {
			best, bestN = t, counts[t]
		}
	}
	return best
}
