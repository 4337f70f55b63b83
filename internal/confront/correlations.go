package confront

import (
	"fmt"
	"sort"

	"github.com/lifelens/lifelens/internal/journal"
)

// Meeting load vs. mood.
const (
	meetingMinMoods = 3
	busyDayMeetings = 3
	calmDayMeetings = 1
	meetingMoodGap  = 0.5
	meetingBase     = 0.4
	meetingPerPoint = 0.15
)

// Spending vs. mood.
const (
	spendMoodMinSamples = 5
	lowMoodDay          = 2.0
	highMoodDay         = 4.0
	spendMoodRatio      = 1.5
	spendMoodBase       = 0.5
	spendMoodPerRatio   = 0.2
	spendMoodOnlyLow    = 0.9
)

// Calendar overload.
const (
	overloadDayEvents = 4
	overloadMinDays   = 3
	overloadBase      = 0.4
	overloadPerDay    = 0.1
)

func meetingLoad(w *window) (journal.Confrontation, bool) {
	if len(w.moods) < meetingMinMoods {
		return journal.Confrontation{}, false
	}
	meetings := journal.ByDay(w.calendar, w.loc)

	var busy, calm []float64
	var related []string
	for day, mood := range dailyMood(w) {
		switch n := len(meetings[day]); {
		case n >= busyDayMeetings:
			busy = append(busy, mood)
			related = append(related, eventIDs(meetings[day], func(c journal.CalendarEvent) string { return c.EventID })...)
		case n <= calmDayMeetings:
			calm = append(calm, mood)
		}
	}
	if len(busy) == 0 || len(calm) == 0 {
		return journal.Confrontation{}, false
	}
	busyAvg, calmAvg := mean(busy), mean(calm)
	gap := calmAvg - busyAvg
	if gap < meetingMoodGap {
		return journal.Confrontation{}, false
	}
	sort.Strings(related)
	return journal.Confrontation{
		Title: "Meetings drain you",
		Insight: fmt.Sprintf("On days with %d or more meetings your mood averages %.1f. On calm days it is %.1f.",
			busyDayMeetings, busyAvg, calmAvg),
		Severity: meetingBase + meetingPerPoint*gap,
		Category: journal.CategoryCorrelation,
		DataPoints: []journal.DataPoint{
			point("Busy-day mood", "%.1f", busyAvg),
			point("Calm-day mood", "%.1f", calmAvg),
			point("Busy days", "%d", len(busy)),
			point("Calm days", "%d", len(calm)),
		},
		RelatedEventIDs: related,
	}, true
}

func spendingMood(w *window) (journal.Confrontation, bool) {
	if len(w.transactions) < spendMoodMinSamples {
		return journal.Confrontation{}, false
	}
	spends := journal.ByDay(w.transactions, w.loc)

	var low, high []float64
	var related []string
	for day, mood := range dailyMood(w) {
		spent := totalSpend(spends[day])
		switch {
		case mood <= lowMoodDay:
			low = append(low, spent)
			related = append(related, eventIDs(spends[day], func(t journal.Transaction) string { return t.EventID })...)
		case mood >= highMoodDay:
			high = append(high, spent)
		}
	}
	if len(low) == 0 || len(high) == 0 {
		return journal.Confrontation{}, false
	}
	lowAvg, highAvg := mean(low), mean(high)

	var severity float64
	switch {
	case lowAvg == 0:
		return journal.Confrontation{}, false
	case highAvg == 0:
		severity = spendMoodOnlyLow
	case lowAvg > spendMoodRatio*highAvg:
		severity = spendMoodBase + spendMoodPerRatio*(lowAvg/highAvg-spendMoodRatio)
	default:
		return journal.Confrontation{}, false
	}
	sort.Strings(related)
	return journal.Confrontation{
		Title:    "You spend when you're down",
		Insight:  fmt.Sprintf("On low-mood days you spend %.2f on average, against %.2f on good days.", lowAvg, highAvg),
		Severity: severity,
		Category: journal.CategoryCorrelation,
		DataPoints: []journal.DataPoint{
			point("Low-mood day spend", "%.2f", lowAvg),
			point("Good day spend", "%.2f", highAvg),
			point("Low-mood days", "%d", len(low)),
			point("Good days", "%d", len(high)),
		},
		RelatedEventIDs: related,
	}, true
}

func calendarOverload(w *window) (journal.Confrontation, bool) {
	var days []string
	var related []string
	for day, events := range journal.ByDay(w.calendar, w.loc) {
		if len(events) >= overloadDayEvents {
			days = append(days, day)
			related = append(related, eventIDs(events, func(c journal.CalendarEvent) string { return c.EventID })...)
		}
	}
	if len(days) < overloadMinDays {
		return journal.Confrontation{}, false
	}
	sort.Strings(days)
	sort.Strings(related)

	points := []journal.DataPoint{
		point("Overloaded days", "%d", len(days)),
		point("Calendar events", "%d", len(w.calendar)),
	}
	moods := dailyMood(w)
	var overloadedMoods []float64
	for _, d := range days {
		if m, ok := moods[d]; ok {
			overloadedMoods = append(overloadedMoods, m)
		}
	}
	if len(overloadedMoods) > 0 {
		points = append(points, point("Mood on overloaded days", "%.1f", mean(overloadedMoods)))
	}
	return journal.Confrontation{
		Title: "Your calendar is overloaded",
		Insight: fmt.Sprintf("%d days in this period had %d or more calendar events, starting %s.",
			len(days), overloadDayEvents, days[0]),
		Severity:        overloadBase + overloadPerDay*float64(len(days)),
		Category:        journal.CategoryCorrelation,
		DataPoints:      points,
		RelatedEventIDs: related,
	}, true
}
