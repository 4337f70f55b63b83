package confront

import (
	"fmt"

	"github.com/lifelens/lifelens/internal/journal"
)

// Mood trend.
const (
	moodTrendMinSamples = 4
	moodTrendMinDrop    = 0.5
	moodTrendFloor      = 0.5
	moodTrendPerPoint   = 0.1
)

// Exercise decline.
const (
	exerciseMinWorkouts = 4
	exerciseMinGap      = 2
	exerciseRatio       = 1.5
	exerciseBase        = 0.4
	exercisePerWorkout  = 0.1
)

// Spending trend.
const (
	spendTrendMinSamples = 6
	spendTrendRatio      = 1.3
	spendTrendBase       = 0.4
	spendTrendPerRatio   = 0.2
	spendTrendFromZero   = 0.8
)

func moodTrend(w *window) (journal.Confrontation, bool) {
	if len(w.moods) < moodTrendMinSamples {
		return journal.Confrontation{}, false
	}
	first, second := halves(w, w.moods)
	if len(first) == 0 || len(second) == 0 {
		return journal.Confrontation{}, false
	}
	before, after := avgMood(first), avgMood(second)
	drop := before - after
	if drop <= moodTrendMinDrop {
		return journal.Confrontation{}, false
	}
	return journal.Confrontation{
		Title: "Your mood is sliding",
		Insight: fmt.Sprintf("Your average mood fell from %.1f to %.1f over this period. Something in the second half is weighing on you.",
			before, after),
		Severity: moodTrendFloor + moodTrendPerPoint*drop,
		Category: journal.CategoryTrend,
		DataPoints: []journal.DataPoint{
			point("First half average", "%.1f", before),
			point("Second half average", "%.1f", after),
			point("Mood entries", "%d", len(w.moods)),
		},
		RelatedEventIDs: eventIDs(w.moods, func(m journal.Mood) string { return m.EventID }),
	}, true
}

func exerciseDecline(w *window) (journal.Confrontation, bool) {
	var workouts []journal.HealthEntry
	for _, h := range w.health {
		if h.MetricType == journal.MetricWorkout {
			workouts = append(workouts, h)
		}
	}
	if len(workouts) < exerciseMinWorkouts {
		return journal.Confrontation{}, false
	}
	first, second := halves(w, workouts)
	gap := len(first) - len(second)
	if gap < exerciseMinGap || float64(len(first)) <= exerciseRatio*float64(len(second)) {
		return journal.Confrontation{}, false
	}
	return journal.Confrontation{
		Title:    "You're working out less",
		Insight:  fmt.Sprintf("You logged %d workouts early in this period and only %d since.", len(first), len(second)),
		Severity: exerciseBase + exercisePerWorkout*float64(gap),
		Category: journal.CategoryTrend,
		DataPoints: []journal.DataPoint{
			point("First half workouts", "%d", len(first)),
			point("Second half workouts", "%d", len(second)),
		},
		RelatedEventIDs: eventIDs(workouts, func(h journal.HealthEntry) string { return h.EventID }),
	}, true
}

func spendingTrend(w *window) (journal.Confrontation, bool) {
	if len(w.transactions) < spendTrendMinSamples {
		return journal.Confrontation{}, false
	}
	first, second := halves(w, w.transactions)
	before, after := totalSpend(first), totalSpend(second)

	var severity float64
	switch {
	case after == 0:
		return journal.Confrontation{}, false
	case before == 0:
		severity = spendTrendFromZero
	case after > spendTrendRatio*before:
		severity = spendTrendBase + spendTrendPerRatio*(after/before-spendTrendRatio)
	default:
		return journal.Confrontation{}, false
	}
	return journal.Confrontation{
		Title:    "Your spending is climbing",
		Insight:  fmt.Sprintf("You spent %.2f in the second half of this period against %.2f in the first.", after, before),
		Severity: severity,
		Category: journal.CategoryTrend,
		DataPoints: []journal.DataPoint{
			point("First half spend", "%.2f", before),
			point("Second half spend", "%.2f", after),
			point("Transactions", "%d", len(w.transactions)),
		},
		RelatedEventIDs: eventIDs(second, func(t journal.Transaction) string { return t.EventID }),
	}, true
}
