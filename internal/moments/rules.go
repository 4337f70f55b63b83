package moments

import (
	"fmt"
	"math"

	"github.com/lifelens/lifelens/internal/journal"
)

const (
	maxMoments      = 7
	highlightDays   = 7
	baselineDays    = 14
	defaultBaseline = 3.0

	moodSwing    = 1.0 // distance from baseline for a drop or spike
	moodDropMax  = 2.5
	moodSpikeMin = 4.0
	moodScale    = 3.0

	stressfulMeetings  = 3
	stressfulMoodMax   = 3.0
	stressfulBase      = 0.6
	stressfulPerExtra  = 0.1
	activeHappyMoodMin = 4.0
	activeHappyBase    = 0.7
	activeHappyPerMood = 0.05
	discoverySpends    = 2
	discoveryScore     = 0.65
	productiveEntries  = 4
	productiveBase     = 0.5
	productivePerEntry = 0.05
	quietScore         = 0.3
)

// rule reports the moment a day qualifies for under one pattern.
type rule func(d day, baseline float64) (Moment, bool)

// rules in registration order. On equal score and date the later rule wins.
var rules = []rule{
	moodDrop,
	moodSpike,
	stressfulDay,
	activeHappy,
	discovery,
	productiveDay,
	quietDay,
}

func moodDrop(d day, baseline float64) (Moment, bool) {
	avg, ok := d.moodAvg()
	if !ok || avg > baseline-moodSwing || avg > moodDropMax {
		return Moment{}, false
	}
	return newMoment(TypeMoodDrop, d, "Mood dropped", "arrow-down",
		fmt.Sprintf("Mood averaged %.1f against a baseline of %.1f.", avg, baseline),
		math.Min(1, (baseline-avg)/moodScale), moodIDs(d.moods)), true
}

func moodSpike(d day, baseline float64) (Moment, bool) {
	avg, ok := d.moodAvg()
	if !ok || avg < baseline+moodSwing || avg < moodSpikeMin {
		return Moment{}, false
	}
	return newMoment(TypeMoodSpike, d, "Great day", "arrow-up",
		fmt.Sprintf("Mood averaged %.1f against a baseline of %.1f.", avg, baseline),
		math.Min(1, (avg-baseline)/moodScale), moodIDs(d.moods)), true
}

func stressfulDay(d day, _ float64) (Moment, bool) {
	n := len(d.calendar)
	if n < stressfulMeetings {
		return Moment{}, false
	}
	avg, ok := d.moodAvg()
	if ok && avg > stressfulMoodMax {
		return Moment{}, false
	}
	desc := fmt.Sprintf("%d calendar events", n)
	if ok {
		desc += fmt.Sprintf(" and mood averaged %.1f", avg)
	}
	ids := make([]string, 0, n)
	for _, c := range d.calendar {
		ids = append(ids, c.EventID)
	}
	return newMoment(TypeStressfulDay, d, "Packed schedule", "calendar", desc+".",
		math.Min(1, stressfulBase+stressfulPerExtra*float64(n-stressfulMeetings)), ids), true
}

func activeHappy(d day, _ float64) (Moment, bool) {
	avg, ok := d.moodAvg()
	if !ok || len(d.health) == 0 || avg < activeHappyMoodMin {
		return Moment{}, false
	}
	ids := moodIDs(d.moods)
	for _, h := range d.health {
		ids = append(ids, h.EventID)
	}
	return newMoment(TypeActiveHappy, d, "Active and happy", "heart",
		fmt.Sprintf("%d health entries with mood averaging %.1f.", len(d.health), avg),
		math.Min(1, activeHappyBase+activeHappyPerMood*avg), ids), true
}

func discovery(d day, _ float64) (Moment, bool) {
	if len(d.locations) == 0 || len(d.transactions) < discoverySpends {
		return Moment{}, false
	}
	var ids []string
	for _, l := range d.locations {
		ids = append(ids, l.EventID)
	}
	for _, t := range d.transactions {
		ids = append(ids, t.EventID)
	}
	place := d.locations[0].Label()
	if place == "" {
		place = "somewhere new"
	}
	return newMoment(TypeDiscovery, d, "Out exploring", "compass",
		fmt.Sprintf("Visited %s and made %d purchases.", place, len(d.transactions)),
		discoveryScore, ids), true
}

func productiveDay(d day, _ float64) (Moment, bool) {
	n := len(d.notes) + len(d.voice)
	if n < productiveEntries {
		return Moment{}, false
	}
	ids := make([]string, 0, n)
	for _, x := range d.notes {
		ids = append(ids, x.EventID)
	}
	for _, x := range d.voice {
		ids = append(ids, x.EventID)
	}
	return newMoment(TypeProductiveDay, d, "Productive day", "pencil",
		fmt.Sprintf("Captured %d notes and %d voice memos.", len(d.notes), len(d.voice)),
		math.Min(1, productiveBase+productivePerEntry*float64(n)), ids), true
}

func quietDay(d day, _ float64) (Moment, bool) {
	if len(d.events) != 1 {
		return Moment{}, false
	}
	return newMoment(TypeQuietDay, d, "Quiet day", "moon",
		"Only one thing was recorded.", quietScore, []string{d.events[0].ID}), true
}

func newMoment(t Type, d day, title, icon, desc string, score float64, ids []string) Moment {
	if ids == nil {
		ids = []string{}
	}
	return Moment{
		ID:              fmt.Sprintf("%s-%s", t, d.date),
		Type:            t,
		Date:            d.date,
		Title:           title,
		Description:     desc,
		Icon:            icon,
		Score:           score,
		RelatedEventIDs: ids,
	}
}

func moodIDs(moods []journal.Mood) []string {
	ids := make([]string, 0, len(moods))
	for _, m := range moods {
		ids = append(ids, m.EventID)
	}
	return ids
}
