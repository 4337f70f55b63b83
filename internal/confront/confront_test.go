package confront

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/journal/journaltest"
)

// now closes a week running from June 1 00:00 to June 7 20:00, split at June 4 10:00.
var now = time.Date(2024, 6, 7, 20, 0, 0, 0, time.UTC)

func june(d, hour int) time.Time {
	return time.Date(2024, 6, d, hour, 0, 0, 0, time.UTC)
}

func generate(t *testing.T, s *journaltest.Seeder, p Period) Result {
	t.Helper()
	res, err := New(s.Store, time.UTC, func() time.Time { return now }).Generate(context.Background(), p)
	require.NoError(t, err)
	return res
}

func byTitle(res Result, title string) (journal.Confrontation, bool) {
	for _, c := range res.Confrontations {
		if c.Title == title {
			return c, true
		}
	}
	return journal.Confrontation{}, false
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("monthly")
	require.NoError(t, err)
	assert.Equal(t, Monthly, p)
	assert.Equal(t, 30, p.Days())
	assert.Equal(t, 7, Weekly.Days())

	_, err = ParsePeriod("yearly")
	assert.Error(t, err)
}

func TestGenerate_MoodDeclineIsIdempotent(t *testing.T) {
	s := journaltest.Open(t)
	for _, d := range []int{1, 2, 3} {
		s.Mood(june(d, 9), 5)
	}
	for _, d := range []int{5, 6, 7} {
		s.Mood(june(d, 9), 1)
	}

	first := generate(t, s, Weekly)
	second := generate(t, s, Weekly)
	assert.Equal(t, 1, first.Generated)
	assert.Equal(t, 1, second.Generated)

	c, ok := byTitle(second, "Your mood is sliding")
	require.True(t, ok)
	assert.Equal(t, journal.CategoryTrend, c.Category)
	assert.GreaterOrEqual(t, c.Severity, 0.7)
	assert.LessOrEqual(t, c.Severity, 1.0)
	assert.Len(t, c.RelatedEventIDs, 6)
	assert.Equal(t, "weekly", c.Scope)
	assert.True(t, c.GeneratedAt.Equal(now))

	stored, err := s.Store.ListConfrontations(context.Background(), 0)
	require.NoError(t, err)
	declining := 0
	for _, c := range stored {
		if c.Title == "Your mood is sliding" {
			declining++
		}
	}
	assert.Equal(t, 1, declining)
}

func TestGenerate_StableMoodHasNoTrend(t *testing.T) {
	s := journaltest.Open(t)
	for d := 1; d <= 7; d++ {
		s.Mood(june(d, 9), 3)
	}
	res := generate(t, s, Weekly)
	for _, c := range res.Confrontations {
		assert.NotEqual(t, journal.CategoryTrend, c.Category)
	}
}

func TestGenerate_TooFewSamplesNeverFire(t *testing.T) {
	s := journaltest.Open(t)
	s.Mood(june(1, 9), 5)
	s.Mood(june(2, 9), 5)
	s.Mood(june(6, 9), 1)
	for _, d := range []int{1, 2, 6, 7} {
		s.Spend(june(d, 12), "Shop", float64(10*d))
	}
	s.Health(june(1, 7), journal.MetricWorkout, 30)
	s.Health(june(2, 7), journal.MetricWorkout, 30)
	s.Health(june(3, 7), journal.MetricWorkout, 30)
	for i := 0; i < 3; i++ {
		s.Place(june(2+i, 18), "Gym", 1, 1)
	}

	res := generate(t, s, Weekly)
	assert.Zero(t, res.Generated)
	assert.Empty(t, res.Confrontations)
}

func TestGenerate_MeetingLoad(t *testing.T) {
	s := journaltest.Open(t)
	for _, d := range []int{2, 3} {
		for h := 9; h < 12; h++ {
			s.Meeting(june(d, h), fmt.Sprintf("sync %d", h))
		}
		s.Mood(june(d, 18), 2)
	}
	s.Mood(june(5, 18), 4)
	s.Mood(june(6, 18), 4)

	res := generate(t, s, Weekly)
	c, ok := byTitle(res, "Meetings drain you")
	require.True(t, ok)
	assert.Equal(t, journal.CategoryCorrelation, c.Category)
	assert.InDelta(t, 0.7, c.Severity, 1e-9)
	require.GreaterOrEqual(t, len(c.DataPoints), 2)
	assert.Equal(t, journal.DataPoint{Label: "Busy-day mood", Value: "2.0"}, c.DataPoints[0])
	assert.Equal(t, journal.DataPoint{Label: "Calm-day mood", Value: "4.0"}, c.DataPoints[1])
	assert.Len(t, c.RelatedEventIDs, 6)
}

func TestGenerate_SpendingMood(t *testing.T) {
	t.Run("fires when low days cost more", func(t *testing.T) {
		s := journaltest.Open(t)
		s.Mood(june(2, 9), 1)
		s.Spend(june(2, 12), "Bar", 50)
		s.Spend(june(2, 22), "Taxi", 40)
		s.Mood(june(5, 9), 5)
		s.Spend(june(5, 12), "Cafe", 10)
		s.Mood(june(6, 9), 4)
		s.Spend(june(6, 12), "Cafe", 10)
		s.Spend(june(6, 13), "Bakery", 5)

		c, ok := byTitle(generate(t, s, Weekly), "You spend when you're down")
		require.True(t, ok)
		assert.Equal(t, journal.CategoryCorrelation, c.Category)
		assert.Equal(t, "90.00", c.DataPoints[0].Value)
		assert.Equal(t, "12.50", c.DataPoints[1].Value)
		assert.Equal(t, 1.0, c.Severity)
	})

	t.Run("quiet when comparable", func(t *testing.T) {
		s := journaltest.Open(t)
		s.Mood(june(2, 9), 1)
		s.Spend(june(2, 12), "Cafe", 10)
		s.Spend(june(2, 13), "Cafe", 10)
		s.Mood(june(5, 9), 5)
		s.Spend(june(5, 12), "Cafe", 10)
		s.Spend(june(5, 13), "Cafe", 10)
		s.Spend(june(5, 14), "Cafe", 5)

		_, ok := byTitle(generate(t, s, Weekly), "You spend when you're down")
		assert.False(t, ok)
	})
}

func TestGenerate_ExerciseDecline(t *testing.T) {
	s := journaltest.Open(t)
	for d := 1; d <= 4; d++ {
		s.Health(june(d, 7), journal.MetricWorkout, 45)
	}
	s.Health(june(6, 7), journal.MetricWorkout, 20)
	s.Health(june(6, 23), journal.MetricSteps, 4000)

	c, ok := byTitle(generate(t, s, Weekly), "You're working out less")
	require.True(t, ok)
	assert.Equal(t, journal.CategoryTrend, c.Category)
	assert.InDelta(t, 0.7, c.Severity, 1e-9)
	assert.Len(t, c.RelatedEventIDs, 5)
}

func TestGenerate_SpendingTrend(t *testing.T) {
	s := journaltest.Open(t)
	for _, d := range []int{1, 2, 3} {
		s.Spend(june(d, 12), "Groceries", 10)
	}
	for _, d := range []int{5, 6, 7} {
		s.Spend(june(d, 12), "Groceries", 20)
	}

	res := generate(t, s, Weekly)
	c, ok := byTitle(res, "Your spending is climbing")
	require.True(t, ok)
	assert.Equal(t, journal.CategoryTrend, c.Category)
	assert.InDelta(t, 0.54, c.Severity, 1e-9)
	assert.Equal(t, "30.00", c.DataPoints[0].Value)
	assert.Equal(t, "60.00", c.DataPoints[1].Value)
}

func TestGenerate_CalendarOverload(t *testing.T) {
	s := journaltest.Open(t)
	for _, d := range []int{2, 3, 4} {
		for h := 9; h < 13; h++ {
			s.Meeting(june(d, h), fmt.Sprintf("block %d", h))
		}
	}

	c, ok := byTitle(generate(t, s, Weekly), "Your calendar is overloaded")
	require.True(t, ok)
	assert.Equal(t, journal.CategoryCorrelation, c.Category)
	assert.InDelta(t, 0.7, c.Severity, 1e-9)
	assert.Len(t, c.RelatedEventIDs, 12)
}

func TestGenerate_SilentLocations(t *testing.T) {
	visits := func(s *journaltest.Seeder, name string, n int) {
		for i := 0; i < n; i++ {
			s.Place(june(1+i, 18), name, 1, 1)
		}
	}

	t.Run("fires for an unmentioned place", func(t *testing.T) {
		s := journaltest.Open(t)
		visits(s, "Corner Bar", 4)
		s.Note(june(5, 21), "Long day at work")

		c, ok := byTitle(generate(t, s, Weekly), "Places you never write about")
		require.True(t, ok)
		assert.Equal(t, journal.CategoryAnomaly, c.Category)
		assert.Contains(t, c.Insight, "Corner Bar")
		assert.Equal(t, []journal.DataPoint{{Label: "Corner Bar", Value: "4 visits"}}, c.DataPoints)
		assert.InDelta(t, 0.5, c.Severity, 1e-9)
	})

	t.Run("quiet when a note mentions it", func(t *testing.T) {
		s := journaltest.Open(t)
		visits(s, "Corner Bar", 4)
		s.Note(june(5, 21), "Drinks at the corner bar again")

		_, ok := byTitle(generate(t, s, Weekly), "Places you never write about")
		assert.False(t, ok)
	})

	t.Run("quiet with only two visits", func(t *testing.T) {
		s := journaltest.Open(t)
		visits(s, "Corner Bar", 2)

		_, ok := byTitle(generate(t, s, Weekly), "Places you never write about")
		assert.False(t, ok)
	})
}

func TestFrequentPlacesAndMentions(t *testing.T) {
	locs := []journal.Location{
		{EventID: "a", Name: "Gym"}, {EventID: "b", Name: "gym"}, {EventID: "c", Name: "GYM"}, {EventID: "d", Name: "Gym"},
		{EventID: "e", Address: "1 Main St"}, {EventID: "f", Address: "1 Main St"}, {EventID: "g", Address: "1 Main St"},
		{EventID: "h", Address: "1 Main St"}, {EventID: "i", Address: "1 Main St"},
		{EventID: "j", Name: "Library"},
	}
	places := frequentPlaces(locs)
	require.Len(t, places, 2)
	assert.Equal(t, "1 Main St", places[0].label)
	assert.Equal(t, "Gym", places[1].label)
	assert.Equal(t, []string{"gym"}, places[1].terms)

	mentioned, err := mentionedPlaces(places, []journal.Note{{Title: "Errands", Content: "Dropped by 1 MAIN ST."}})
	require.NoError(t, err)
	assert.True(t, mentioned[0])
	assert.False(t, mentioned[1])
}

func TestGenerate_ScopesAreIndependent(t *testing.T) {
	s := journaltest.Open(t)
	for _, d := range []int{10, 11, 12} {
		s.Mood(time.Date(2024, 5, d, 9, 0, 0, 0, time.UTC), 5)
	}
	for _, d := range []int{1, 2, 3} {
		s.Mood(june(d, 9), 5)
	}
	for _, d := range []int{5, 6, 7} {
		s.Mood(june(d, 9), 1)
	}

	generate(t, s, Weekly)
	generate(t, s, Monthly)
	generate(t, s, Weekly)

	n, err := s.Store.CountConfrontations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
