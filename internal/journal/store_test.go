package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/journal/journaltest"
)

func ts(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, time.UTC)
}

func TestAdd_DefaultsAndDerivedType(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()

	ee, err := s.Store.Add(ctx, journal.Event{Timestamp: ts(1, 7, 0), Summary: "run"},
		&journal.HealthEntry{MetricType: journal.MetricWorkout, Value: 30, Unit: "min"})
	require.NoError(t, err)

	assert.NotEmpty(t, ee.ID)
	assert.Equal(t, journal.TypeWorkout, ee.Type)
	assert.Equal(t, 1.0, ee.Confidence)
	assert.Equal(t, journal.ClassPrivate, ee.Classification)
	h, ok := ee.Enrichment.(*journal.HealthEntry)
	require.True(t, ok)
	assert.Equal(t, "min", h.Unit)
	assert.Equal(t, ee.ID, h.EventID)
	assert.True(t, h.Timestamp.Equal(ts(1, 7, 0)))
}

func TestAdd_Validation(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()

	_, err := s.Store.Add(ctx, journal.Event{Type: "bogus", Timestamp: ts(1, 0, 0)}, nil)
	assert.Error(t, err)

	_, err = s.Store.Add(ctx, journal.Event{Type: journal.TypeNote}, nil)
	assert.Error(t, err)
}

func TestAdd_ContentHashDeduplicates(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()
	e := journal.Event{Type: journal.TypeMood, Timestamp: ts(1, 9, 0), ContentHash: "abc"}

	first, err := s.Store.Add(ctx, e, &journal.Mood{Score: 3})
	require.NoError(t, err)
	second, err := s.Store.Add(ctx, e, &journal.Mood{Score: 5})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Enrichment.(*journal.Mood).Score)

	counts, err := s.Store.CountEventsByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[journal.TypeMood])
}

func TestGetEvent_NotFound(t *testing.T) {
	s := journaltest.Open(t)
	_, err := s.Store.GetEvent(context.Background(), "nope")
	assert.True(t, errors.Is(err, journal.ErrEventNotFound))
}

func TestEventQueries(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()
	a := s.Note(ts(1, 10, 0), "a")
	b := s.Mood(ts(1, 11, 0), 3)
	c := s.Note(ts(2, 23, 59), "c")
	s.Note(ts(3, 0, 0), "d")

	inWindow, err := s.Store.EventsInWindow(ctx, ts(1, 10, 0), ts(1, 11, 0))
	require.NoError(t, err)
	require.Len(t, inWindow, 2)
	assert.Equal(t, a.ID, inWindow[0].ID)
	assert.Equal(t, b.ID, inWindow[1].ID)

	byDate, err := s.Store.EventsByDateRange(ctx, ts(1, 12, 0), ts(2, 0, 0))
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	assert.Equal(t, c.ID, byDate[0].ID, "newest first")

	notes, err := s.Store.EventsByType(ctx, journal.TypeNote)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestEnrich(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()

	bare, err := s.Store.Add(ctx, journal.Event{Type: journal.TypeWeather, Timestamp: ts(1, 8, 0), Summary: "rain"}, nil)
	require.NoError(t, err)
	assert.Nil(t, bare.Enrichment)

	orphan, err := s.Store.Add(ctx, journal.Event{Type: journal.TypeMood, Timestamp: ts(1, 9, 0)}, nil)
	require.NoError(t, err)
	assert.Nil(t, orphan.Enrichment, "a missing record must not become a typed nil")

	video, err := s.Store.Add(ctx, journal.Event{Timestamp: ts(1, 10, 0)}, &journal.Video{
		FilePath: "clip.mp4",
		Frames:   []journal.VideoFrame{{OffsetSeconds: 2}, {OffsetSeconds: 1}},
	})
	require.NoError(t, err)
	v, ok := video.Enrichment.(*journal.Video)
	require.True(t, ok)
	require.Len(t, v.Frames, 2)
	assert.Equal(t, 1.0, v.Frames[0].OffsetSeconds)

	tx := s.Spend(ts(1, 11, 0), "Cafe", 4.5)
	got, err := s.Store.EnrichAll(ctx, []journal.Event{tx.Event})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.5, got[0].Enrichment.(*journal.Transaction).Spend())
}

func TestDomainWindows(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()
	s.Meeting(ts(4, 9, 0), "standup")
	s.Place(ts(4, 12, 0), "Park", 1, 2)
	s.Photo(ts(4, 15, 0), "p.jpg", "")
	s.Photo(ts(5, 15, 0), "q.jpg", "")

	cal, err := s.Store.CalendarInWindow(ctx, ts(4, 0, 0), ts(4, 23, 0))
	require.NoError(t, err)
	require.Len(t, cal, 1)
	assert.Equal(t, "standup", cal[0].Title)
	assert.True(t, cal[0].End.Equal(ts(4, 10, 0)))

	locs, err := s.Store.LocationsInWindow(ctx, ts(4, 0, 0), ts(4, 11, 59))
	require.NoError(t, err)
	assert.Empty(t, locs)

	photos, err := s.Store.PhotosOnDate(ctx, ts(4, 20, 0))
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "p.jpg", photos[0].FilePath)
}

func TestConfrontations(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()
	batch := []journal.Confrontation{
		{Title: "a", Severity: 0.4, Category: journal.CategoryTrend},
		{Title: "b", Severity: 0.9, Category: journal.CategoryAnomaly, DataPoints: []journal.DataPoint{{Label: "x", Value: "1"}}},
	}

	_, err := s.Store.ReplaceConfrontations(ctx, "weekly", batch)
	require.NoError(t, err)
	stored, err := s.Store.ReplaceConfrontations(ctx, "weekly", batch)
	require.NoError(t, err)
	_, err = s.Store.ReplaceConfrontations(ctx, "monthly", batch[:1])
	require.NoError(t, err)

	n, err := s.Store.CountConfrontations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := s.Store.ListConfrontations(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, s.Store.AcknowledgeConfrontation(ctx, stored[1].ID))
	require.NoError(t, s.Store.DismissConfrontation(ctx, stored[0].ID))

	all, err := s.Store.ListConfrontations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, c := range all {
		if c.ID == stored[1].ID {
			assert.True(t, c.Acknowledged)
			assert.Equal(t, []journal.DataPoint{{Label: "x", Value: "1"}}, c.DataPoints)
			assert.Equal(t, []string{}, c.RelatedEventIDs)
		}
	}
}

func TestFingerprint(t *testing.T) {
	s := journaltest.Open(t)
	ctx := context.Background()

	empty, err := s.Store.Fingerprint(ctx)
	require.NoError(t, err)

	s.Mood(ts(1, 9, 0), 3)
	one, err := s.Store.Fingerprint(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, empty, one)

	_, err = s.Store.ReplaceConfrontations(ctx, "weekly", []journal.Confrontation{{Title: "a", Category: journal.CategoryTrend}})
	require.NoError(t, err)
	again, err := s.Store.Fingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, one, again)
}

func TestDayHelpers(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC) // 21:00 on the 9th in loc

	assert.Equal(t, "2024-03-09", journal.DayKey(at, loc))
	start := journal.StartOfDay(at, loc)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, loc), journal.AddDays(start, 3))

	from, to := journal.DayBounds(start, start)
	assert.Equal(t, start, from)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, int(999*time.Millisecond), loc), to)

	mi, err := journal.ParseMoodIndicators(`{"dominant":" Happy "}`)
	require.NoError(t, err)
	assert.Equal(t, "happy", mi.Dominant)
	_, err = journal.ParseMoodIndicators("{")
	assert.Error(t, err)
}
