package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/confront"
	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/journal/journaltest"
)

var clock = time.Date(2024, 6, 7, 20, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*Engine, *journaltest.Seeder) {
	t.Helper()
	s := journaltest.Open(t)
	return New(s.Store, WithClock(func() time.Time { return clock }), WithLocation(time.UTC)), s
}

func TestForensicContext_UnknownEvent(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.ForensicContext(context.Background(), "missing", 0)
	assert.True(t, errors.Is(err, journal.ErrEventNotFound))
}

func TestMomentDataAndDay(t *testing.T) {
	e, s := newEngine(t)
	s.Mood(time.Date(2024, 6, 7, 9, 10, 0, 0, time.UTC), 4)
	s.Spend(time.Date(2024, 6, 7, 9, 20, 0, 0, time.UTC), "Cafe", 4)

	snap, err := e.MomentData(context.Background(), time.Date(2024, 6, 7, 9, 15, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	require.NotNil(t, snap.Mood)
	assert.Len(t, snap.Transactions, 1)

	day, err := e.HourlyReconstruction(context.Background(), time.Date(2024, 6, 7, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-07", day.Date)
	assert.Len(t, day.Slices, 24)
	assert.Equal(t, 2, day.TotalEvents)
}

func TestWeeklyHighlightsUseInjectedClock(t *testing.T) {
	e, s := newEngine(t)
	s.Note(time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC), "old")
	s.Note(time.Date(2024, 6, 6, 12, 0, 0, 0, time.UTC), "recent")

	got, err := e.WeeklyHighlights(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-06", got[0].Date)
}

func TestConfrontationLifecycle(t *testing.T) {
	e, s := newEngine(t)
	ctx := context.Background()
	for d := 1; d <= 3; d++ {
		s.Mood(time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC), 5)
	}
	for d := 5; d <= 7; d++ {
		s.Mood(time.Date(2024, 6, d, 9, 0, 0, 0, time.UTC), 1)
	}

	res, err := e.GenerateConfrontations(ctx, confront.Weekly)
	require.NoError(t, err)
	require.Equal(t, 1, res.Generated)
	id := res.Confrontations[0].ID

	require.NoError(t, e.Acknowledge(ctx, id))
	list, err := e.ListConfrontations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Acknowledged)

	st, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, st.TotalEvents)
	assert.Equal(t, 6, st.EventsByType[journal.TypeMood])
	assert.Equal(t, 1, st.Confrontations)

	require.NoError(t, e.Dismiss(ctx, id))
	assert.True(t, errors.Is(e.Dismiss(ctx, id), journal.ErrConfrontationNotFound))
	assert.True(t, errors.Is(e.Acknowledge(ctx, "nope"), journal.ErrConfrontationNotFound))
}

func TestComparePeriods(t *testing.T) {
	e, s := newEngine(t)
	s.Mood(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), 4)
	s.Mood(time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC), 4)

	res, err := e.ComparePeriods(context.Background(),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, res.Changes, 2)
	for _, c := range res.Changes {
		assert.Equal(t, "stable", string(c.Direction))
	}
}

func TestParseDateAndTimestamp(t *testing.T) {
	e, _ := newEngine(t)

	d, err := e.ParseDate("yesterday")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), d)

	d, err = e.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = e.ParseDate("29/02/2024")
	assert.Error(t, err)

	ts, err := e.ParseTimestamp("2024-06-01 14:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC), ts)

	ts, err = e.ParseTimestamp("now")
	require.NoError(t, err)
	assert.True(t, ts.Equal(clock))
}
