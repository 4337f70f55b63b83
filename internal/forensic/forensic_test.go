package forensic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/journal/journaltest"
	"github.com/lifelens/lifelens/internal/snapshot"
)

func day(d, hour, min int) time.Time {
	return time.Date(2024, 5, d, hour, min, 0, 0, time.UTC)
}

func newReconstructor(s *journaltest.Seeder) *Reconstructor {
	return NewReconstructor(s.Store, snapshot.NewBuilder(s.Store), time.UTC, Options{})
}

func TestGetContext_UnknownEvent(t *testing.T) {
	s := journaltest.Open(t)
	_, err := newReconstructor(s).GetContext(context.Background(), "nope", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, journal.ErrEventNotFound))
}

func TestGetContext_NoNeighbours(t *testing.T) {
	s := journaltest.Open(t)
	target := s.Note(day(10, 15, 20), "lonely note")

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)

	assert.Empty(t, fc.Before)
	assert.Empty(t, fc.After)
	require.NotEmpty(t, fc.SuggestedQuestions)
	last := fc.SuggestedQuestions[len(fc.SuggestedQuestions)-1]
	assert.True(t, strings.HasPrefix(last, "What else happened on Friday, May 10 around 15:20"), last)
	assert.Contains(t, fc.SuggestedQuestions, "Nothing was recorded in the 30 minutes before this. What were you doing?")
	assert.Nil(t, fc.VisualComparison)
}

func TestGetContext_BeforeAndAfter(t *testing.T) {
	s := journaltest.Open(t)
	early := s.Mood(day(10, 11, 10), 3)
	mood := s.Mood(day(10, 11, 30), 2)
	target := s.Spend(day(10, 12, 0), "Starbucks", 5)
	note := s.Note(day(10, 12, 30), "after lunch")
	s.Note(day(10, 13, 30), "outside window")

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 60*time.Minute)
	require.NoError(t, err)

	require.Len(t, fc.Before, 2)
	assert.Equal(t, mood.ID, fc.Before[0].ID, "nearest neighbour comes first")
	assert.Equal(t, early.ID, fc.Before[1].ID)
	require.Len(t, fc.After, 1)
	assert.Equal(t, note.ID, fc.After[0].ID)

	for _, e := range append(fc.Before, fc.After...) {
		assert.NotEqual(t, target.ID, e.ID)
	}

	m, ok := fc.Before[0].Enrichment.(*journal.Mood)
	require.True(t, ok)
	assert.Equal(t, 2, m.Score)

	require.NotNil(t, fc.CrossDomain.Mood)
	assert.Len(t, fc.CrossDomain.Transactions, 1)
}

func TestGetContext_SimilarMoments(t *testing.T) {
	s := journaltest.Open(t)
	target := s.Spend(day(10, 8, 0), "Starbucks", 5)
	sameDay := s.Spend(day(10, 17, 0), "Starbucks", 5)
	other := s.Spend(day(3, 20, 0), "Starbucks", 50)
	s.Spend(day(4, 20, 0), "Bakery", 5)

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)

	require.Len(t, fc.SimilarMoments, 1)
	sm := fc.SimilarMoments[0]
	assert.Equal(t, other.ID, sm.Event.ID)
	assert.GreaterOrEqual(t, sm.Similarity, 0.5)
	assert.Equal(t, []string{SignalMerchant}, sm.Signals)
	for _, m := range fc.SimilarMoments {
		assert.NotEqual(t, sameDay.ID, m.Event.ID)
	}
}

func TestFindSimilar_SortedAndLimited(t *testing.T) {
	s := journaltest.Open(t)
	target := s.Spend(day(20, 9, 0), "Starbucks", 5)
	for d := 1; d <= 8; d++ {
		s.Spend(day(d, 9, 0), "Starbucks", 5) // 0.9
	}
	weaker := s.Spend(day(9, 22, 0), "Starbucks", 40) // 0.7

	r := newReconstructor(s)
	got, err := r.FindSimilar(context.Background(), target, 0)
	require.NoError(t, err)
	require.Len(t, got, DefaultSimilarLimit)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Similarity, got[i].Similarity)
	}
	for _, sm := range got {
		assert.NotEqual(t, weaker.ID, sm.Event.ID)
	}

	got, err = r.FindSimilar(context.Background(), target, 20)
	require.NoError(t, err)
	require.Len(t, got, 9)
	assert.Equal(t, weaker.ID, got[8].Event.ID)
}

func TestScore(t *testing.T) {
	base := day(1, 12, 0)
	ev := func(at time.Time, rec journal.Enrichment) journal.EnrichedEvent {
		return journal.EnrichedEvent{Event: journal.Event{Timestamp: at}, Enrichment: rec}
	}
	far := day(2, 23, 0)

	tests := []struct {
		name      string
		target    journal.EnrichedEvent
		candidate journal.EnrichedEvent
		want      float64
	}{
		{"no signals", ev(base, &journal.Note{}), ev(far, &journal.Note{}), 0.3},
		{"hour only", ev(base, &journal.Note{}), ev(day(2, 14, 0), &journal.Note{}), 0.4},
		{"merchant", ev(base, &journal.Transaction{Merchant: "A", Amount: -10}), ev(far, &journal.Transaction{Merchant: "A", Amount: -30}), 0.7},
		{"merchant and amount", ev(base, &journal.Transaction{Merchant: "A", Amount: -10}), ev(far, &journal.Transaction{Merchant: "A", Amount: -11.5}), 0.8},
		{"amount without merchant", ev(base, &journal.Transaction{Merchant: "A", Amount: -10}), ev(far, &journal.Transaction{Merchant: "B", Amount: -10}), 0.3},
		{"mood within one", ev(base, &journal.Mood{Score: 3}), ev(far, &journal.Mood{Score: 4}), 0.6},
		{"mood too far", ev(base, &journal.Mood{Score: 1}), ev(far, &journal.Mood{Score: 4}), 0.3},
		{"location close", ev(base, &journal.Location{Latitude: 40.0, Longitude: -73.0}), ev(far, &journal.Location{Latitude: 40.004, Longitude: -73.004}), 0.7},
		{"location far", ev(base, &journal.Location{Latitude: 40.0, Longitude: -73.0}), ev(far, &journal.Location{Latitude: 40.01, Longitude: -73.0}), 0.3},
		{"calendar title", ev(base, &journal.CalendarEvent{Title: "1:1"}), ev(far, &journal.CalendarEvent{Title: "1:1"}), 0.7},
		{"every transaction signal", ev(base, &journal.Transaction{Merchant: "A", Amount: -10}), ev(day(2, 12, 0), &journal.Transaction{Merchant: "A", Amount: -10}), 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.target, tt.candidate, time.UTC)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, maxSimilarity)
		})
	}
}

func TestSuggestQuestions_LowMoodWithSpending(t *testing.T) {
	s := journaltest.Open(t)
	s.Spend(day(10, 18, 10), "Bar", 30)
	target := s.Mood(day(10, 18, 20), 1)

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, "What happened in the hours before your mood dropped?", fc.SuggestedQuestions[0])
	assert.Equal(t, "Did you spend money around this low point, and did it help?", fc.SuggestedQuestions[1])
	assert.LessOrEqual(t, len(fc.SuggestedQuestions), maxQuestions)
	assert.NotContains(t, fc.SuggestedQuestions, "Nothing was recorded in the 30 minutes before this. What were you doing?")
}

func TestSuggestQuestions_MidnightSkipsStructuralQuestion(t *testing.T) {
	s := journaltest.Open(t)
	target := s.Mood(day(10, 0, 0), 5)

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What made this moment good, and can you recreate it?",
		"What else happened on Friday, May 10 around 00:00?",
	}, fc.SuggestedQuestions)
}

func TestSuggestQuestions_PhotoContradiction(t *testing.T) {
	s := journaltest.Open(t)
	s.Mood(day(10, 14, 5), 1)
	target := s.Photo(day(10, 14, 0), "beach.jpg", `{"dominant":"Happy"}`)

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)
	assert.Contains(t, fc.SuggestedQuestions, "You look happy in this photo but logged a mood of 1/5. Which one was true?")
}

func TestSuggestQuestions_MalformedIndicatorsAreSkipped(t *testing.T) {
	s := journaltest.Open(t)
	s.Mood(day(10, 14, 5), 1)
	target := s.Photo(day(10, 14, 0), "beach.jpg", `{"dominant":`)

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)
	for _, q := range fc.SuggestedQuestions {
		assert.NotContains(t, q, "in this photo")
	}
	assert.NotEmpty(t, fc.SuggestedQuestions)
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "d", "e", "f", "g"}, 6)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
}

func TestVisualComparison(t *testing.T) {
	s := journaltest.Open(t)
	target := s.Photo(day(10, 14, 0), "today.jpg", "")
	s.Photo(day(3, 15, 0), "last-week.jpg", "")
	s.Photo(day(3, 9, 0), "last-week-morning.jpg", "")

	fc, err := newReconstructor(s).GetContext(context.Background(), target.ID, 0)
	require.NoError(t, err)

	require.NotNil(t, fc.VisualComparison)
	assert.Equal(t, "today.jpg", fc.VisualComparison.Photo.FilePath)
	require.Len(t, fc.VisualComparison.Matches, 1)
	match := fc.VisualComparison.Matches[0]
	assert.Equal(t, "2024-05-03", match.Date)
	// The first photo of that day, not necessarily the similar one.
	assert.Equal(t, "last-week-morning.jpg", match.Photo.FilePath)
}
