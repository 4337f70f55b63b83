// Package journaltest opens throwaway journals and seeds them for tests.
package journaltest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/db"
	"github.com/lifelens/lifelens/internal/journal"
)

// Seeder writes events into a test journal.
type Seeder struct {
	t     *testing.T
	Store *journal.Store
}

// Open creates a journal in t.TempDir() that is closed on cleanup.
func Open(t *testing.T) *Seeder {
	t.Helper()
	return OpenAt(t, filepath.Join(t.TempDir(), "journal.db"))
}

// OpenAt opens (creating if needed) the journal at path, closed on cleanup.
func OpenAt(t *testing.T, path string) *Seeder {
	t.Helper()
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return &Seeder{t: t, Store: journal.NewStore(database)}
}

// Add stores an event of type typ with an optional record and returns it.
func (s *Seeder) Add(typ journal.EventType, at time.Time, summary string, rec journal.Enrichment) journal.EnrichedEvent {
	s.t.Helper()
	ee, err := s.Store.Add(context.Background(), journal.Event{Type: typ, Timestamp: at, Summary: summary}, rec)
	require.NoError(s.t, err)
	return ee
}

func (s *Seeder) Mood(at time.Time, score int) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeMood, at, "mood", &journal.Mood{Score: score})
}

func (s *Seeder) Spend(at time.Time, merchant string, amount float64) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeTransaction, at, merchant, &journal.Transaction{Merchant: merchant, Amount: -amount})
}

func (s *Seeder) Place(at time.Time, name string, lat, lng float64) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeLocation, at, name, &journal.Location{Name: name, Latitude: lat, Longitude: lng})
}

func (s *Seeder) Meeting(at time.Time, title string) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeCalendar, at, title, &journal.CalendarEvent{Title: title, End: at.Add(time.Hour)})
}

func (s *Seeder) Health(at time.Time, metric journal.HealthMetric, value float64) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add("", at, string(metric), &journal.HealthEntry{MetricType: metric, Value: value})
}

func (s *Seeder) Note(at time.Time, content string) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeNote, at, "note", &journal.Note{Content: content})
}

func (s *Seeder) Voice(at time.Time, transcript string) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypeVoiceMemo, at, "voice memo", &journal.VoiceMemo{DurationSeconds: 30, Transcript: transcript})
}

func (s *Seeder) Photo(at time.Time, path, indicators string) journal.EnrichedEvent {
	s.t.Helper()
	return s.Add(journal.TypePhoto, at, path, &journal.Photo{FilePath: path, MoodIndicators: indicators})
}
