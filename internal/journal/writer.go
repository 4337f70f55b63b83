package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// kindOf returns the event type an enrichment belongs to.
func kindOf(rec Enrichment) EventType {
	switch r := rec.(type) {
	case *Transaction:
		return TypeTransaction
	case *Location:
		return TypeLocation
	case *CalendarEvent:
		return TypeCalendar
	case *HealthEntry:
		switch r.MetricType {
		case MetricWorkout:
			return TypeWorkout
		case MetricSleep:
			return TypeSleep
		}
		return TypeHealth
	case *Mood:
		return TypeMood
	case *Note:
		return TypeNote
	case *VoiceMemo:
		return TypeVoiceMemo
	case *Photo:
		return TypePhoto
	case *Video:
		return TypeVideo
	}
	return TypeCustom
}

// Add persists an event and, when rec is non-nil, its domain record in one
// transaction. A missing Type is derived from rec. Events carrying a
// ContentHash that already exists are not inserted again; the stored event
// is returned instead.
func (s *Store) Add(ctx context.Context, e Event, rec Enrichment) (EnrichedEvent, error) {
	if e.Type == "" {
		e.Type = kindOf(rec)
	}
	if !ValidEventType(e.Type) {
		return EnrichedEvent{}, fmt.Errorf("store: invalid event type %q", e.Type)
	}
	if e.Timestamp.IsZero() {
		return EnrichedEvent{}, errors.New("store: event timestamp is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Confidence == 0 {
		e.Confidence = 1
	}
	if e.Classification == "" {
		e.Classification = ClassPrivate
	}

	detailsJSON := "{}"
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return EnrichedEvent{}, fmt.Errorf("store: encode details: %w", err)
		}
		detailsJSON = string(b)
	}
	var hash any
	if e.ContentHash != "" {
		hash = e.ContentHash
	}

	id := e.ID
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO events (id, type, timestamp, summary, details, confidence, classification, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(content_hash) DO NOTHING
			RETURNING id`,
			e.ID, string(e.Type), formatTS(e.Timestamp), e.Summary, detailsJSON,
			e.Confidence, string(e.Classification), hash,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			// Duplicate import.
			return tx.QueryRowContext(ctx, `SELECT id FROM events WHERE content_hash = ?`, e.ContentHash).Scan(&id)
		}
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if rec == nil {
			return nil
		}
		return insertRecord(ctx, tx, id, rec)
	})
	if err != nil {
		return EnrichedEvent{}, fmt.Errorf("store: add event: %w", err)
	}

	stored, err := s.GetEvent(ctx, id)
	if err != nil {
		return EnrichedEvent{}, err
	}
	return s.Enrich(ctx, stored)
}

func insertRecord(ctx context.Context, tx *sql.Tx, eventID string, rec Enrichment) error {
	var err error
	switch r := rec.(type) {
	case *Transaction:
		currency := r.Currency
		if currency == "" {
			currency = "USD"
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (id, event_id, amount, currency, merchant, category) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.Amount, currency, r.Merchant, r.Category)
	case *Location:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO locations (id, event_id, latitude, longitude, name, address) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.Latitude, r.Longitude, r.Name, r.Address)
	case *CalendarEvent:
		var end any
		if !r.End.IsZero() {
			end = formatTS(r.End)
		}
		attendees := "[]"
		if len(r.Attendees) > 0 {
			b, _ := json.Marshal(r.Attendees)
			attendees = string(b)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO calendar_events (id, event_id, title, end_time, location, attendees) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.Title, end, r.Location, attendees)
	case *HealthEntry:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO health_entries (id, event_id, metric_type, value, unit) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), eventID, string(r.MetricType), r.Value, r.Unit)
	case *Mood:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO moods (id, event_id, score, note) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.Score, r.Note)
	case *Note:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO notes (id, event_id, title, content) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.Title, r.Content)
	case *VoiceMemo:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO voice_memos (id, event_id, duration_seconds, transcript) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.DurationSeconds, r.Transcript)
	case *Photo:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO photos (id, event_id, file_path, description, mood_indicators) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), eventID, r.FilePath, r.Description, r.MoodIndicators)
	case *Video:
		videoID := uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO videos (id, event_id, file_path, duration_seconds) VALUES (?, ?, ?, ?)`,
			videoID, eventID, r.FilePath, r.DurationSeconds); err != nil {
			break
		}
		for _, f := range r.Frames {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO video_frames (id, video_id, offset_seconds, description, mood_indicators) VALUES (?, ?, ?, ?, ?)`,
				uuid.NewString(), videoID, f.OffsetSeconds, f.Description, f.MoodIndicators); err != nil {
				break
			}
		}
	default:
		return fmt.Errorf("unsupported enrichment %T", rec)
	}
	if err != nil {
		return fmt.Errorf("insert %s record: %w", kindOf(rec), err)
	}
	return nil
}
