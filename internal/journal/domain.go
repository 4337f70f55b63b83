package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Each domain query selects the owning event's timestamp first, followed by
// the record's own columns, so window filtering happens on events.timestamp.
const (
	transactionSelect = `SELECT e.timestamp, x.id, x.event_id, x.amount, x.currency, x.merchant, x.category
		FROM transactions x JOIN events e ON e.id = x.event_id`
	locationSelect = `SELECT e.timestamp, x.id, x.event_id, x.latitude, x.longitude, x.name, x.address
		FROM locations x JOIN events e ON e.id = x.event_id`
	calendarSelect = `SELECT e.timestamp, x.id, x.event_id, x.title, COALESCE(x.end_time,''), x.location, x.attendees
		FROM calendar_events x JOIN events e ON e.id = x.event_id`
	healthSelect = `SELECT e.timestamp, x.id, x.event_id, x.metric_type, x.value, x.unit
		FROM health_entries x JOIN events e ON e.id = x.event_id`
	moodSelect = `SELECT e.timestamp, x.id, x.event_id, x.score, x.note
		FROM moods x JOIN events e ON e.id = x.event_id`
	noteSelect = `SELECT e.timestamp, x.id, x.event_id, x.title, x.content
		FROM notes x JOIN events e ON e.id = x.event_id`
	voiceSelect = `SELECT e.timestamp, x.id, x.event_id, x.duration_seconds, x.transcript
		FROM voice_memos x JOIN events e ON e.id = x.event_id`
	photoSelect = `SELECT e.timestamp, x.id, x.event_id, x.file_path, x.description, x.mood_indicators
		FROM photos x JOIN events e ON e.id = x.event_id`
	videoSelect = `SELECT e.timestamp, x.id, x.event_id, x.file_path, x.duration_seconds
		FROM videos x JOIN events e ON e.id = x.event_id`

	windowClause  = ` WHERE e.timestamp BETWEEN ? AND ? ORDER BY e.timestamp ASC`
	byEventClause = ` WHERE x.event_id = ?`
)

func queryWindow[T any](ctx context.Context, s *Store, what, query string, from, to time.Time, scan func(rowScanner) (T, error)) ([]T, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query+windowClause, formatTS(from), formatTS(to))
	if err != nil {
		return nil, fmt.Errorf("store: %s in window: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// TransactionsInWindow returns transactions whose event falls in [from, to], oldest first.
func (s *Store) TransactionsInWindow(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	return queryWindow(ctx, s, "transactions", transactionSelect, from, to, scanTransaction)
}

// LocationsInWindow returns locations whose event falls in [from, to], oldest first.
func (s *Store) LocationsInWindow(ctx context.Context, from, to time.Time) ([]Location, error) {
	return queryWindow(ctx, s, "locations", locationSelect, from, to, scanLocation)
}

// CalendarInWindow returns calendar entries starting in [from, to], oldest first.
func (s *Store) CalendarInWindow(ctx context.Context, from, to time.Time) ([]CalendarEvent, error) {
	return queryWindow(ctx, s, "calendar events", calendarSelect, from, to, scanCalendar)
}

// HealthInWindow returns health entries in [from, to], oldest first.
func (s *Store) HealthInWindow(ctx context.Context, from, to time.Time) ([]HealthEntry, error) {
	return queryWindow(ctx, s, "health entries", healthSelect, from, to, scanHealth)
}

// MoodsInWindow returns mood entries in [from, to], oldest first.
func (s *Store) MoodsInWindow(ctx context.Context, from, to time.Time) ([]Mood, error) {
	return queryWindow(ctx, s, "moods", moodSelect, from, to, scanMood)
}

// NotesInWindow returns notes written in [from, to], oldest first.
func (s *Store) NotesInWindow(ctx context.Context, from, to time.Time) ([]Note, error) {
	return queryWindow(ctx, s, "notes", noteSelect, from, to, scanNote)
}

// VoiceMemosInWindow returns voice memos recorded in [from, to], oldest first.
func (s *Store) VoiceMemosInWindow(ctx context.Context, from, to time.Time) ([]VoiceMemo, error) {
	return queryWindow(ctx, s, "voice memos", voiceSelect, from, to, scanVoice)
}

// PhotosInWindow returns photos taken in [from, to], oldest first.
func (s *Store) PhotosInWindow(ctx context.Context, from, to time.Time) ([]Photo, error) {
	return queryWindow(ctx, s, "photos", photoSelect, from, to, scanPhoto)
}

// VideosInWindow returns videos recorded in [from, to] with their frames,
// oldest first.
func (s *Store) VideosInWindow(ctx context.Context, from, to time.Time) ([]Video, error) {
	videos, err := queryWindow(ctx, s, "videos", videoSelect, from, to, scanVideo)
	if err != nil {
		return nil, err
	}
	for i := range videos {
		if videos[i].Frames, err = s.videoFrames(ctx, videos[i].ID); err != nil {
			return nil, err
		}
	}
	return videos, nil
}

// PhotosOnDate returns the photos taken on date's calendar day (in date's location).
func (s *Store) PhotosOnDate(ctx context.Context, date time.Time) ([]Photo, error) {
	start, end := DayBounds(date, date)
	return s.PhotosInWindow(ctx, start, end)
}

// Enrich attaches the domain record matching e.Type. Event types without a
// domain table, and events whose record is missing, come back bare.
func (s *Store) Enrich(ctx context.Context, e Event) (EnrichedEvent, error) {
	out := EnrichedEvent{Event: e}

	var (
		rec Enrichment
		err error
	)
	switch e.Type {
	case TypeTransaction:
		rec, err = enrichOne[Transaction](ctx, s, transactionSelect, e.ID, scanTransaction)
	case TypeLocation:
		rec, err = enrichOne[Location](ctx, s, locationSelect, e.ID, scanLocation)
	case TypeCalendar:
		rec, err = enrichOne[CalendarEvent](ctx, s, calendarSelect, e.ID, scanCalendar)
	case TypeHealth, TypeWorkout, TypeSleep:
		rec, err = enrichOne[HealthEntry](ctx, s, healthSelect, e.ID, scanHealth)
	case TypeMood:
		rec, err = enrichOne[Mood](ctx, s, moodSelect, e.ID, scanMood)
	case TypeNote:
		rec, err = enrichOne[Note](ctx, s, noteSelect, e.ID, scanNote)
	case TypeVoiceMemo:
		rec, err = enrichOne[VoiceMemo](ctx, s, voiceSelect, e.ID, scanVoice)
	case TypePhoto:
		rec, err = enrichOne[Photo](ctx, s, photoSelect, e.ID, scanPhoto)
	case TypeVideo:
		rec, err = s.enrichVideo(ctx, e.ID)
	default:
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("store: enrich %s %q: %w", e.Type, e.ID, err)
	}
	out.Enrichment = rec
	return out, nil
}

// EnrichAll enriches every event in order.
func (s *Store) EnrichAll(ctx context.Context, events []Event) ([]EnrichedEvent, error) {
	out := make([]EnrichedEvent, 0, len(events))
	for _, e := range events {
		ee, err := s.Enrich(ctx, e)
		if err != nil {
			return nil, err
		}
		out = append(out, ee)
	}
	return out, nil
}

// enrichOne loads the single record owned by eventID. A missing record
// yields a nil Enrichment and no error.
func enrichOne[T any, P interface {
	*T
	Enrichment
}](ctx context.Context, s *Store, query, eventID string, scan func(rowScanner) (T, error)) (Enrichment, error) {
	v, err := scan(s.db.Conn().QueryRowContext(ctx, query+byEventClause, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return P(&v), nil
}

func (s *Store) enrichVideo(ctx context.Context, eventID string) (Enrichment, error) {
	v, err := scanVideo(s.db.Conn().QueryRowContext(ctx, videoSelect+byEventClause, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if v.Frames, err = s.videoFrames(ctx, v.ID); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) videoFrames(ctx context.Context, videoID string) ([]VideoFrame, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, video_id, offset_seconds, description, mood_indicators FROM video_frames WHERE video_id = ? ORDER BY offset_seconds`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var frames []VideoFrame
	for rows.Next() {
		var f VideoFrame
		if err := rows.Scan(&f.ID, &f.VideoID, &f.OffsetSeconds, &f.Description, &f.MoodIndicators); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// ---- Scanners ----

func scanTransaction(sc rowScanner) (Transaction, error) {
	var t Transaction
	var ts string
	err := sc.Scan(&ts, &t.ID, &t.EventID, &t.Amount, &t.Currency, &t.Merchant, &t.Category)
	t.Timestamp = parseTime(ts)
	return t, err
}

func scanLocation(sc rowScanner) (Location, error) {
	var l Location
	var ts string
	err := sc.Scan(&ts, &l.ID, &l.EventID, &l.Latitude, &l.Longitude, &l.Name, &l.Address)
	l.Timestamp = parseTime(ts)
	return l, err
}

func scanCalendar(sc rowScanner) (CalendarEvent, error) {
	var c CalendarEvent
	var ts, end, attendees string
	err := sc.Scan(&ts, &c.ID, &c.EventID, &c.Title, &end, &c.Location, &attendees)
	if err != nil {
		return c, err
	}
	c.Timestamp = parseTime(ts)
	if end != "" {
		c.End = parseTime(end)
	}
	if attendees != "" && attendees != "[]" {
		_ = json.Unmarshal([]byte(attendees), &c.Attendees)
	}
	return c, nil
}

func scanHealth(sc rowScanner) (HealthEntry, error) {
	var h HealthEntry
	var ts, metric string
	err := sc.Scan(&ts, &h.ID, &h.EventID, &metric, &h.Value, &h.Unit)
	h.Timestamp = parseTime(ts)
	h.MetricType = HealthMetric(metric)
	return h, err
}

func scanMood(sc rowScanner) (Mood, error) {
	var m Mood
	var ts string
	err := sc.Scan(&ts, &m.ID, &m.EventID, &m.Score, &m.Note)
	m.Timestamp = parseTime(ts)
	return m, err
}

func scanNote(sc rowScanner) (Note, error) {
	var n Note
	var ts string
	err := sc.Scan(&ts, &n.ID, &n.EventID, &n.Title, &n.Content)
	n.Timestamp = parseTime(ts)
	return n, err
}

func scanVoice(sc rowScanner) (VoiceMemo, error) {
	var v VoiceMemo
	var ts string
	err := sc.Scan(&ts, &v.ID, &v.EventID, &v.DurationSeconds, &v.Transcript)
	v.Timestamp = parseTime(ts)
	return v, err
}

func scanPhoto(sc rowScanner) (Photo, error) {
	var p Photo
	var ts string
	err := sc.Scan(&ts, &p.ID, &p.EventID, &p.FilePath, &p.Description, &p.MoodIndicators)
	p.Timestamp = parseTime(ts)
	return p, err
}

func scanVideo(sc rowScanner) (Video, error) {
	var v Video
	var ts string
	err := sc.Scan(&ts, &v.ID, &v.EventID, &v.FilePath, &v.DurationSeconds)
	v.Timestamp = parseTime(ts)
	return v, err
}
