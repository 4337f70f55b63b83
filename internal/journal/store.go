package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lifelens/lifelens/internal/db"
)

// tsLayout is the fixed-width UTC layout timestamps are stored in.
const tsLayout = "2006-01-02T15:04:05.000Z"

// Store provides read/write access to the lifelens SQLite journal.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given DB.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Conn exposes the underlying *sql.DB for low-level queries.
func (s *Store) Conn() *sql.DB {
	return s.db.Conn()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ---- Events ----

const eventColumns = `id, type, timestamp, summary, details, confidence, classification, COALESCE(content_hash,''), created_at`

// GetEvent returns a single event by id, or ErrEventNotFound.
func (s *Store) GetEvent(ctx context.Context, id string) (Event, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("store: event %q: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return e, fmt.Errorf("store: get event: %w", err)
	}
	return e, nil
}

// EventsInWindow returns events with from <= timestamp <= to, oldest first.
func (s *Store) EventsInWindow(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp ASC`,
		formatTS(from), formatTS(to),
	)
	if err != nil {
		return nil, fmt.Errorf("store: events in window: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// EventsByDateRange returns every event on the calendar days from..to
// (inclusive, in from's location), newest first.
func (s *Store) EventsByDateRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	start, end := DayBounds(from, to)
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp DESC`,
		formatTS(start), formatTS(end),
	)
	if err != nil {
		return nil, fmt.Errorf("store: events by date range: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// EventsByType returns every event of type t, oldest first.
func (s *Store) EventsByType(ctx context.Context, t EventType) ([]Event, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE type = ? ORDER BY timestamp ASC`, string(t),
	)
	if err != nil {
		return nil, fmt.Errorf("store: events by type: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

// CountEventsByType returns a count per event type.
func (s *Store) CountEventsByType(ctx context.Context) (map[EventType]int, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT type, COUNT(*) FROM events GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("store: count events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[EventType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[EventType(t)] = n
	}
	return counts, rows.Err()
}

// Fingerprint summarises the event table so callers can tell whether any
// event was added or removed since they last looked. Confrontation writes do
// not change it.
func (s *Store) Fingerprint(ctx context.Context) (string, error) {
	var n, maxRow int64
	var maxCreated string
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(rowid), 0), COALESCE(MAX(created_at), '') FROM events`,
	).Scan(&n, &maxRow, &maxCreated)
	if err != nil {
		return "", fmt.Errorf("store: fingerprint: %w", err)
	}
	return fmt.Sprintf("%d:%d:%s", n, maxRow, maxCreated), nil
}

// ---- Helpers ----

// DayBounds returns the first instant of from's calendar day and the last
// millisecond of to's calendar day, both in from's location.
func DayBounds(from, to time.Time) (time.Time, time.Time) {
	loc := from.Location()
	to = to.In(loc)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

// parseTime tries the stored layout first, then the layouts SQLite's own
// CURRENT_TIMESTAMP and go-sqlite3 may produce.
func parseTime(s string) time.Time {
	layouts := []string{
		tsLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func scanEvent(sc rowScanner) (Event, error) {
	var e Event
	var typ, ts, details, class, createdAt string
	if err := sc.Scan(&e.ID, &typ, &ts, &e.Summary, &details, &e.Confidence, &class, &e.ContentHash, &createdAt); err != nil {
		return e, err
	}
	e.Type = EventType(typ)
	e.Classification = Classification(class)
	e.Timestamp = parseTime(ts)
	e.CreatedAt = parseTime(createdAt)
	if details != "" && details != "{}" {
		_ = json.Unmarshal([]byte(details), &e.Details)
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
