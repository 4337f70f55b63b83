package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReplaceConfrontations deletes every confrontation previously generated for
// scope and inserts batch, in a single transaction. Re-running with the same
// batch leaves exactly one copy of it.
func (s *Store) ReplaceConfrontations(ctx context.Context, scope string, batch []Confrontation) ([]Confrontation, error) {
	out := make([]Confrontation, len(batch))
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM confrontations WHERE scope = ?`, scope); err != nil {
			return fmt.Errorf("clear scope: %w", err)
		}
		for i, c := range batch {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			if c.GeneratedAt.IsZero() {
				c.GeneratedAt = time.Now()
			}
			c.Scope = scope
			c.Acknowledged = false

			points, _ := json.Marshal(nonNil(c.DataPoints))
			related, _ := json.Marshal(nonNil(c.RelatedEventIDs))
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO confrontations (id, scope, title, insight, severity, category, data_points, related_event_ids, generated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, scope, c.Title, c.Insight, c.Severity, string(c.Category),
				string(points), string(related), formatTS(c.GeneratedAt),
			); err != nil {
				return fmt.Errorf("insert confrontation: %w", err)
			}
			out[i] = c
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: replace confrontations: %w", err)
	}
	return out, nil
}

// ListConfrontations returns up to limit confrontations, most severe of the
// newest generation first. limit <= 0 means no limit.
func (s *Store) ListConfrontations(ctx context.Context, limit int) ([]Confrontation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, scope, title, insight, severity, category, data_points, related_event_ids, acknowledged, generated_at
		FROM confrontations
		ORDER BY generated_at DESC, severity DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list confrontations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Confrontation
	for rows.Next() {
		var c Confrontation
		var category, points, related, generatedAt string
		if err := rows.Scan(&c.ID, &c.Scope, &c.Title, &c.Insight, &c.Severity, &category,
			&points, &related, &c.Acknowledged, &generatedAt); err != nil {
			return nil, err
		}
		c.Category = ConfrontationCategory(category)
		c.GeneratedAt = parseTime(generatedAt)
		_ = json.Unmarshal([]byte(points), &c.DataPoints)
		_ = json.Unmarshal([]byte(related), &c.RelatedEventIDs)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountConfrontations returns the number of stored confrontations.
func (s *Store) CountConfrontations(ctx context.Context) (int, error) {
	var n int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM confrontations`).Scan(&n)
	return n, err
}

// AcknowledgeConfrontation marks a confrontation as seen.
func (s *Store) AcknowledgeConfrontation(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE confrontations SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: acknowledge confrontation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: confrontation %q: %w", id, ErrConfrontationNotFound)
	}
	return nil
}

// DismissConfrontation deletes a confrontation.
func (s *Store) DismissConfrontation(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM confrontations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: dismiss confrontation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: confrontation %q: %w", id, ErrConfrontationNotFound)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
