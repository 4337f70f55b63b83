package journal

import "time"

// DateLayout is the calendar-day key used across lifelens.
const DateLayout = "2006-01-02"

// Timed is implemented by every record that carries its owning event's timestamp.
type Timed interface {
	At() time.Time
}

func (e Event) At() time.Time         { return e.Timestamp }
func (t Transaction) At() time.Time   { return t.Timestamp }
func (l Location) At() time.Time      { return l.Timestamp }
func (c CalendarEvent) At() time.Time { return c.Timestamp }
func (h HealthEntry) At() time.Time   { return h.Timestamp }
func (m Mood) At() time.Time          { return m.Timestamp }
func (n Note) At() time.Time          { return n.Timestamp }
func (v VoiceMemo) At() time.Time     { return v.Timestamp }
func (p Photo) At() time.Time         { return p.Timestamp }
func (v Video) At() time.Time         { return v.Timestamp }

// Between returns the items with from <= At() <= to, preserving order.
func Between[T Timed](items []T, from, to time.Time) []T {
	var out []T
	for _, it := range items {
		ts := it.At()
		if !ts.Before(from) && !ts.After(to) {
			out = append(out, it)
		}
	}
	return out
}

// ByDay groups items by their calendar day in loc, preserving order within a day.
func ByDay[T Timed](items []T, loc *time.Location) map[string][]T {
	out := make(map[string][]T)
	for _, it := range items {
		key := DayKey(it.At(), loc)
		out[key] = append(out[key], it)
	}
	return out
}

// DayKey formats t's calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays shifts a day start by n calendar days, staying on midnight across
// DST changes.
func AddDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}
