package compare

import "math"

// metric extracts one comparable number from a period.
type metric struct {
	domain, name string
	value        func(Metrics) float64
}

var metrics = []metric{
	{"mood", "avg", func(m Metrics) float64 { return m.Mood.Avg }},
	{"mood", "count", func(m Metrics) float64 { return float64(m.Mood.Count) }},
	{"spending", "total", func(m Metrics) float64 { return m.Spending.Total }},
	{"spending", "avg_daily", func(m Metrics) float64 { return m.Spending.AvgDaily }},
	{"health", "avg_steps", func(m Metrics) float64 { return m.Health.AvgSteps }},
	{"health", "avg_sleep", func(m Metrics) float64 { return m.Health.AvgSleep }},
	{"health", "workout_count", func(m Metrics) float64 { return float64(m.Health.WorkoutCount) }},
	{"calendar", "event_count", func(m Metrics) float64 { return float64(m.Calendar.EventCount) }},
	{"calendar", "avg_per_day", func(m Metrics) float64 { return m.Calendar.AvgPerDay }},
	{"notes", "count", func(m Metrics) float64 { return float64(m.Notes.Count) }},
	{"notes", "voice_count", func(m Metrics) float64 { return float64(m.Notes.VoiceCount) }},
	{"locations", "distinct", func(m Metrics) float64 { return float64(m.Locations.Distinct) }},
	{"visual", "photos", func(m Metrics) float64 { return float64(m.Visual.Photos) }},
	{"visual", "videos", func(m Metrics) float64 { return float64(m.Visual.Videos) }},
}

// Changes lists the movement of every metric from p1 to p2, skipping
// metrics that are zero in both.
func Changes(p1, p2 Metrics) []Change {
	out := make([]Change, 0, len(metrics))
	for _, m := range metrics {
		if c, ok := Diff(m.domain, m.name, m.value(p1), m.value(p2)); ok {
			out = append(out, c)
		}
	}
	return out
}

// Diff computes a single change. It reports false when both values are zero.
func Diff(domain, name string, p1, p2 float64) (Change, bool) {
	if p1 == 0 && p2 == 0 {
		return Change{}, false
	}
	var pct float64
	switch {
	case p1 != 0:
		pct = (p2 - p1) / p1 * 100
	case p2 > 0:
		pct = 100
	}
	pct = math.Round(pct*10) / 10

	dir := Stable
	switch {
	case math.Abs(pct) <= stableBand:
	case pct > 0:
		dir = Up
	default:
		dir = Down
	}
	return Change{Domain: domain, Metric: name, P1: p1, P2: p2, ChangePct: pct, Direction: dir}, true
}
