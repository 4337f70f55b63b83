package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/lifelens/lifelens/internal/compare"
	"github.com/lifelens/lifelens/internal/confront"
	"github.com/lifelens/lifelens/internal/engine"
	"github.com/lifelens/lifelens/internal/forensic"
	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/moments"
	"github.com/lifelens/lifelens/internal/snapshot"
)

// DocRenderer renders human-readable reports, as plain text or markdown.
type DocRenderer struct {
	Markdown bool
}

func (r *DocRenderer) Render(v any, opts Options) (string, error) {
	d := &doc{md: r.Markdown, loc: opts.loc()}
	switch x := v.(type) {
	case snapshot.Snapshot:
		d.snapshot("Moment at "+d.clock(x.Timestamp, "Mon Jan 2 15:04"), x)
	case snapshot.Day:
		d.day(x)
	case *forensic.Context:
		d.forensic(x)
	case []moments.Moment:
		d.moments(x)
	case confront.Result:
		d.heading(1, fmt.Sprintf("%d confrontations", x.Generated))
		d.confrontations(x.Confrontations)
	case []journal.Confrontation:
		d.heading(1, "Confrontations")
		d.confrontations(x)
	case compare.Result:
		d.comparison(x)
	case engine.Status:
		d.status(x)
	default:
		return "", fmt.Errorf("render: cannot render %T", v)
	}
	return d.String(), nil
}

// doc accumulates a report. Headings, bullets and tables switch syntax
// with md.
type doc struct {
	strings.Builder
	md  bool
	loc *time.Location
}

func (d *doc) heading(level int, s string) {
	if d.md {
		fmt.Fprintf(d, "%s %s\n\n", strings.Repeat("#", level), s)
		return
	}
	under := "-"
	if level == 1 {
		under = "="
	}
	fmt.Fprintf(d, "%s\n%s\n", s, strings.Repeat(under, len([]rune(s))))
}

func (d *doc) item(format string, args ...any) {
	prefix := "  • "
	if d.md {
		prefix = "- "
	}
	d.WriteString(prefix + fmt.Sprintf(format, args...) + "\n")
}

func (d *doc) line(format string, args ...any) {
	fmt.Fprintf(d, format+"\n", args...)
}

func (d *doc) blank() { d.WriteString("\n") }

func (d *doc) clock(t time.Time, layout string) string {
	return t.In(d.loc).Format(layout)
}

func (d *doc) snapshot(title string, s snapshot.Snapshot) {
	d.heading(1, title)
	if s.Empty() {
		d.line("Nothing recorded.")
		return
	}
	if s.Location != nil {
		d.item("Location: %s", place(*s.Location))
	}
	if s.Mood != nil {
		d.item("Mood: %d/5%s", s.Mood.Score, suffix(s.Mood.Note))
	}
	for _, t := range s.Transactions {
		d.item("%s  %s", d.clock(t.Timestamp, "15:04"), money(t))
	}
	for _, c := range s.CalendarEvents {
		d.item("%s  %s", d.clock(c.Timestamp, "15:04"), c.Title)
	}
	for _, h := range s.HealthEntries {
		d.item("%s  %s %g%s", d.clock(h.Timestamp, "15:04"), h.MetricType, h.Value, suffix(h.Unit))
	}
	for _, n := range s.Notes {
		d.item("%s  note: %s", d.clock(n.Timestamp, "15:04"), excerpt(noteText(n), 60))
	}
	for _, v := range s.VoiceMemos {
		d.item("%s  voice memo: %s", d.clock(v.Timestamp, "15:04"), excerpt(v.Transcript, 60))
	}
	d.blank()
}

func (d *doc) day(day snapshot.Day) {
	d.heading(1, fmt.Sprintf("%s (%d events)", day.Date, day.TotalEvents))
	if len(day.MoodArc) > 0 {
		var arc []string
		for _, p := range day.MoodArc {
			arc = append(arc, fmt.Sprintf("%02d:00 %d", p.Hour, p.Score))
		}
		d.line("Mood arc: %s", strings.Join(arc, " → "))
		d.blank()
	}
	if d.md {
		d.line("| Hour | Events | Dominant | Mood | Where |")
		d.line("|---|---|---|---|---|")
	}
	for _, sl := range day.Slices {
		if sl.EventCount == 0 {
			continue
		}
		mood, where := "", ""
		if sl.Snapshot.Mood != nil {
			mood = fmt.Sprintf("%d/5", sl.Snapshot.Mood.Score)
		}
		if sl.Snapshot.Location != nil {
			where = place(*sl.Snapshot.Location)
		}
		if d.md {
			d.line("| %s | %d | %s | %s | %s |", sl.Label, sl.EventCount, sl.DominantType, mood, where)
			continue
		}
		d.line("%s  %2d events  %-12s %-4s %s", sl.Label, sl.EventCount, sl.DominantType, mood, where)
	}
	d.blank()
}

func (d *doc) forensic(fc *forensic.Context) {
	d.heading(1, "Forensic zoom: "+d.event(fc.Event))
	d.section("Before", fc.Before)
	d.section("After", fc.After)

	d.snapshot("What else was going on", fc.CrossDomain)

	d.heading(2, "Similar moments")
	if len(fc.SimilarMoments) == 0 {
		d.line("None found.")
	}
	for _, sm := range fc.SimilarMoments {
		d.item("%.2f  %s  (%s)", sm.Similarity, d.event(sm.Event), strings.Join(sm.Signals, ", "))
	}
	d.blank()

	if vc := fc.VisualComparison; vc != nil {
		d.heading(2, "Photos from similar days")
		for _, m := range vc.Matches {
			d.item("%s  %s (%.2f)", m.Date, m.Photo.FilePath, m.Similarity)
		}
		d.blank()
	}

	d.heading(2, "Questions worth asking")
	for _, q := range fc.SuggestedQuestions {
		d.item("%s", q)
	}
	d.blank()
}

func (d *doc) section(title string, events []journal.EnrichedEvent) {
	d.heading(2, title)
	if len(events) == 0 {
		d.line("Nothing recorded.")
	}
	for _, e := range events {
		d.item("%s", d.event(e))
	}
	d.blank()
}

// event is a one-line description of an enriched event.
func (d *doc) event(e journal.EnrichedEvent) string {
	head := fmt.Sprintf("%s %s", d.clock(e.Timestamp, "2006-01-02 15:04"), e.Type)
	var detail string
	switch r := e.Enrichment.(type) {
	case *journal.Transaction:
		detail = money(*r)
	case *journal.Location:
		detail = place(*r)
	case *journal.CalendarEvent:
		detail = r.Title
	case *journal.HealthEntry:
		detail = fmt.Sprintf("%s %g%s", r.MetricType, r.Value, suffix(r.Unit))
	case *journal.Mood:
		detail = fmt.Sprintf("%d/5%s", r.Score, suffix(r.Note))
	case *journal.Note:
		detail = excerpt(noteText(*r), 60)
	case *journal.VoiceMemo:
		detail = excerpt(r.Transcript, 60)
	case *journal.Photo:
		detail = r.FilePath
	case *journal.Video:
		detail = r.FilePath
	}
	if detail == "" {
		detail = e.Summary
	}
	if detail == "" {
		return head
	}
	return head + ": " + detail
}

func (d *doc) moments(ms []moments.Moment) {
	d.heading(1, "Moments")
	if len(ms) == 0 {
		d.line("Nothing stood out.")
		return
	}
	for _, m := range ms {
		d.item("%s  %s (%.2f): %s", m.Date, m.Title, m.Score, m.Description)
	}
	d.blank()
}

func (d *doc) confrontations(cs []journal.Confrontation) {
	if len(cs) == 0 {
		d.line("Nothing to confront you with.")
		return
	}
	for _, c := range cs {
		title := fmt.Sprintf("%s [%s, severity %.2f]", c.Title, c.Category, c.Severity)
		if c.Acknowledged {
			title += " (acknowledged)"
		}
		d.heading(2, title)
		d.line("%s", c.Insight)
		for _, p := range c.DataPoints {
			d.item("%s: %s", p.Label, p.Value)
		}
		d.line("id: %s", c.ID)
		d.blank()
	}
}

func (d *doc) comparison(res compare.Result) {
	d.heading(1, fmt.Sprintf("%s..%s vs %s..%s",
		res.Period1.Start, res.Period1.End, res.Period2.Start, res.Period2.End))
	if len(res.Changes) == 0 {
		d.line("No data in either period.")
		return
	}
	if d.md {
		d.line("| Metric | Before | After | Change |")
		d.line("|---|---|---|---|")
	}
	for _, c := range res.Changes {
		name := c.Domain + " " + strings.ReplaceAll(c.Metric, "_", " ")
		change := fmt.Sprintf("%+.1f%% %s", c.ChangePct, verdict(c))
		if d.md {
			d.line("| %s | %.2f | %.2f | %s |", name, c.P1, c.P2, change)
			continue
		}
		d.line("%-24s %10.2f → %-10.2f %s", name, c.P1, c.P2, change)
	}
	d.blank()
}

// verdict phrases a change for display. Less spending reads as an improvement.
func verdict(c compare.Change) string {
	if c.Domain != "spending" {
		return string(c.Direction)
	}
	switch c.Direction {
	case compare.Down:
		return "down (improved)"
	case compare.Up:
		return "up (worse)"
	}
	return string(c.Direction)
}

func (d *doc) status(st engine.Status) {
	d.heading(1, "Journal")
	d.item("Events: %d", st.TotalEvents)
	for _, t := range journal.AllEventTypes {
		if n := st.EventsByType[t]; n > 0 {
			d.item("%s: %d", t, n)
		}
	}
	d.item("Confrontations: %d", st.Confrontations)
	d.blank()
}

func money(t journal.Transaction) string {
	s := fmt.Sprintf("%.2f", t.Amount)
	if t.Currency != "" {
		s += " " + t.Currency
	}
	if t.Merchant != "" {
		s += " at " + t.Merchant
	}
	return s
}

func place(l journal.Location) string {
	if label := l.Label(); label != "" {
		return label
	}
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

func noteText(n journal.Note) string {
	if n.Title != "" {
		return n.Title
	}
	return n.Content
}

func suffix(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
