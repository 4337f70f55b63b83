package confront

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/rs/zerolog/log"

	"github.com/lifelens/lifelens/internal/journal"
)

// Silent locations.
const (
	silentMinVisits = 4
	silentBase      = 0.3
	silentPerVisit  = 0.05
)

// place is a frequently visited location.
type place struct {
	label  string
	visits []journal.Location
	terms  []string // lower-cased name and address
}

// silentLocations fires when places visited at least silentMinVisits times
// never come up in any note of the period.
func silentLocations(w *window) (journal.Confrontation, bool) {
	places := frequentPlaces(w.locations)
	if len(places) == 0 {
		return journal.Confrontation{}, false
	}

	mentioned, err := mentionedPlaces(places, w.notes)
	if err != nil {
		log.Warn().Err(err).Msg("confront: skipping silent location check")
		return journal.Confrontation{}, false
	}

	var silent []place
	for i, p := range places {
		if !mentioned[i] {
			silent = append(silent, p)
		}
	}
	if len(silent) == 0 {
		return journal.Confrontation{}, false
	}

	var (
		names   []string
		points  []journal.DataPoint
		related []string
		most    int
	)
	for _, p := range silent {
		names = append(names, p.label)
		points = append(points, point(p.label, "%d visits", len(p.visits)))
		related = append(related, eventIDs(p.visits, func(l journal.Location) string { return l.EventID })...)
		most = max(most, len(p.visits))
	}
	return journal.Confrontation{
		Title: "Places you never write about",
		Insight: fmt.Sprintf("You keep going to %s but none of your notes mention it. What happens there?",
			strings.Join(names, ", ")),
		Severity:        silentBase + silentPerVisit*float64(most),
		Category:        journal.CategoryAnomaly,
		DataPoints:      points,
		RelatedEventIDs: related,
	}, true
}

// frequentPlaces groups visits by case-insensitive label and keeps the
// places with enough visits, most visited first.
func frequentPlaces(locations []journal.Location) []place {
	byKey := make(map[string]*place)
	var order []string
	for _, l := range locations {
		label := strings.TrimSpace(l.Label())
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		p, ok := byKey[key]
		if !ok {
			p = &place{label: label}
			byKey[key] = p
			order = append(order, key)
		}
		p.visits = append(p.visits, l)
		for _, term := range []string{l.Name, l.Address} {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" && !slices.Contains(p.terms, term) {
				p.terms = append(p.terms, term)
			}
		}
	}

	var out []place
	for _, key := range order {
		if p := byKey[key]; len(p.visits) >= silentMinVisits {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].visits) > len(out[j].visits) })
	return out
}

// mentionedPlaces scans every note once for all place terms and reports
// which places (by index) appear in at least one note.
func mentionedPlaces(places []place, notes []journal.Note) (map[int]bool, error) {
	mentioned := make(map[int]bool)
	if len(notes) == 0 {
		return mentioned, nil
	}

	var patterns []string
	var owner []int
	for i, p := range places {
		for _, term := range p.terms {
			patterns = append(patterns, term)
			owner = append(owner, i)
		}
	}
	ac, err := ahocorasick.NewBuilder().AddStrings(patterns).Build()
	if err != nil {
		return nil, fmt.Errorf("build place matcher: %w", err)
	}

	for _, n := range notes {
		text := strings.ToLower(n.Title + "\n" + n.Content)
		for _, m := range ac.FindAllOverlapping([]byte(text)) {
			mentioned[owner[m.PatternID]] = true
		}
		if len(mentioned) == len(places) {
			break
		}
	}
	return mentioned, nil
}
