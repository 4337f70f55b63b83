package forensic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lifelens/lifelens/internal/journal"
)

// Similarity weights. A candidate starts at baseSimilarity and gains each
// boost whose signal both events carry; the total is capped at maxSimilarity.
const (
	baseSimilarity  = 0.3
	maxSimilarity   = 1.0
	merchantBoost   = 0.4
	amountBoost     = 0.1  // only on top of a merchant match
	amountTolerance = 0.2  // candidate/target amount ratio within 1±0.2
	moodBoost       = 0.3
	moodTolerance   = 1
	locationBoost   = 0.4
	degreeTolerance = 0.005 // ~500 m on both axes
	titleBoost      = 0.4
	hourBoost       = 0.1
	hourTolerance   = 2

	// DefaultSimilarLimit caps the similar-moment list when no limit is given.
	DefaultSimilarLimit = 5
)

// Signals explaining a similarity score.
const (
	SignalMerchant = "merchant"
	SignalAmount   = "amount"
	SignalMood     = "mood"
	SignalLocation = "location"
	SignalTitle    = "title"
	SignalHour     = "hour"
)

// SimilarMoment is a past event resembling the target.
type SimilarMoment struct {
	Event      journal.EnrichedEvent `json:"event"`
	Similarity float64               `json:"similarity"`
	Signals    []string              `json:"signals"`
}

// Score rates how much candidate resembles target. Hours of day are compared in loc.
func Score(target, candidate journal.EnrichedEvent, loc *time.Location) (float64, []string) {
	score := baseSimilarity
	var signals []string

	switch t := target.Enrichment.(type) {
	case *journal.Transaction:
		if c, ok := candidate.Enrichment.(*journal.Transaction); ok && t.Merchant != "" && c.Merchant == t.Merchant {
			score += merchantBoost
			signals = append(signals, SignalMerchant)
			if t.Amount != 0 {
				ratio := c.Amount / t.Amount
				if math.Abs(ratio-1) <= amountTolerance {
					score += amountBoost
					signals = append(signals, SignalAmount)
				}
			}
		}
	case *journal.Mood:
		if c, ok := candidate.Enrichment.(*journal.Mood); ok && absInt(c.Score-t.Score) <= moodTolerance {
			score += moodBoost
			signals = append(signals, SignalMood)
		}
	case *journal.Location:
		if c, ok := candidate.Enrichment.(*journal.Location); ok &&
			math.Abs(c.Latitude-t.Latitude) < degreeTolerance &&
			math.Abs(c.Longitude-t.Longitude) < degreeTolerance {
			score += locationBoost
			signals = append(signals, SignalLocation)
		}
	case *journal.CalendarEvent:
		if c, ok := candidate.Enrichment.(*journal.CalendarEvent); ok && t.Title != "" && c.Title == t.Title {
			score += titleBoost
			signals = append(signals, SignalTitle)
		}
	}

	if absInt(target.Timestamp.In(loc).Hour()-candidate.Timestamp.In(loc).Hour()) <= hourTolerance {
		score += hourBoost
		signals = append(signals, SignalHour)
	}

	return math.Min(score, maxSimilarity), signals
}

// FindSimilar returns up to limit events of the target's type from other
// calendar days that score above the base similarity, best first.
func (r *Reconstructor) FindSimilar(ctx context.Context, target journal.EnrichedEvent, limit int) ([]SimilarMoment, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	candidates, err := r.src.EventsByType(ctx, target.Type)
	if err != nil {
		return nil, fmt.Errorf("forensic: similar candidates: %w", err)
	}

	targetDay := journal.DayKey(target.Timestamp, r.loc)
	var out []SimilarMoment
	for _, c := range candidates {
		if c.ID == target.ID || journal.DayKey(c.Timestamp, r.loc) == targetDay {
			continue
		}
		enriched, err := r.src.Enrich(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("forensic: enrich candidate: %w", err)
		}
		score, signals := Score(target, enriched, r.loc)
		if score <= baseSimilarity {
			continue
		}
		out = append(out, SimilarMoment{Event: enriched, Similarity: score, Signals: signals})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
