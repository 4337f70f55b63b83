package forensic

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/snapshot"
)

// maxQuestions caps the suggested follow-up list.
const maxQuestions = 6

// Mood thresholds that trigger the low/high mood questions.
const (
	lowMoodScore  = 2
	highMoodScore = 4
)

var (
	positiveExpressions = map[string]bool{
		"happy": true, "joy": true, "joyful": true, "smiling": true,
		"excited": true, "content": true, "surprised": true,
	}
	negativeExpressions = map[string]bool{
		"sad": true, "angry": true, "tired": true, "stressed": true,
		"anxious": true, "upset": true, "fear": true, "disgust": true,
	}
)

// suggestQuestions builds the follow-up battery for target, in generation
// order, de-duplicated and capped at maxQuestions.
func suggestQuestions(target journal.EnrichedEvent, before []journal.EnrichedEvent, cross snapshot.Snapshot, window time.Duration, loc *time.Location) []string {
	var qs []string

	switch rec := target.Enrichment.(type) {
	case *journal.Transaction:
		place := rec.Merchant
		if place == "" {
			place = "this merchant"
		}
		qs = append(qs,
			fmt.Sprintf("How much do you usually spend at %s?", place),
			fmt.Sprintf("How often do you go to %s, and is it increasing?", place),
			fmt.Sprintf("Does spending at %s line up with your mood?", place),
		)
	case *journal.Mood:
		switch {
		case rec.Score <= lowMoodScore:
			qs = append(qs, "What happened in the hours before your mood dropped?")
			if len(cross.Transactions) > 0 {
				qs = append(qs, "Did you spend money around this low point, and did it help?")
			}
		case rec.Score >= highMoodScore:
			qs = append(qs, "What made this moment good, and can you recreate it?")
		}
	case *journal.Location:
		place := rec.Label()
		if place == "" {
			place = "this place"
		}
		qs = append(qs,
			fmt.Sprintf("How often do you visit %s?", place),
			fmt.Sprintf("What do you usually do at %s?", place),
		)
	case *journal.CalendarEvent:
		qs = append(qs, fmt.Sprintf("How did %q affect the rest of your day?", rec.Title))
		if cross.Mood != nil {
			qs = append(qs, fmt.Sprintf("Is your mood usually %d/5 around events like %q?", cross.Mood.Score, rec.Title))
		}
	case *journal.Note:
		qs = append(qs, "What prompted you to write this note?")
	case *journal.VoiceMemo:
		qs = append(qs, "What prompted you to record this memo?")
	case *journal.Photo:
		if q, ok := photoMoodQuestion(rec, cross.Mood); ok {
			qs = append(qs, q)
		}
	}

	local := target.Timestamp.In(loc)
	if len(before) == 0 && (local.Hour() != 0 || local.Minute() != 0) {
		qs = append(qs, fmt.Sprintf("Nothing was recorded in the %d minutes before this. What were you doing?", int(window.Minutes())))
	}
	qs = append(qs, fmt.Sprintf("What else happened on %s around %s?", local.Format("Monday, January 2"), local.Format("15:04")))

	return dedupe(qs, maxQuestions)
}

// photoMoodQuestion asks about a photo whose expression disagrees with the
// logged mood. Unreadable analysis is skipped.
func photoMoodQuestion(p *journal.Photo, mood *journal.Mood) (string, bool) {
	if mood == nil {
		return "", false
	}
	mi, err := journal.ParseMoodIndicators(p.MoodIndicators)
	if err != nil {
		log.Debug().Err(err).Str("photo", p.ID).Msg("skipping unreadable mood indicators")
		return "", false
	}
	if mi.Dominant == "" {
		return "", false
	}
	contradicts := (positiveExpressions[mi.Dominant] && mood.Score <= lowMoodScore) ||
		(negativeExpressions[mi.Dominant] && mood.Score >= highMoodScore)
	if !contradicts {
		return "", false
	}
	return fmt.Sprintf("You look %s in this photo but logged a mood of %d/5. Which one was true?", mi.Dominant, mood.Score), true
}

func dedupe(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
