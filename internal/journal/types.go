// Package journal defines the lifelens event store: the timestamped events every
// data source is normalised into, their domain records, and persisted findings.
package journal

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrEventNotFound is returned when an event id does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrConfrontationNotFound is returned when acknowledging or dismissing an unknown confrontation.
var ErrConfrontationNotFound = errors.New("confrontation not found")

// EventType classifies a stored event.
type EventType string

const (
	TypeTransaction EventType = "transaction"
	TypeLocation    EventType = "location"
	TypeCalendar    EventType = "calendar"
	TypeHealth      EventType = "health"
	TypeWorkout     EventType = "workout"
	TypeSleep       EventType = "sleep"
	TypeMood        EventType = "mood"
	TypeNote        EventType = "note"
	TypeVoiceMemo   EventType = "voice_memo"
	TypePhoto       EventType = "photo"
	TypeVideo       EventType = "video"
	TypeMessage     EventType = "message"
	TypeEmail       EventType = "email"
	TypeCall        EventType = "call"
	TypeMusic       EventType = "music"
	TypeWebVisit    EventType = "web_visit"
	TypeAppUsage    EventType = "app_usage"
	TypeWeather     EventType = "weather"
	TypeReminder    EventType = "reminder"
	TypeCustom      EventType = "custom"
)

// AllEventTypes lists every recognised event type in display order.
var AllEventTypes = []EventType{
	TypeTransaction, TypeLocation, TypeCalendar, TypeHealth, TypeWorkout, TypeSleep,
	TypeMood, TypeNote, TypeVoiceMemo, TypePhoto, TypeVideo, TypeMessage, TypeEmail,
	TypeCall, TypeMusic, TypeWebVisit, TypeAppUsage, TypeWeather, TypeReminder, TypeCustom,
}

// ValidEventType returns true if t is a recognised event type.
func ValidEventType(t EventType) bool {
	for _, v := range AllEventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Classification is the privacy tier of an event.
type Classification string

const (
	ClassPublic    Classification = "public"
	ClassPrivate   Classification = "private"
	ClassSensitive Classification = "sensitive"
)

// Event is the single record type all domain data is normalised into.
type Event struct {
	ID             string         `json:"id"`
	Type           EventType      `json:"type"`
	Timestamp      time.Time      `json:"timestamp"`
	Summary        string         `json:"summary"`
	Details        map[string]any `json:"details,omitempty"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	ContentHash    string         `json:"content_hash,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Enrichment is the domain record attached to an event. The set of
// implementations is closed: *Transaction, *Location, *CalendarEvent,
// *HealthEntry, *Mood, *Note, *VoiceMemo, *Photo and *Video.
type Enrichment interface {
	enrichment()
}

// EnrichedEvent is an Event plus its attached domain record, if any.
type EnrichedEvent struct {
	Event
	Enrichment Enrichment `json:"enrichment,omitempty"`
}

// Transaction is a money movement. Negative amounts are spending.
type Transaction struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Merchant  string    `json:"merchant"`
	Category  string    `json:"category,omitempty"`
}

// Spend returns the magnitude of the transaction if it is spending, else 0.
func (t Transaction) Spend() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return 0
}

// Location is a visited place.
type Location struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Name      string    `json:"name,omitempty"`
	Address   string    `json:"address,omitempty"`
}

// Label is the human name of the place, falling back to its address.
func (l Location) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Address
}

// CalendarEvent is a scheduled entry. Timestamp is its start.
type CalendarEvent struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	End       time.Time `json:"end,omitempty"`
	Location  string    `json:"location,omitempty"`
	Attendees []string  `json:"attendees,omitempty"`
}

// HealthMetric names the kind of a health entry.
type HealthMetric string

const (
	MetricSteps     HealthMetric = "steps"
	MetricSleep     HealthMetric = "sleep"
	MetricWorkout   HealthMetric = "workout"
	MetricHeartRate HealthMetric = "heart_rate"
)

// HealthEntry is one health measurement.
type HealthEntry struct {
	ID         string       `json:"id"`
	EventID    string       `json:"event_id"`
	Timestamp  time.Time    `json:"timestamp"`
	MetricType HealthMetric `json:"metric_type"`
	Value      float64      `json:"value"`
	Unit       string       `json:"unit,omitempty"`
}

// Mood is a self-reported mood on a 1-5 scale.
type Mood struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Note      string    `json:"note,omitempty"`
}

// Note is a written note.
type Note struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
}

// VoiceMemo is a recorded memo with its transcript.
type VoiceMemo struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds float64   `json:"duration_seconds"`
	Transcript      string    `json:"transcript,omitempty"`
}

// Photo is a photo plus its image analysis.
type Photo struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	Timestamp      time.Time `json:"timestamp"`
	FilePath       string    `json:"file_path"`
	Description    string    `json:"description,omitempty"`
	MoodIndicators string    `json:"mood_indicators,omitempty"` // JSON blob
}

// MoodIndicators is the decoded facial-expression analysis of a photo or frame.
type MoodIndicators struct {
	Dominant    string             `json:"dominant"`
	Expressions map[string]float64 `json:"expressions,omitempty"`
}

// ParseMoodIndicators decodes the analysis blob. An empty blob yields an
// empty result and no error.
func ParseMoodIndicators(raw string) (MoodIndicators, error) {
	var mi MoodIndicators
	if strings.TrimSpace(raw) == "" {
		return mi, nil
	}
	err := json.Unmarshal([]byte(raw), &mi)
	mi.Dominant = strings.ToLower(strings.TrimSpace(mi.Dominant))
	return mi, err
}

// Video is a recorded video and its analysed frames.
type Video struct {
	ID              string       `json:"id"`
	EventID         string       `json:"event_id"`
	Timestamp       time.Time    `json:"timestamp"`
	FilePath        string       `json:"file_path"`
	DurationSeconds float64      `json:"duration_seconds"`
	Frames          []VideoFrame `json:"frames,omitempty"`
}

// VideoFrame is one analysed frame of a Video.
type VideoFrame struct {
	ID             string  `json:"id"`
	VideoID        string  `json:"video_id"`
	OffsetSeconds  float64 `json:"offset_seconds"`
	Description    string  `json:"description,omitempty"`
	MoodIndicators string  `json:"mood_indicators,omitempty"`
}

func (*Transaction) enrichment()   {}
func (*Location) enrichment()      {}
func (*CalendarEvent) enrichment() {}
func (*HealthEntry) enrichment()   {}
func (*Mood) enrichment()          {}
func (*Note) enrichment()          {}
func (*VoiceMemo) enrichment()     {}
func (*Photo) enrichment()         {}
func (*Video) enrichment()         {}

// ConfrontationCategory classifies a confrontation.
type ConfrontationCategory string

const (
	CategoryCorrelation ConfrontationCategory = "correlation"
	CategoryTrend       ConfrontationCategory = "trend"
	CategoryAnomaly     ConfrontationCategory = "anomaly"
)

// DataPoint is one labelled value supporting a confrontation.
type DataPoint struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Confrontation is a scored finding the user's own data supports.
type Confrontation struct {
	ID              string                `json:"id"`
	Scope           string                `json:"scope"`
	Title           string                `json:"title"`
	Insight         string                `json:"insight"`
	Severity        float64               `json:"severity"`
	DataPoints      []DataPoint           `json:"data_points"`
	RelatedEventIDs []string              `json:"related_event_ids"`
	Category        ConfrontationCategory `json:"category"`
	Acknowledged    bool                  `json:"acknowledged"`
	GeneratedAt     time.Time             `json:"generated_at"`
}
