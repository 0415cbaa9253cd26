package event

import (
	"fmt"
	"time"
)

// Canonical event names emitted by the quiz funnel. The store accepts any
// non-empty name; these are the ones the summary aggregator understands.
const (
	QuizStart        = "quiz_start"
	QuestionAnswered = "question_answered"
	QuizCompleted    = "quiz_completed"
	ProfileViewed    = "profile_viewed"
	ProfileShared    = "profile_shared"
	EmailSubmitted   = "email_submitted"
)

// Event is one immutable telemetry record. Events are append-only: once
// written they are never mutated or deleted by the store.
type Event struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"eventName"`
	ClientTimestamp *time.Time             `json:"clientTimestamp,omitempty"`
	ServerTimestamp time.Time              `json:"serverTimestamp"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
}

// EffectiveTime is the authoritative windowing key: the producer's clock
// when it reported one, the ingest clock otherwise.
func (e *Event) EffectiveTime() time.Time {
	if e.ClientTimestamp != nil && !e.ClientTimestamp.IsZero() {
		return *e.ClientTimestamp
	}
	return e.ServerTimestamp
}

// Validate enforces the stored-event invariant: a name and a server
// timestamp are always present.
func (e *Event) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("event: eventName is required")
	}
	if e.ServerTimestamp.IsZero() {
		return fmt.Errorf("event %s: serverTimestamp is required", e.Name)
	}
	return nil
}

// StringAttr returns a string-typed attribute, false when absent or of
// another type.
func (e *Event) StringAttr(key string) (string, bool) {
	v, ok := e.Attributes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntAttr returns an integer attribute. JSON decoding yields float64, so
// both numeric kinds are accepted.
func (e *Event) IntAttr(key string) (int, bool) {
	switch v := e.Attributes[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
