package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Event is a named grouping under which inspections are filed.
type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CanonicalName string    `json:"-"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Event creation outcomes reported in CreateEventResult.Status.
const (
	EventStatusSuccess = "success"
	EventStatusError   = "error"
	EventStatusSimilar = "similar_events_found"
)

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Name        string `json:"name"`
	InspectorID string `json:"inspector_id,omitempty"`
	ForceCreate bool   `json:"force_create,omitempty"`
}

// CreateEventResult is the response of POST /events.
type CreateEventResult struct {
	Status        string         `json:"status"`
	Message       string         `json:"message,omitempty"`
	Event         *EventRef      `json:"event,omitempty"`
	SimilarEvents []SimilarEvent `json:"similar_events,omitempty"`
	RequestedName string         `json:"requested_name,omitempty"`
}

// EventRef identifies an event in a creation result.
type EventRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SimilarEvent is an existing event whose name resembles a requested one.
type SimilarEvent struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// CanonicalEventName folds case and collapses whitespace so that
// "Summer  Encampment " and "summer encampment" compare equal.
func CanonicalEventName(name string) string {
	return strings.Join(strings.Fields(cases.Fold().String(name)), " ")
}
