package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/me/covweb/internal/store"
	"github.com/me/covweb/pkg/model"
)

// similarityThreshold is the ratio above which an existing event name is
// reported as similar to a requested one.
const similarityThreshold = 0.75

// eventSummary is the wire form of an event in GET /events.
type eventSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.logger.Error("list events", "error", err, "request_id", RequestIDFromContext(r.Context()))
		respondStatusError(w, http.StatusInternalServerError, "Error fetching events")
		return
	}

	out := make([]eventSummary, 0, len(events))
	for _, ev := range events {
		sum := eventSummary{ID: ev.ID, Name: ev.Name}
		if !ev.CreatedAt.IsZero() {
			sum.CreatedAt = ev.CreatedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondStatusError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondStatusError(w, http.StatusBadRequest, "Event name is required")
		return
	}

	status, result, err := s.createEvent(r, name, req)
	if err != nil {
		s.logger.Error("create event", "name", name, "error", err, "request_id", RequestIDFromContext(r.Context()))
		respondStatusError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, result)
}

// createEvent resolves a creation request against the existing events:
// an exact name match succeeds without inserting, a canonical match conflicts,
// near matches are reported unless the caller forces creation.
func (s *Server) createEvent(r *http.Request, name string, req model.CreateEventRequest) (int, model.CreateEventResult, error) {
	ctx := r.Context()
	canonical := model.CanonicalEventName(name)

	existing, err := s.store.GetEventByName(ctx, name)
	if err != nil {
		return 0, model.CreateEventResult{}, err
	}
	if existing != nil {
		return http.StatusOK, model.CreateEventResult{
			Status:  model.EventStatusSuccess,
			Event:   &model.EventRef{ID: existing.ID, Name: existing.Name},
			Message: "Event already exists",
		}, nil
	}

	existing, err = s.store.GetEventByCanonical(ctx, canonical)
	if err != nil {
		return 0, model.CreateEventResult{}, err
	}
	if existing != nil {
		return http.StatusConflict, model.CreateEventResult{
			Status:  model.EventStatusError,
			Message: fmt.Sprintf("An event with a similar name already exists: %q", existing.Name),
		}, nil
	}

	if !req.ForceCreate {
		events, err := s.store.ListEvents(ctx)
		if err != nil {
			return 0, model.CreateEventResult{}, err
		}
		if similar := similarEvents(canonical, events); len(similar) > 0 {
			return http.StatusOK, model.CreateEventResult{
				Status:        model.EventStatusSimilar,
				Message:       fmt.Sprintf("Found %d similar event name(s). Please choose one or create new anyway.", len(similar)),
				SimilarEvents: similar,
				RequestedName: name,
			}, nil
		}
	}

	createdBy := req.InspectorID
	if createdBy == "" {
		createdBy = "Unknown"
	}
	ev := &model.Event{Name: name, CanonicalName: canonical, CreatedBy: createdBy}
	if err := s.store.CreateEvent(ctx, ev); err != nil {
		if errors.Is(err, store.ErrDuplicateEvent) {
			return http.StatusOK, model.CreateEventResult{
				Status:  model.EventStatusSuccess,
				Event:   &model.EventRef{Name: name},
				Message: "Event already exists",
			}, nil
		}
		return 0, model.CreateEventResult{}, err
	}

	s.logger.Info("event created", "name", name, "id", ev.ID, "created_by", createdBy)
	return http.StatusOK, model.CreateEventResult{
		Status:  model.EventStatusSuccess,
		Event:   &model.EventRef{ID: ev.ID, Name: ev.Name},
		Message: "Event created successfully",
	}, nil
}

// similarEvents returns events whose canonical names are close to canonical
// but not equal, most similar first.
func similarEvents(canonical string, events []model.Event) []model.SimilarEvent {
	var out []model.SimilarEvent
	for _, ev := range events {
		ratio := similarity(canonical, ev.CanonicalName)
		if ratio > similarityThreshold && ratio < 1 {
			out = append(out, model.SimilarEvent{Name: ev.Name, Similarity: ratio})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	return out
}

// similarity is 1 minus the edit distance normalized by the longer length.
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
