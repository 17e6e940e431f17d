package server

import (
	"net/http"
	"strconv"

	"github.com/me/covweb/pkg/model"
)

// parseInspectionQuery reads page, per_page, sort, order and event from the
// query string. Unparseable numbers fall back to the defaults.
func parseInspectionQuery(r *http.Request) model.InspectionQuery {
	q := model.DefaultInspectionQuery()
	v := r.URL.Query()

	if page := v.Get("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil {
			q.Page = n
		}
	}
	if perPage := v.Get("per_page"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil {
			q.PerPage = n
		}
	}
	if sort := v.Get("sort"); sort != "" {
		q.Sort = sort
	}
	if order := v.Get("order"); order != "" {
		q.Order = order
	}
	q.Event = v.Get("event")

	q.Clamp()
	return q
}

func (s *Server) handleInspectedVans(w http.ResponseWriter, r *http.Request) {
	q := parseInspectionQuery(r)

	recs, total, err := s.store.ListInspections(r.Context(), q)
	if err != nil {
		s.logger.Error("list inspections", "error", err, "request_id", RequestIDFromContext(r.Context()))
		respondStatusError(w, http.StatusInternalServerError, "Error fetching inspected vans")
		return
	}

	writeJSON(w, http.StatusOK, model.InspectionPage{
		Inspections: recs,
		TotalPages:  model.TotalPagesFor(total, q.PerPage),
		Total:       total,
		Page:        q.Page,
		PerPage:     q.PerPage,
	})
}

func (s *Server) handleMissingVideos(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.MissingVideos(r.Context())
	if err != nil {
		s.logger.Error("list missing videos", "error", err, "request_id", RequestIDFromContext(r.Context()))
		respondStatusError(w, http.StatusInternalServerError, "Error fetching missing videos")
		return
	}

	// Only the identifying fields are exposed here.
	out := make([]model.InspectionRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.InspectionRecord{
			VanNumber:   rec.VanNumber,
			InspectorID: rec.InspectorID,
			Date:        rec.Date,
			EventName:   rec.EventName,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCOVs(w http.ResponseWriter, r *http.Request) {
	covs, err := s.store.ListCOVs(r.Context())
	if err != nil {
		s.logger.Error("list covs", "error", err, "request_id", RequestIDFromContext(r.Context()))
		respondStatusError(w, http.StatusInternalServerError, "Error fetching COVs")
		return
	}
	writeJSON(w, http.StatusOK, covs)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
