package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "covweb",
		Version:     "v1",
		Description: "COV inspection records, events and inspection videos",
		Endpoints: []endpointInfo{
			{"/inspected_vans", []string{"GET"}, "Paginated inspections. Query: page, per_page, sort, order, event"},
			{"/missing_videos", []string{"GET"}, "Inspections without an attached video"},
			{"/events", []string{"GET", "POST"}, "List events or create one by name"},
			{"/covs", []string{"GET"}, "Registered COV numbers"},
			{"/thumbnail/{name}", []string{"GET"}, "Video thumbnail image"},
			{"/video/{name}", []string{"GET"}, "Inspection video"},
			{"/logout", []string{"GET"}, "End the session and return to the start page"},
			{"/api/health", []string{"GET"}, "Server health and version"},
		},
	})
}
