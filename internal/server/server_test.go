package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/covweb/internal/config"
	"github.com/me/covweb/internal/logging"
	"github.com/me/covweb/internal/store"
	"github.com/me/covweb/pkg/model"
)

func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st := testStore(t)
	cfg := config.DefaultServerConfig()
	cfg.VideoDir = t.TempDir()
	cfg.ThumbDir = t.TempDir()
	return New(cfg, st, logging.Discard()), st
}

func seedInspections(t *testing.T, st store.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &model.InspectionRecord{
			VanNumber:   fmt.Sprintf("%d", 100+i),
			Date:        fmt.Sprintf("2024-05-01T10:%02d", i),
			InspectorID: "555001",
			CreatedAt:   fmt.Sprintf("2024-05-01T10:%02d:00Z", i),
		}
		if i%2 == 0 {
			rec.VideoFilename = fmt.Sprintf("cov%d.mov", 100+i)
		}
		if err := st.CreateInspection(context.Background(), rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestInspectedVans_Page(t *testing.T) {
	srv, st := testServer(t)
	seedInspections(t, st, 28)

	w := do(t, srv, "GET", "/inspected_vans?page=2&per_page=10&sort=date", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var page model.InspectionPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if page.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", page.TotalPages)
	}
	if page.Total != 28 || page.Page != 2 || page.PerPage != 10 {
		t.Errorf("unexpected meta %+v", page)
	}
	if len(page.Inspections) != 10 {
		t.Errorf("len(inspections) = %d, want 10", len(page.Inspections))
	}
}

func TestInspectedVans_EmptyStore(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, "GET", "/inspected_vans", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"inspections":[]`) {
		t.Errorf("expected empty inspections array, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total_pages":0`) {
		t.Errorf("expected total_pages 0, got %s", w.Body.String())
	}
}

func TestParseInspectionQuery(t *testing.T) {
	tests := []struct {
		query string
		want  model.InspectionQuery
	}{
		{"", model.InspectionQuery{Page: 1, PerPage: 10, Sort: "created_at", Order: "desc"}},
		{"page=abc&per_page=-1", model.InspectionQuery{Page: 1, PerPage: 10, Sort: "created_at", Order: "desc"}},
		{"page=4&per_page=25&sort=van_date&order=asc&event=sarex", model.InspectionQuery{Page: 4, PerPage: 25, Sort: "van_date", Order: "asc", Event: "sarex"}},
		{"per_page=1000", model.InspectionQuery{Page: 1, PerPage: 100, Sort: "created_at", Order: "desc"}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/inspected_vans?"+tt.query, nil)
		if got := parseInspectionQuery(r); got != tt.want {
			t.Errorf("parseInspectionQuery(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestMissingVideos(t *testing.T) {
	srv, st := testServer(t)

	w := do(t, srv, "GET", "/missing_videos", nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty store body = %s, want []", w.Body.String())
	}

	seedInspections(t, st, 4)
	w = do(t, srv, "GET", "/missing_videos", nil)
	var recs []model.InspectionRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].VanNumber != "101" || recs[0].InspectorID != "555001" {
		t.Errorf("first = %+v", recs[0])
	}
	if recs[0].ID != "" {
		t.Error("missing_videos should not expose record ids")
	}
}

func TestCOVs(t *testing.T) {
	srv, st := testServer(t)
	seedInspections(t, st, 3)

	w := do(t, srv, "GET", "/covs", nil)
	var covs []model.COV
	if err := json.Unmarshal(w.Body.Bytes(), &covs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(covs) != 3 || covs[0].Number != "100" {
		t.Errorf("covs = %+v", covs)
	}
}

func TestEvents_CreateFlow(t *testing.T) {
	srv, _ := testServer(t)

	decode := func(w *httptest.ResponseRecorder) model.CreateEventResult {
		t.Helper()
		var res model.CreateEventResult
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("invalid JSON: %v (%s)", err, w.Body.String())
		}
		return res
	}

	// Empty name.
	w := do(t, srv, "POST", "/events", map[string]any{"name": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", w.Code)
	}

	// Create.
	w = do(t, srv, "POST", "/events", map[string]any{"name": " Summer Encampment ", "inspector_id": "555001"})
	res := decode(w)
	if w.Code != http.StatusOK || res.Status != model.EventStatusSuccess || res.Event == nil || res.Event.Name != "Summer Encampment" {
		t.Fatalf("create: status=%d result=%+v", w.Code, res)
	}

	// Exact match.
	w = do(t, srv, "POST", "/events", map[string]any{"name": "Summer Encampment"})
	res = decode(w)
	if res.Status != model.EventStatusSuccess || res.Message != "Event already exists" {
		t.Errorf("exact match result = %+v", res)
	}

	// Canonical match.
	w = do(t, srv, "POST", "/events", map[string]any{"name": "summer   ENCAMPMENT"})
	if w.Code != http.StatusConflict {
		t.Errorf("canonical match status = %d, want 409", w.Code)
	}

	// Near match.
	w = do(t, srv, "POST", "/events", map[string]any{"name": "Summer Encampmant 2"})
	res = decode(w)
	if res.Status != model.EventStatusSimilar || len(res.SimilarEvents) != 1 || res.RequestedName != "Summer Encampmant 2" {
		t.Errorf("near match result = %+v", res)
	}

	// Forced.
	w = do(t, srv, "POST", "/events", map[string]any{"name": "Summer Encampmant 2", "force_create": true})
	res = decode(w)
	if res.Status != model.EventStatusSuccess || res.Message != "Event created successfully" {
		t.Errorf("forced result = %+v", res)
	}

	// Listing is sorted by name.
	w = do(t, srv, "GET", "/events", nil)
	var events []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(events) != 2 || events[0].Name != "Summer Encampmant 2" || events[1].Name != "Summer Encampment" {
		t.Errorf("events = %+v", events)
	}
}

func TestCreateEvent_InvalidJSON(t *testing.T) {
	srv, _ := testServer(t)
	req := httptest.NewRequest("POST", "/events", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("sarex", "sarex"); got != 1 {
		t.Errorf("identical similarity = %v, want 1", got)
	}
	if got := similarity("", ""); got != 1 {
		t.Errorf("empty similarity = %v, want 1", got)
	}
	if got := similarity("abcd", "wxyz"); got != 0 {
		t.Errorf("disjoint similarity = %v, want 0", got)
	}
	if got := similarity("summer encampment", "summer encampmant"); got <= similarityThreshold {
		t.Errorf("one-letter typo similarity = %v, want > %v", got, similarityThreshold)
	}
}

func TestThumbnail(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, "GET", "/thumbnail/missing.jpg", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("placeholder: status=%d type=%q", w.Code, w.Header().Get("Content-Type"))
	}

	if err := os.WriteFile(filepath.Join(srv.config.ThumbDir, "cov100.jpg"), []byte("JPEGDATA"), 0o644); err != nil {
		t.Fatal(err)
	}
	w = do(t, srv, "GET", "/thumbnail/cov100.jpg", nil)
	if w.Body.String() != "JPEGDATA" {
		t.Errorf("thumbnail body = %q", w.Body.String())
	}
}

func TestVideo(t *testing.T) {
	srv, _ := testServer(t)
	dir := srv.config.VideoDir
	os.WriteFile(filepath.Join(dir, "walk.mov"), []byte("MOV"), 0o644)
	os.WriteFile(filepath.Join(dir, "both.mov"), []byte("MOV"), 0o644)
	os.WriteFile(filepath.Join(dir, "both.mp4"), []byte("MP4"), 0o644)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/video/walk.mov", http.StatusOK, "MOV"},
		{"/video/both.mov", http.StatusOK, "MP4"},
		{"/video/none.mov", http.StatusNotFound, ""},
		{"/video/..%2Fsecret", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := do(t, srv, "GET", tt.path, nil)
		if w.Code != tt.wantCode {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantCode)
		}
		if tt.wantBody != "" && w.Body.String() != tt.wantBody {
			t.Errorf("GET %s body = %q, want %q", tt.path, w.Body.String(), tt.wantBody)
		}
	}
}

func TestLogout(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv, "GET", "/logout", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("logout: status=%d location=%q", w.Code, w.Header().Get("Location"))
	}
}

func TestHealthAndDiscovery(t *testing.T) {
	srv, _ := testServer(t)
	for _, path := range []string{"/api/health", "/api/"} {
		w := do(t, srv, "GET", path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, w.Code)
		}
		var env struct {
			Status    string `json:"status"`
			RequestID string `json:"request_id"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("GET %s: invalid JSON: %v", path, err)
		}
		if env.Status != "ok" || env.RequestID == "" {
			t.Errorf("GET %s envelope = %+v", path, env)
		}
	}
}
