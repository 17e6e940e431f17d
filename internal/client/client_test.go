package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/me/covweb/internal/config"
	"github.com/me/covweb/internal/logging"
	"github.com/me/covweb/internal/server"
	"github.com/me/covweb/internal/store"
	"github.com/me/covweb/pkg/model"
)

// startBackend starts a real backend over an in-memory store seeded with n inspections.
func startBackend(t *testing.T, n int) *Client {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	for i := 0; i < n; i++ {
		rec := &model.InspectionRecord{
			VanNumber:   fmt.Sprintf("%d", 200+i),
			InspectorID: "555001",
			Date:        fmt.Sprintf("2024-06-01T08:%02d", i),
			CreatedAt:   fmt.Sprintf("2024-06-01T08:%02d:00Z", i),
		}
		if err := st.CreateInspection(context.Background(), rec); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	srv := server.New(config.DefaultServerConfig(), st, logging.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL, logging.Discard())
}

// stub serves a fixed status and body for every request. The returned func
// reports the last request URI.
func stub(t *testing.T, status int, body string) (*Client, func() string) {
	t.Helper()
	var mu sync.Mutex
	var last string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		last = r.URL.RequestURI()
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return New(ts.URL, logging.Discard()), func() string {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func TestListInspections_Backend(t *testing.T) {
	c := startBackend(t, 28)
	page, err := c.ListInspections(context.Background(), 3, 10, "date")
	if err != nil {
		t.Fatalf("ListInspections: %v", err)
	}
	if page.TotalPages != 3 || len(page.Inspections) != 8 {
		t.Errorf("total_pages=%d len=%d, want 3/8", page.TotalPages, len(page.Inspections))
	}
}

func TestListInspections_Query(t *testing.T) {
	c, last := stub(t, http.StatusOK, `{"inspections":[],"total_pages":0}`)
	if _, err := c.ListInspections(context.Background(), 2, 10, "van date"); err != nil {
		t.Fatalf("ListInspections: %v", err)
	}
	if got := last(); got != "/inspected_vans?page=2&per_page=10&sort=van+date" {
		t.Errorf("request = %q", got)
	}
}

func TestListInspections_LegacyPagesField(t *testing.T) {
	c, _ := stub(t, http.StatusOK, `{"inspections":[{"van_number":"1"}],"pages":4}`)
	page, err := c.ListInspections(context.Background(), 1, 10, "date")
	if err != nil {
		t.Fatalf("ListInspections: %v", err)
	}
	if page.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", page.TotalPages)
	}
}

func TestListInspections_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMal  bool
		wantCode int
	}{
		{"server error", http.StatusInternalServerError, `{"status":"error"}`, false, 500},
		{"not json", http.StatusOK, `<html>oops</html>`, true, 0},
		{"bare array", http.StatusOK, `[]`, true, 0},
		{"missing inspections", http.StatusOK, `{"total_pages":2}`, true, 0},
		{"missing total", http.StatusOK, `{"inspections":[]}`, true, 0},
		{"negative total", http.StatusOK, `{"inspections":[],"total_pages":-1}`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := stub(t, tt.status, tt.body)
			_, err := c.ListInspections(context.Background(), 1, 10, "date")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrMalformed); got != tt.wantMal {
				t.Errorf("errors.Is(ErrMalformed) = %v, want %v (%v)", got, tt.wantMal, err)
			}
			var se *StatusError
			if tt.wantCode != 0 && (!errors.As(err, &se) || se.StatusCode != tt.wantCode) {
				t.Errorf("expected StatusError %d, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestListInspections_TransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", logging.Discard())
	if _, err := c.ListInspections(context.Background(), 1, 10, "date"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestListInspections_Cancelled(t *testing.T) {
	c, _ := stub(t, http.StatusOK, `{"inspections":[],"total_pages":0}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListInspections(ctx, 1, 10, "date")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestEventsAndCOVs_Backend(t *testing.T) {
	c := startBackend(t, 2)
	ctx := context.Background()

	res, err := c.CreateEvent(ctx, model.CreateEventRequest{Name: "Fall SAREX"})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if res.Status != model.EventStatusSuccess {
		t.Errorf("status = %q", res.Status)
	}

	// Canonical duplicate comes back as a result, not an error.
	res, err = c.CreateEvent(ctx, model.CreateEventRequest{Name: "fall sarex"})
	if err != nil {
		t.Fatalf("CreateEvent conflict: %v", err)
	}
	if res.Status != model.EventStatusError || !strings.Contains(res.Message, "Fall SAREX") {
		t.Errorf("conflict result = %+v", res)
	}

	events, err := c.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Name != "Fall SAREX" || events[0].CreatedAt.IsZero() {
		t.Errorf("events = %+v", events)
	}

	covs, err := c.ListCOVs(ctx)
	if err != nil {
		t.Fatalf("ListCOVs: %v", err)
	}
	if len(covs) != 2 {
		t.Errorf("covs = %+v", covs)
	}

	missing, err := c.MissingVideos(ctx)
	if err != nil {
		t.Fatalf("MissingVideos: %v", err)
	}
	if len(missing) != 2 {
		t.Errorf("missing = %d, want 2", len(missing))
	}
}

func TestMediaURLs(t *testing.T) {
	c := New("http://cov.example/", logging.Discard())
	if got := c.ThumbnailURL("cov 12.mov"); got != "http://cov.example/thumbnail/cov%2012.jpg" {
		t.Errorf("ThumbnailURL = %q", got)
	}
	if got := ThumbnailPath("2024/05/cov12.mov"); got != "/thumbnail/cov12.jpg" {
		t.Errorf("ThumbnailPath with directories = %q", got)
	}
	if got := c.VideoURL("cov12.mov"); got != "http://cov.example/video/cov12.mov" {
		t.Errorf("VideoURL = %q", got)
	}
	if got := c.LogoutURL(); got != "http://cov.example/logout" {
		t.Errorf("LogoutURL = %q", got)
	}
}
