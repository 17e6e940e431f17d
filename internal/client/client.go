// Package client is an HTTP client for the covweb backend endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/me/covweb/pkg/model"
)

// ErrMalformed marks a response body that could not be decoded into the
// expected shape.
var ErrMalformed = errors.New("malformed response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Client talks to the covweb backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New creates a backend client.
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger.With("component", "client"),
	}
}

// do performs an HTTP request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	u := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		c.Logger.Debug("HTTP request body", "body", string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.Logger.Debug("HTTP request", "method", method, "url", u)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.Logger.Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, path, err)
	}
	return nil
}

// listingResponse accepts both the total_pages field and the legacy pages field.
type listingResponse struct {
	Inspections *[]model.InspectionRecord `json:"inspections"`
	TotalPages  *int                      `json:"total_pages"`
	Pages       *int                      `json:"pages"`
	Total       int                       `json:"total"`
	Page        int                       `json:"page"`
	PerPage     int                       `json:"per_page"`
}

// ListInspections fetches one page of the inspected-vans listing.
func (c *Client) ListInspections(ctx context.Context, page, perPage int, sort string) (*model.InspectionPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("sort", sort)
	path := "/inspected_vans?" + q.Encode()

	var raw listingResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Inspections == nil {
		return nil, fmt.Errorf("%w: GET %s: missing inspections", ErrMalformed, path)
	}

	out := &model.InspectionPage{
		Inspections: *raw.Inspections,
		Total:       raw.Total,
		Page:        raw.Page,
		PerPage:     raw.PerPage,
	}
	switch {
	case raw.TotalPages != nil:
		out.TotalPages = *raw.TotalPages
	case raw.Pages != nil:
		out.TotalPages = *raw.Pages
	default:
		return nil, fmt.Errorf("%w: GET %s: missing total_pages", ErrMalformed, path)
	}
	if out.TotalPages < 0 {
		return nil, fmt.Errorf("%w: GET %s: negative total_pages", ErrMalformed, path)
	}
	return out, nil
}

// Fetch implements vanlist.Fetcher.
func (c *Client) Fetch(ctx context.Context, page, perPage int, sort string) (*model.InspectionPage, error) {
	return c.ListInspections(ctx, page, perPage, sort)
}

// eventResponse tolerates created_at with or without a zone offset.
type eventResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// ListEvents returns all events.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var raw []eventResponse
	if err := c.do(ctx, http.MethodGet, "/events", nil, &raw); err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(raw))
	for _, r := range raw {
		ev := model.Event{ID: r.ID, Name: r.Name}
		ev.CreatedAt, _ = model.ParseTimestamp(r.CreatedAt)
		events = append(events, ev)
	}
	return events, nil
}

// CreateEvent asks the backend to create an event. A conflict or validation
// rejection is returned as a result with status "error" rather than an error.
func (c *Client) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.CreateEventResult, error) {
	var res model.CreateEventResult
	err := c.do(ctx, http.MethodPost, "/events", req, &res)
	var se *StatusError
	if errors.As(err, &se) && (se.StatusCode == http.StatusConflict || se.StatusCode == http.StatusBadRequest) {
		if jerr := json.Unmarshal([]byte(se.Body), &res); jerr == nil && res.Status != "" {
			return &res, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListCOVs returns the registered vehicle numbers.
func (c *Client) ListCOVs(ctx context.Context) ([]model.COV, error) {
	var covs []model.COV
	if err := c.do(ctx, http.MethodGet, "/covs", nil, &covs); err != nil {
		return nil, err
	}
	return covs, nil
}

// MissingVideos returns inspections without an attached video. An empty
// result means none are missing.
func (c *Client) MissingVideos(ctx context.Context) ([]model.InspectionRecord, error) {
	var recs []model.InspectionRecord
	if err := c.do(ctx, http.MethodGet, "/missing_videos", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// ThumbnailURL returns the absolute URL of the thumbnail for a video file.
func (c *Client) ThumbnailURL(videoFilename string) string {
	return c.BaseURL + ThumbnailPath(videoFilename)
}

// VideoURL returns the absolute URL of a video file.
func (c *Client) VideoURL(videoFilename string) string {
	return c.BaseURL + VideoPath(videoFilename)
}

// LogoutURL returns the absolute URL of the logout endpoint.
func (c *Client) LogoutURL() string {
	return c.BaseURL + "/logout"
}

// ThumbnailPath returns the server-relative thumbnail path for a video file.
func ThumbnailPath(videoFilename string) string {
	return "/thumbnail/" + url.PathEscape(model.ThumbnailName(videoFilename))
}

// VideoPath returns the server-relative path of a video file.
func VideoPath(videoFilename string) string {
	return "/video/" + url.PathEscape(videoFilename)
}
