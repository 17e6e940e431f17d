// Package vanlist implements the inspected-vans listing view: paging state,
// fetching a page of inspections, and rendering the record list and the
// pagination controls.
//
// A Controller owns the PageState for one viewer. Each refresh is tagged with
// a sequence number and runs under its own cancellable context; starting a
// new refresh cancels the previous one, and a response whose sequence number
// is no longer current is discarded instead of applied.
package vanlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/covweb/internal/logging"
	"github.com/me/covweb/pkg/model"
)

// ListSection is the name of the section the listing lives in.
const ListSection = "inspectedVansSection"

// ErrorMessage replaces the list when a page cannot be loaded.
const ErrorMessage = "Error loading data. Please try again."

var (
	// ErrPageOutOfRange is returned by GoToPage for a page outside 1..TotalPages.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrSuperseded is returned by Refresh when a newer refresh started
	// before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
)

// Fetcher loads one page of inspections.
type Fetcher interface {
	Fetch(ctx context.Context, page, perPage int, sort string) (*model.InspectionPage, error)
}

// Controls exposes the user's current sort and page-size selection.
type Controls interface {
	SortKey() string
	PageSize() int
}

// View is the display the controller writes to. Calls are made while the
// controller holds its lock, so implementations must not call back into it.
type View interface {
	ShowSection(name string)
	SetList(markup string)
	SetPagination(markup string)
}

// Renderer turns records and paging into markup for a View.
type Renderer interface {
	Records(records []model.InspectionRecord) string
	Pagination(current, total int) string
	Error(message string) string
}

// PageState is the paging position of one listing view.
type PageState struct {
	CurrentPage int
	TotalPages  int
	PageSize    int
	SortKey     string
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	PageState
	Records []model.InspectionRecord
	Loaded  bool // At least one page was fetched successfully
}

// Controller drives the inspected-vans listing. It is safe for concurrent use.
type Controller struct {
	fetcher  Fetcher
	controls Controls
	view     View
	renderer Renderer
	logger   *slog.Logger

	mu      sync.Mutex
	state   PageState
	records []model.InspectionRecord
	loaded  bool
	seq     uint64
	cancel  context.CancelFunc // cancels the in-flight fetch, if any
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		c.renderer = r
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithStartPage positions a new Controller on page n instead of page 1. A
// page past the end is clamped by the first Refresh.
func WithStartPage(n int) Option {
	return func(c *Controller) {
		c.state.CurrentPage = max(n, 1)
	}
}

// New creates a Controller positioned on page 1.
func New(f Fetcher, controls Controls, view View, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  f,
		controls: controls,
		view:     view,
		renderer: HTMLRenderer{},
		logger:   logging.Discard(),
		state: PageState{
			CurrentPage: 1,
			PageSize:    model.DefaultPerPage,
			SortKey:     model.SortCreatedAt,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "vanlist")
	return c
}

// Open shows the listing section and refreshes it.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	c.view.ShowSection(ListSection)
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh fetches CurrentPage using the sort key and page size from the
// controls. On success the records, TotalPages, list and pagination are
// replaced. On failure the list shows ErrorMessage, pagination and the
// in-memory records are left as they were, and the error is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	retry, err := c.refresh(ctx, true)
	if retry {
		_, err = c.refresh(ctx, false)
	}
	return err
}

// refresh performs one fetch. It reports retry when the server has fewer
// pages than requested: CurrentPage is clamped and the caller fetches again.
func (c *Controller) refresh(ctx context.Context, allowClamp bool) (retry bool, err error) {
	c.mu.Lock()
	sort := c.controls.SortKey()
	perPage := c.controls.PageSize()
	if perPage <= 0 {
		perPage = model.DefaultPerPage
	}
	page := c.state.CurrentPage
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Debug("refresh", "seq", seq, "page", page, "per_page", perPage, "sort", sort)
	res, fetchErr := c.fetcher.Fetch(fetchCtx, page, perPage, sort)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debug("discarding stale response", "seq", seq, "current_seq", c.seq, "page", page)
		return false, ErrSuperseded
	}
	c.cancel = nil

	if fetchErr == nil && res == nil {
		fetchErr = errors.New("empty response")
	}
	if fetchErr != nil {
		if ctx.Err() != nil {
			// The caller went away; nothing is displayed for it.
			return false, ctx.Err()
		}
		c.logger.Error("load inspected vans", "page", page, "error", fetchErr)
		c.view.SetList(c.renderer.Error(ErrorMessage))
		return false, fmt.Errorf("load page %d: %w", page, fetchErr)
	}

	if last := max(res.TotalPages, 1); page > last {
		c.logger.Debug("page past end, clamping", "page", page, "total_pages", res.TotalPages)
		c.state.CurrentPage = last
		if allowClamp {
			c.state.TotalPages = res.TotalPages
			return true, nil
		}
		// The count shrank again since the clamped fetch went out. Keep the
		// page in range and show what came back rather than fetching forever.
	}

	c.state.TotalPages = res.TotalPages
	c.state.PageSize = perPage
	c.state.SortKey = sort
	c.records = append([]model.InspectionRecord(nil), res.Inspections...)
	c.loaded = true

	c.view.SetList(c.renderer.Records(c.records))
	c.view.SetPagination(c.renderer.Pagination(c.state.CurrentPage, c.state.TotalPages))
	return false, nil
}

// GoToPage moves to page n and refreshes. Pages outside 1..TotalPages are
// rejected with ErrPageOutOfRange without issuing a request or changing state.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if n < 1 || n > c.state.TotalPages {
		total := c.state.TotalPages
		c.mu.Unlock()
		return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, n, total)
	}
	c.state.CurrentPage = n
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// State returns a copy of the current paging state and records.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		PageState: c.state,
		Records:   append([]model.InspectionRecord(nil), c.records...),
		Loaded:    c.loaded,
	}
}
