package ui

import (
	"html/template"
	"strconv"
	"sync"

	"github.com/me/covweb/pkg/model"
)

// Section names, matching the element ids of the page.
const (
	SectionMenu    = "mainMenu"
	SectionVans    = "inspectedVansSection"
	SectionEvents  = "eventSelectionSection"
	SectionMissing = "missingVideosSection"
)

// FragmentView holds the rendered regions of one session's page. It
// implements vanlist.View.
type FragmentView struct {
	mu         sync.Mutex
	section    string
	list       template.HTML
	pagination template.HTML
}

// NewFragmentView returns a view showing the main menu.
func NewFragmentView() *FragmentView {
	return &FragmentView{section: SectionMenu}
}

// ShowSection makes name the only visible section.
func (v *FragmentView) ShowSection(name string) {
	v.mu.Lock()
	v.section = name
	v.mu.Unlock()
}

// SetList stores markup produced by vanlist.HTMLRenderer, which escapes
// every record field.
func (v *FragmentView) SetList(markup string) {
	v.mu.Lock()
	v.list = template.HTML(markup)
	v.mu.Unlock()
}

// SetPagination stores markup produced by vanlist.HTMLRenderer.
func (v *FragmentView) SetPagination(markup string) {
	v.mu.Lock()
	v.pagination = template.HTML(markup)
	v.mu.Unlock()
}

// Section returns the visible section.
func (v *FragmentView) Section() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.section
}

// Regions returns the list and pagination markup.
func (v *FragmentView) Regions() (list, pagination template.HTML) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list, v.pagination
}

// SortOption is one entry of the sort select.
type SortOption struct {
	Value string
	Label string
}

// SortOptions lists the sort keys offered in the listing section.
var SortOptions = []SortOption{
	{model.SortCreatedAt, "Newest first"},
	{model.SortVanDate, "Van number, then date"},
	{model.SortVanInspectorDate, "Van number, inspector, then date"},
	{model.SortDateVan, "Date, then van number"},
	{model.SortEventDate, "Event, then date"},
	{model.SortDate, "Inspection date"},
}

// PageSizeOptions lists the page sizes offered in the listing section.
var PageSizeOptions = []int{10, 25, 50, 100}

// Controls is the session's sort and page size selection. It implements
// vanlist.Controls.
type Controls struct {
	mu      sync.Mutex
	sort    string
	perPage int
}

// NewControls returns the default selection.
func NewControls() *Controls {
	return &Controls{sort: model.SortCreatedAt, perPage: model.DefaultPerPage}
}

// SortKey returns the selected sort key.
func (c *Controls) SortKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// PageSize returns the selected page size.
func (c *Controls) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perPage
}

// Set updates the selection from form values. Unknown sort keys and
// unparsable page sizes leave the current value in place.
func (c *Controls) Set(sort, perPage string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, opt := range SortOptions {
		if opt.Value == sort {
			c.sort = sort
			break
		}
	}
	if n, err := strconv.Atoi(perPage); err == nil && n > 0 {
		c.perPage = min(n, model.MaxPerPage)
	}
}
