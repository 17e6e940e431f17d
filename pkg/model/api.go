package model

import "strings"

// Sort keys accepted by the inspected-vans listing. Any other key is treated
// as a single column paired with an order direction.
const (
	SortVanDate          = "van_date"
	SortVanInspectorDate = "van_inspector_date"
	SortDateVan          = "date_van"
	SortEventDate        = "event_date"
	SortCreatedAt        = "created_at"
	SortDate             = "date"
)

// Listing defaults and limits.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// InspectionQuery configures an inspected-vans listing query.
type InspectionQuery struct {
	Page    int
	PerPage int
	Sort    string
	Order   string // "asc" or "desc"
	Event   string // Optional event filter
}

// DefaultInspectionQuery returns the listing defaults: first page, newest first.
func DefaultInspectionQuery() InspectionQuery {
	return InspectionQuery{Page: 1, PerPage: DefaultPerPage, Sort: SortCreatedAt, Order: "desc"}
}

// Clamp enforces limits (page ≥ 1, 1 ≤ per_page ≤ 100) and fills defaults.
func (q *InspectionQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.Sort == "" {
		q.Sort = SortCreatedAt
	}
	q.Order = strings.ToLower(q.Order)
	if q.Order != "asc" {
		q.Order = "desc"
	}
}

// Offset returns the number of records skipped before the page.
func (q InspectionQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
