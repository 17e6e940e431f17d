package store

import (
	"context"

	"github.com/me/covweb/pkg/model"
)

// Store defines the persistence layer for inspections, events and COVs.
type Store interface {
	// Inspections
	CreateInspection(ctx context.Context, rec *model.InspectionRecord) error
	ListInspections(ctx context.Context, q model.InspectionQuery) ([]model.InspectionRecord, int, error)
	MissingVideos(ctx context.Context) ([]model.InspectionRecord, error)

	// Events
	CreateEvent(ctx context.Context, ev *model.Event) error
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEventByName(ctx context.Context, name string) (*model.Event, error)
	GetEventByCanonical(ctx context.Context, canonical string) (*model.Event, error)

	// COVs
	UpsertCOV(ctx context.Context, number string) error
	ListCOVs(ctx context.Context) ([]model.COV, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
