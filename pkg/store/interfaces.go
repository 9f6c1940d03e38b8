package store

import (
	"context"

	"travelglobe/pkg/model"
)

// TimelineStore handles travel timeline persistence.
type TimelineStore interface {
	// ListTimeline returns the entries of a year ordered by sequence.
	ListTimeline(ctx context.Context, year int) ([]model.TravelTimelineEntry, error)
	// ListYears returns the distinct years that have entries, ascending.
	ListYears(ctx context.Context) ([]int, error)
	// SaveEntry inserts or replaces an entry. An empty ID is filled in.
	SaveEntry(ctx context.Context, e *model.TravelTimelineEntry) error
	DeleteYear(ctx context.Context, year int) error
}

// StateStore handles small persistent key/value state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}

// Store is the composite of all store interfaces.
type Store interface {
	TimelineStore
	StateStore

	// Close closes the store connection.
	Close() error
}
