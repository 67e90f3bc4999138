package domain

import (
	"context"

	"ridebooking/internal/models"
)

// DocumentStore is the managed document database the service writes to.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Add creates a new document with a store-generated id.
	Add(ctx context.Context, collection string, fields models.Fields) (string, error)
	// Set creates or replaces the document with the given id.
	Set(ctx context.Context, collection, id string, fields models.Fields) error
	Ping(ctx context.Context) error
	Close() error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (string, error)
}

type TrackingService interface {
	UpdateLocation(ctx context.Context, update models.LocationUpdate) error
}

type StoreChecker interface {
	Ping(ctx context.Context) error
}
