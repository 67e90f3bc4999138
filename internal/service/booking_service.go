package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/events"
	"ridebooking/internal/logging"
	"ridebooking/internal/metrics"
	"ridebooking/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrStore wraps every failed document write.
	ErrStore = errors.New("document store write failed")
)

type BookingService struct {
	store    domain.DocumentStore
	eventBus domain.EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBookingService wires the service to a store client created once per process.
// eventBus may be nil.
func NewBookingService(store domain.DocumentStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	l := logging.Component(logger, "booking-service")
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		logger:   l,
		now:      time.Now,
	}
}

// CreateBooking validates the request and adds exactly one document to the
// bookings collection. The write is never retried.
func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (string, error) {
	if !req.HasRequiredFields() {
		metrics.IncBooking("rejected")
		return "", ErrMissingFields
	}

	record := models.NewBookingRecord(req)
	id, err := s.store.Add(ctx, models.CollectionBookings, record.Fields())
	if err != nil {
		metrics.IncBooking("failed")
		s.logger.Error().Err(err).Str("collection", models.CollectionBookings).Msg(models.LogMsgSaveError)
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}

	metrics.IncBooking("booked")
	s.logger.Info().Str("document_id", id).Str("uid", record.UID).Msg("booking stored")

	s.publish(events.EventBookingCreated, events.BookingEventPayload{
		DocumentID: id,
		UID:        record.UID,
		Pickup:     record.Pickup,
		Dropoff:    record.Dropoff,
		Date:       record.DateText(),
		Status:     record.Status,
		BookedAt:   s.now().UTC(),
	})

	return id, nil
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("publish event")
	}
}
