package service

import (
	"context"
	"fmt"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/events"
	"ridebooking/internal/logging"
	"ridebooking/internal/models"

	"github.com/rs/zerolog"
)

// TrackingService stores the latest GPS fix per vehicle.
type TrackingService struct {
	store    domain.DocumentStore
	eventBus domain.EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTrackingService(store domain.DocumentStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *TrackingService {
	l := logging.Component(logger, "tracking-service")
	return &TrackingService{store: store, eventBus: eventBus, logger: l, now: time.Now}
}

// UpdateLocation overwrites live_tracking/<vehicleId>.
func (s *TrackingService) UpdateLocation(ctx context.Context, update models.LocationUpdate) error {
	if !update.HasRequiredFields() {
		return ErrMissingFields
	}
	if !update.ValidCoordinates() {
		return ErrInvalidCoordinates
	}

	if err := s.store.Set(ctx, models.CollectionLiveTracking, update.VehicleID, update.Fields()); err != nil {
		s.logger.Error().Err(err).Str("vehicle_id", update.VehicleID).Msg("live tracking save error")
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if s.eventBus != nil {
		err := s.eventBus.PublishJSON(events.EventLocationUpdated, events.LocationEventPayload{
			VehicleID: update.VehicleID,
			DriverUID: update.DriverUID,
			Latitude:  *update.Latitude,
			Longitude: *update.Longitude,
			UpdatedAt: s.now().UTC(),
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("event", events.EventLocationUpdated).Msg("publish event")
		}
	}
	return nil
}
