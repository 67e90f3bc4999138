package service

import (
	"context"
	"errors"
	"testing"

	"ridebooking/internal/database"
	"ridebooking/internal/events"
	"ridebooking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestTrackingService_UpdateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := database.NewMemoryStore()
		svc := NewTrackingService(store, nil, nil)

		err := svc.UpdateLocation(ctx, models.LocationUpdate{
			Latitude:  floatPtr(55.75),
			Longitude: floatPtr(37.61),
			VehicleID: "bus-7",
			DriverUID: "driver-1",
		})
		require.NoError(t, err)

		doc, ok := store.Documents(models.CollectionLiveTracking)["bus-7"]
		require.True(t, ok)
		assert.Equal(t, 55.75, doc["latitude"])
		assert.Equal(t, 37.61, doc["longitude"])
		assert.Equal(t, "driver-1", doc["driver_uid"])
		assert.NotNil(t, doc["timestamp"])
	})

	t.Run("OverwritesPerVehicle", func(t *testing.T) {
		store := database.NewMemoryStore()
		svc := NewTrackingService(store, nil, nil)

		require.NoError(t, svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(1), Longitude: floatPtr(1), VehicleID: "v"}))
		require.NoError(t, svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(2), Longitude: floatPtr(2), VehicleID: "v"}))

		docs := store.Documents(models.CollectionLiveTracking)
		require.Len(t, docs, 1)
		assert.Equal(t, 2.0, docs["v"]["latitude"])
	})

	t.Run("Validation", func(t *testing.T) {
		store := new(mockStore)
		svc := NewTrackingService(store, nil, nil)

		err := svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(1), VehicleID: "v"})
		assert.ErrorIs(t, err, ErrMissingFields)

		err = svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(1), Longitude: floatPtr(1)})
		assert.ErrorIs(t, err, ErrMissingFields)

		err = svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(91), Longitude: floatPtr(0), VehicleID: "v"})
		assert.ErrorIs(t, err, ErrInvalidCoordinates)

		err = svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(0), Longitude: floatPtr(-180.5), VehicleID: "v"})
		assert.ErrorIs(t, err, ErrInvalidCoordinates)

		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		store := new(mockStore)
		pub := new(mockPublisher)
		svc := NewTrackingService(store, pub, nil)

		store.On("Set", ctx, models.CollectionLiveTracking, "v", mock.Anything).Return(errors.New("unavailable")).Once()

		err := svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(1), Longitude: floatPtr(1), VehicleID: "v"})
		assert.ErrorIs(t, err, ErrStore)
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("PublishesEvent", func(t *testing.T) {
		store := new(mockStore)
		pub := new(mockPublisher)
		svc := NewTrackingService(store, pub, nil)

		store.On("Set", ctx, models.CollectionLiveTracking, "v", mock.Anything).Return(nil).Once()
		pub.On("PublishJSON", events.EventLocationUpdated, mock.MatchedBy(func(p events.LocationEventPayload) bool {
			return p.VehicleID == "v" && p.Latitude == 10 && p.Longitude == 20
		})).Return(nil).Once()

		require.NoError(t, svc.UpdateLocation(ctx, models.LocationUpdate{Latitude: floatPtr(10), Longitude: floatPtr(20), VehicleID: "v"}))
		pub.AssertExpectations(t)
	})
}
