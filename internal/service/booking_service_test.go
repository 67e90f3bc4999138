package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ridebooking/internal/database"
	"ridebooking/internal/events"
	"ridebooking/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	args := m.Called(ctx, collection, fields)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	return m.Called(ctx, collection, id, fields).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockStore) Close() error { return nil }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("Success", func(t *testing.T) {
		store := database.NewMemoryStore()
		svc := NewBookingService(store, nil, &logger)

		id, err := svc.CreateBooking(ctx, models.BookingRequest{
			PickupLocation:  "A St",
			DropoffLocation: "B Ave",
			UserUID:         "u1",
		})
		require.NoError(t, err)

		docs := store.Documents(models.CollectionBookings)
		require.Len(t, docs, 1)
		doc := docs[id]
		assert.Equal(t, "u1", doc["uid"])
		assert.Equal(t, "A St", doc["pickup"])
		assert.Equal(t, "B Ave", doc["dropoff"])
		assert.Nil(t, doc["date"])
		assert.Equal(t, models.StatusPendingDriverAssignment, doc["status"])
		assert.NotNil(t, doc["timestamp"])
	})

	t.Run("ScheduleDatePassedThrough", func(t *testing.T) {
		store := database.NewMemoryStore()
		svc := NewBookingService(store, nil, &logger)

		id, err := svc.CreateBooking(ctx, models.BookingRequest{
			PickupLocation:  "A St",
			DropoffLocation: "B Ave",
			ScheduleDate:    "next tuesday",
			UserUID:         "u1",
		})
		require.NoError(t, err)
		assert.Equal(t, "next tuesday", store.Documents(models.CollectionBookings)[id]["date"])
	})

	t.Run("MissingFieldsNoWrite", func(t *testing.T) {
		store := new(mockStore)
		svc := NewBookingService(store, nil, &logger)

		for _, req := range []models.BookingRequest{
			{PickupLocation: "A St", UserUID: "u1"},
			{DropoffLocation: "B Ave", UserUID: "u1"},
			{PickupLocation: "A St", DropoffLocation: "B Ave"},
			{},
		} {
			_, err := svc.CreateBooking(ctx, req)
			assert.ErrorIs(t, err, ErrMissingFields)
		}
		store.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("StoreFailureLogged", func(t *testing.T) {
		var buf bytes.Buffer
		bufLogger := zerolog.New(&buf)
		store := new(mockStore)
		pub := new(mockPublisher)
		svc := NewBookingService(store, pub, &bufLogger)

		storeErr := errors.New("permission denied")
		store.On("Add", ctx, models.CollectionBookings, mock.AnythingOfType("models.Fields")).Return("", storeErr).Once()

		_, err := svc.CreateBooking(ctx, models.BookingRequest{PickupLocation: "A", DropoffLocation: "B", UserUID: "u"})
		assert.ErrorIs(t, err, ErrStore)
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, buf.String(), models.LogMsgSaveError)
		assert.Contains(t, buf.String(), "permission denied")

		store.AssertExpectations(t)
		pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("PublishesEventAfterWrite", func(t *testing.T) {
		store := new(mockStore)
		pub := new(mockPublisher)
		svc := NewBookingService(store, pub, &logger)

		store.On("Add", ctx, models.CollectionBookings, mock.MatchedBy(func(f models.Fields) bool {
			return f["status"] == models.StatusPendingDriverAssignment && models.IsServerTimestamp(f["timestamp"])
		})).Return("doc-1", nil).Once()
		pub.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.DocumentID == "doc-1" && p.UID == "u" && p.Status == models.StatusPendingDriverAssignment &&
				p.Date != nil && *p.Date == "42"
		})).Return(nil).Once()

		id, err := svc.CreateBooking(ctx, models.BookingRequest{PickupLocation: "A", DropoffLocation: "B", UserUID: "u", ScheduleDate: float64(42)})
		require.NoError(t, err)
		assert.Equal(t, "doc-1", id)
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("PublishFailureIgnored", func(t *testing.T) {
		var buf bytes.Buffer
		bufLogger := zerolog.New(&buf)
		store := new(mockStore)
		pub := new(mockPublisher)
		svc := NewBookingService(store, pub, &bufLogger)

		store.On("Add", ctx, models.CollectionBookings, mock.Anything).Return("doc-2", nil).Once()
		pub.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(errors.New("queue full")).Once()

		_, err := svc.CreateBooking(ctx, models.BookingRequest{PickupLocation: "A", DropoffLocation: "B", UserUID: "u"})
		assert.NoError(t, err)
		assert.True(t, strings.Contains(buf.String(), "queue full"))
	})

	t.Run("NotIdempotent", func(t *testing.T) {
		store := database.NewMemoryStore()
		svc := NewBookingService(store, nil, &logger)
		req := models.BookingRequest{PickupLocation: "A St", DropoffLocation: "B Ave", UserUID: "u1"}

		id1, err := svc.CreateBooking(ctx, req)
		require.NoError(t, err)
		id2, err := svc.CreateBooking(ctx, req)
		require.NoError(t, err)

		assert.NotEqual(t, id1, id2)
		assert.Len(t, store.Documents(models.CollectionBookings), 2)
	})
}
