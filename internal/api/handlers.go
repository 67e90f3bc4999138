package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/models"
	"ridebooking/internal/service"

	"github.com/rs/zerolog"
)

// Handlers serves the booking, tracking and service-info routes.
type Handlers struct {
	bookings domain.BookingService
	tracking domain.TrackingService
	checker  domain.StoreChecker
	auth     *BearerAuth
	logger   zerolog.Logger
}

func NewHandlers(bookings domain.BookingService, tracking domain.TrackingService, checker domain.StoreChecker, auth *BearerAuth, logger zerolog.Logger) *Handlers {
	return &Handlers{
		bookings: bookings,
		tracking: tracking,
		checker:  checker,
		auth:     auth,
		logger:   logger,
	}
}

// BookRide handles every method on the booking path; only POST goes further than 405.
func (h *Handlers) BookRide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, models.MsgMethodNotAllowed)
		return
	}

	uid, ok := h.auth.authenticateRequest(w, r)
	if !ok {
		return
	}

	var req models.BookingRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("booking body rejected")
		writeMessage(w, http.StatusBadRequest, models.MsgMissingFields)
		return
	}
	if !req.HasRequiredFields() {
		writeMessage(w, http.StatusBadRequest, models.MsgMissingFields)
		return
	}
	if h.auth.Enabled() && req.UserUID != uid {
		writeError(w, http.StatusForbidden, msgTokenMismatch)
		return
	}

	if _, err := h.bookings.CreateBooking(r.Context(), req); err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			writeMessage(w, http.StatusBadRequest, models.MsgMissingFields)
			return
		}
		writeError(w, http.StatusInternalServerError, models.ErrMsgSaveBooking)
		return
	}

	writeMessage(w, http.StatusOK, models.MsgBooked)
}

func (h *Handlers) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, models.MsgMethodNotAllowed)
		return
	}

	uid, ok := h.auth.authenticateRequest(w, r)
	if !ok {
		return
	}

	var update models.LocationUpdate
	if err := decodeBody(w, r, &update); err != nil {
		writeMessage(w, http.StatusBadRequest, models.MsgMissingFields)
		return
	}
	if h.auth.Enabled() {
		update.DriverUID = uid
	}

	err := h.tracking.UpdateLocation(r.Context(), update)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, models.MsgMissingFields)
		return
	case errors.Is(err, service.ErrInvalidCoordinates):
		writeMessage(w, http.StatusBadRequest, models.MsgInvalidCoordinates)
		return
	default:
		writeError(w, http.StatusInternalServerError, models.ErrMsgSaveLocation)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":     models.MsgLocationUpdated,
		"vehicle":     update.VehicleID,
		"coordinates": update.Coordinates(),
	})
}

func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, models.MsgServiceRunning)
}

func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads one JSON value; empty bodies, malformed JSON and wrong field types all fail.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
