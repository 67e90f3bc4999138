package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/events"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends booking and tracking events as rows of a spreadsheet.
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	bookingsRange string
	trackingRange string
}

func NewSheetsSink(ctx context.Context, cfg config.SheetsConfig) (*SheetsSink, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newSheetsSink(srv, cfg), nil
}

func newSheetsSink(srv *sheets.Service, cfg config.SheetsConfig) *SheetsSink {
	return &SheetsSink{
		service:       srv,
		spreadsheetID: cfg.SpreadsheetID,
		bookingsRange: cfg.BookingsRange,
		trackingRange: cfg.TrackingRange,
	}
}

func (s *SheetsSink) Name() string { return "sheets" }

// Deliver добавляет строку для события
func (s *SheetsSink) Deliver(ctx context.Context, event *events.Event) error {
	var (
		rangeData string
		row       []interface{}
	)

	switch event.Type {
	case events.EventBookingCreated:
		var p events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode booking payload: %w", err)
		}
		rangeData, row = s.bookingsRange, bookingRowValues(p)
	case events.EventLocationUpdated:
		if s.trackingRange == "" {
			return nil
		}
		var p events.LocationEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode location payload: %w", err)
		}
		rangeData, row = s.trackingRange, locationRowValues(p)
	default:
		return nil
	}

	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", rangeData, err)
	}
	return nil
}

func bookingRowValues(p events.BookingEventPayload) []interface{} {
	date := ""
	if p.Date != nil {
		date = *p.Date
	}
	return []interface{}{
		p.DocumentID,
		p.UID,
		p.Pickup,
		p.Dropoff,
		date,
		p.Status,
		p.BookedAt.Format("2006-01-02 15:04:05"),
	}
}

func locationRowValues(p events.LocationEventPayload) []interface{} {
	return []interface{}{
		p.VehicleID,
		p.DriverUID,
		p.Latitude,
		p.Longitude,
		p.UpdatedAt.Format(time.RFC3339),
	}
}
