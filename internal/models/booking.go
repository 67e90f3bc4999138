package models

import (
	"encoding/json"
)

// BookingRequest is the decoded body of a booking call.
// ScheduleDate is opaque: any JSON value is kept as decoded, absent or null stays nil.
type BookingRequest struct {
	PickupLocation  string      `json:"pickupLocation"`
	DropoffLocation string      `json:"dropoffLocation"`
	ScheduleDate    interface{} `json:"scheduleDate"`
	UserUID         string      `json:"userUid"`
}

// HasRequiredFields reports whether pickup, dropoff and user uid are all non-empty.
func (r BookingRequest) HasRequiredFields() bool {
	return r.PickupLocation != "" && r.DropoffLocation != "" && r.UserUID != ""
}

// BookingRecord is what lands in the bookings collection.
type BookingRecord struct {
	UID     string      `json:"uid"`
	Pickup  string      `json:"pickup"`
	Dropoff string      `json:"dropoff"`
	Date    interface{} `json:"date"`
	Status  string      `json:"status"`
}

func NewBookingRecord(req BookingRequest) *BookingRecord {
	return &BookingRecord{
		UID:     req.UserUID,
		Pickup:  req.PickupLocation,
		Dropoff: req.DropoffLocation,
		Date:    req.ScheduleDate,
		Status:  StatusPendingDriverAssignment,
	}
}

// Fields maps the record to its stored shape. The timestamp is left to the store.
func (b *BookingRecord) Fields() Fields {
	return Fields{
		"uid":       b.UID,
		"pickup":    b.Pickup,
		"dropoff":   b.Dropoff,
		"date":      b.Date,
		"status":    b.Status,
		"timestamp": ServerTimestamp,
	}
}

// DateText renders the schedule date for notifications.
// Strings are returned as is, other values as their JSON text, nil as nil.
func (b *BookingRecord) DateText() *string {
	switch v := b.Date.(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		text := string(raw)
		return &text
	}
}
