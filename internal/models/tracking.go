package models

import "fmt"

// LocationUpdate is a live GPS fix reported by a driver device.
type LocationUpdate struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	VehicleID string   `json:"vehicleId"`
	DriverUID string   `json:"driverUid"`
}

func (u LocationUpdate) HasRequiredFields() bool {
	return u.VehicleID != "" && u.Latitude != nil && u.Longitude != nil
}

func (u LocationUpdate) ValidCoordinates() bool {
	if u.Latitude == nil || u.Longitude == nil {
		return false
	}
	lat, lng := *u.Latitude, *u.Longitude
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Coordinates renders the fix as "lat, lng".
func (u LocationUpdate) Coordinates() string {
	if u.Latitude == nil || u.Longitude == nil {
		return ""
	}
	return fmt.Sprintf("%v, %v", *u.Latitude, *u.Longitude)
}

func (u LocationUpdate) Fields() Fields {
	f := Fields{
		"timestamp":  ServerTimestamp,
		"driver_uid": u.DriverUID,
	}
	if u.Latitude != nil {
		f["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		f["longitude"] = *u.Longitude
	}
	return f
}
