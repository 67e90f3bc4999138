package models

// Collections written by the service.
const (
	CollectionBookings     = "bookings"
	CollectionLiveTracking = "live_tracking"
)

// StatusPendingDriverAssignment is the only status the service ever writes.
const StatusPendingDriverAssignment = "PENDING_DRIVER_ASSIGNMENT"

// Response texts of the booking endpoint. Clients match on them, keep them byte-exact.
const (
	MsgMethodNotAllowed = "Method Not Allowed. Use POST."
	MsgMissingFields    = "Missing required fields."
	MsgBooked           = "Ride successfully booked via Cloud Function."
	ErrMsgSaveBooking   = "Failed to save booking data."
	LogMsgSaveError     = "Firestore Save Error:"
)

const (
	MsgInvalidCoordinates = "Invalid coordinates."
	MsgLocationUpdated    = "GPS location updated successfully."
	ErrMsgSaveLocation    = "Failed to save location data."
	MsgServiceRunning     = "Ride booking backend is running"
)

const (
	// DefaultHTTPPath путь, под которым висит функция бронирования
	DefaultHTTPPath = "/bookRideSecure"

	// DefaultTrackingPath путь обновления координат
	DefaultTrackingPath = "/api/v1/tracking"

	// WorkerQueueSize размер очереди уведомлений в памяти
	WorkerQueueSize = 1000

	// MaxRequestBodyBytes ограничение на размер тела запроса
	MaxRequestBodyBytes = 1 << 20
)
