package model

// Booking statuses. A booking starts ACTIVE and can only move to
// CANCELLED; no transition leads back.
const (
	BookingActive    = "ACTIVE"
	BookingCancelled = "CANCELLED"
)

// Booking records a user's reservation on a train for a travel date.
// It groups one or more tickets created in the same transaction and
// is publicly identified by its ten-digit PNR.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who made the booking.
//  TrainID     – train being booked.
//  PNR         – unique ten-digit reservation code, immutable.
//  BookingDate – date the booking was made (YYYY-MM-DD).
//  TravelDate  – date of travel (YYYY-MM-DD).
//  Status      – ACTIVE or CANCELLED.
type Booking struct {
	ID          uint64 // bookings.id
	UserID      uint64 // bookings.user_id
	TrainID     uint64 // bookings.train_id
	PNR         string // bookings.pnr
	BookingDate string // bookings.booking_date
	TravelDate  string // bookings.travel_date
	Status      string // bookings.status
}

// Ticket holds one passenger's details under a booking. Tickets are
// created atomically with their booking and removed only when the
// owning user is deleted.
type Ticket struct {
	ID            uint64 // tickets.id
	BookingID     uint64 // tickets.booking_id
	PassengerName string // tickets.passenger_name
	Age           uint8  // tickets.age
	Gender        string // tickets.gender
}

// Cancellation is the audit row written when a booking transitions to
// CANCELLED. Each booking has at most one.
type Cancellation struct {
	ID          uint64 // cancellations.id
	BookingID   uint64 // cancellations.booking_id (unique)
	CancelledOn string // cancellations.cancelled_on (YYYY-MM-DD)
	Reason      string // cancellations.reason
}
