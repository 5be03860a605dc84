// Package queue defines message payloads exchanged over the message broker.
package queue

// EventsQueueName is the durable queue carrying booking lifecycle events.
const EventsQueueName = "booking.events"

// Event types carried in BookingEvent.Type.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is created or cancelled.
// It carries enough information for downstream consumers to log or
// trigger analytics without querying the primary database. Reason and
// CancelledOn are only set on cancellation events.
type BookingEvent struct {
	Type        string `json:"type"`
	BookingID   uint64 `json:"booking_id"`
	PNR         string `json:"pnr"`
	UserID      uint64 `json:"user_id"`
	TrainID     uint64 `json:"train_id,omitempty"`
	TravelDate  string `json:"travel_date,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
	Reason      string `json:"reason,omitempty"`
	CancelledOn string `json:"cancelled_on,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
