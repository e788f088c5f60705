// Package queue carries domain events over RabbitMQ: the publisher used by
// the HTTP handlers and the consumer that appends them to an event log.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Routing keys on the topic exchange.
const (
    KeyBookingCreated   = "booking.created"
    KeyBookingCancelled = "booking.cancelled"
    KeyPaymentSucceeded = "payment.succeeded"
    KeyPaymentFailed    = "payment.failed"
    KeyPaymentRefunded  = "payment.refunded"
)

// Event is the JSON body of every message.  Exactly one of Booking and
// Payment is set, matching the routing key prefix.
type Event struct {
    ID         string        `json:"event_id"`
    Type       string        `json:"type"`
    OccurredAt time.Time     `json:"occurred_at"`
    Booking    *BookingEvent `json:"booking,omitempty"`
    Payment    *PaymentEvent `json:"payment,omitempty"`
}

// BookingEvent describes a created or cancelled booking.
type BookingEvent struct {
    BookingID   uint64  `json:"booking_id"`
    UserID      uint64  `json:"user_id"`
    RoomTypeID  uint64  `json:"room_type_id,omitempty"`
    HotelName   string  `json:"hotel_name"`
    RoomType    string  `json:"room_type"`
    CheckIn     string  `json:"check_in,omitempty"`
    CheckOut    string  `json:"check_out,omitempty"`
    Nights      int     `json:"nights,omitempty"`
    TotalAmount float64 `json:"total_amount,omitempty"`
    Status      string  `json:"status"`
}

// PaymentEvent describes a charge attempt or a refund.
type PaymentEvent struct {
    PaymentID      uint64  `json:"payment_id,omitempty"`
    BookingID      uint64  `json:"booking_id"`
    UserID         uint64  `json:"user_id,omitempty"`
    Amount         float64 `json:"amount"`
    Method         string  `json:"method,omitempty"`
    Status         string  `json:"status"`
    TransactionRef string  `json:"transaction_ref,omitempty"`
    Reason         string  `json:"reason,omitempty"`
}

func NewBookingEvent(key string, b BookingEvent) Event {
    return Event{ID: uuid.NewString(), Type: key, OccurredAt: time.Now().UTC(), Booking: &b}
}

func NewPaymentEvent(key string, p PaymentEvent) Event {
    return Event{ID: uuid.NewString(), Type: key, OccurredAt: time.Now().UTC(), Payment: &p}
}
