package model

import "time"

const (
	PaymentPending  = "PENDING"
	PaymentSuccess  = "SUCCESS"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

// Accepted payment methods.
const (
	MethodCard       = "CARD"
	MethodUPI        = "UPI"
	MethodNetbanking = "NETBANKING"
	MethodCash       = "CASH"
)

// Payment is a `Payment` row joined with its booking, room type and hotel.
type Payment struct {
	ID        uint64     `json:"payment_id"`
	BookingID uint64     `json:"booking_id"`
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	UserID    uint64     `json:"user_id"`
	CheckIn   string     `json:"check_in"`
	CheckOut  string     `json:"check_out"`
	RoomType  string     `json:"room_type"`
	HotelName string     `json:"hotel_name"`
}

// PaymentReceipt is the body returned after a successful charge.
type PaymentReceipt struct {
	PaymentID      uint64     `json:"payment_id"`
	BookingID      uint64     `json:"booking_id"`
	Amount         float64    `json:"amount"`
	Status         string     `json:"status"`
	TransactionRef string     `json:"transaction_ref"`
	PaidAt         *time.Time `json:"paid_at"`
	HotelName      string     `json:"hotel_name"`
	RoomType       string     `json:"room_type"`
}

// Refund is the body returned by an admin refund.
type Refund struct {
	PaymentID    uint64  `json:"payment_id"`
	BookingID    uint64  `json:"booking_id"`
	RefundAmount float64 `json:"refund_amount"`
	Reason       string  `json:"reason"`
}
