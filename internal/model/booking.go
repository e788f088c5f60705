package model

import "time"

const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// BookingDetail is a booking joined with room type, hotel, city, payment
// and guest. Dates are YYYY-MM-DD strings. Payment columns are nil when
// no payment row exists.
type BookingDetail struct {
	ID            uint64    `json:"booking_id"`
	UserID        uint64    `json:"user_id"`
	RoomTypeID    uint64    `json:"room_type_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	RoomType      string    `json:"room_type"`
	MaxGuests     int       `json:"max_guests"`
	Hotel         string    `json:"hotel"`
	Address       string    `json:"address"`
	Rating        float64   `json:"rating"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	TotalAmount   *float64  `json:"total_amount"`
	PaymentMethod *string   `json:"payment_method"`
	PaymentStatus *string   `json:"payment_status"`
	GuestName     string    `json:"guest_name"`
	GuestEmail    string    `json:"guest_email"`
}

// BookingSummary is one row of a user's booking history.
type BookingSummary struct {
	ID            uint64    `json:"booking_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	RoomType      string    `json:"room_type"`
	Hotel         string    `json:"hotel"`
	Rating        float64   `json:"rating"`
	City          string    `json:"city"`
	TotalAmount   *float64  `json:"total_amount"`
	PaymentStatus *string   `json:"payment_status"`
}

// BookingReceipt is returned right after a booking is created.
type BookingReceipt struct {
	ID          uint64  `json:"booking_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	HotelName   string  `json:"hotel_name"`
	RoomType    string  `json:"room_type"`
	CheckIn     string  `json:"check_in"`
	CheckOut    string  `json:"check_out"`
	Nights      int     `json:"nights"`
}

// BookingState is the minimal projection used for ownership and status
// checks before mutating a booking.
type BookingState struct {
	ID            uint64
	UserID        uint64
	Status        string
	PaymentStatus *string
	RoomType      string
	HotelName     string
}
