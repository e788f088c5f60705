package model

import "time"

// Review is a `Review` row with the display names the API joins in.
// ReviewerName, CityName and HotelName are empty when a query does not
// join them.
type Review struct {
	ID           uint64    `json:"review_id"`
	BookingID    uint64    `json:"booking_id,omitempty"`
	UserID       uint64    `json:"user_id,omitempty"`
	Rating       int       `json:"rating"`
	Title        string    `json:"review_title"`
	Text         string    `json:"review_text"`
	HelpfulCount int       `json:"helpful_count"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	HotelID      uint64    `json:"hotel_id,omitempty"`
	HotelName    string    `json:"hotel_name,omitempty"`
	CityName     string    `json:"city_name,omitempty"`
}
