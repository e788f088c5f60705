package model

import "time"

// SeasonalPricing is a pricing rule joined with its room type, hotel and
// (for single lookups) city.
type SeasonalPricing struct {
	ID              uint64     `json:"pricing_id"`
	RoomTypeID      uint64     `json:"room_type_id"`
	SeasonName      string     `json:"season_name"`
	Description     *string    `json:"description"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	PriceMultiplier float64    `json:"price_multiplier"`
	IsActive        bool       `json:"is_active"`
	Priority        int        `json:"priority"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
	RoomTypeName    string     `json:"room_type_name"`
	BasePrice       float64    `json:"base_price"`
	HotelID         uint64     `json:"hotel_id"`
	HotelName       string     `json:"hotel_name"`
	CityName        string     `json:"city_name,omitempty"`
}

// PriceQuote is the seasonal price of a room type on one date.
type PriceQuote struct {
	RoomTypeID         uint64  `json:"room_type_id"`
	RoomTypeName       string  `json:"room_type_name"`
	HotelName          string  `json:"hotel_name"`
	BasePrice          float64 `json:"base_price"`
	CurrentPrice       float64 `json:"current_price"`
	PriceChangePercent float64 `json:"price_change_percent"`
	ActiveSeason       *string `json:"active_season"`
	Date               string  `json:"date"`
}
