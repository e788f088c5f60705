package model

// City is a row of the `City` table.
type City struct {
	ID      uint64 `json:"city_id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// HotelSummary is one entry of a city's hotel listing. PriceFrom is the
// lowest room type base price and is nil for hotels without room types.
type HotelSummary struct {
	ID             uint64   `json:"hotel_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Rating         float64  `json:"rating"`
	CityName       string   `json:"city_name"`
	Country        string   `json:"country"`
	RoomTypesCount int      `json:"room_types_count"`
	PriceFrom      *float64 `json:"price_from"`
}

// Hotel is a hotel joined with its city.
type Hotel struct {
	ID       uint64  `json:"hotel_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Rating   float64 `json:"rating"`
	CityName string  `json:"city_name"`
	Country  string  `json:"country"`
}

// HotelDetail is the public hotel page: the hotel, its room types priced
// for today and a rating summary.
type HotelDetail struct {
	Hotel
	RoomTypes     []RoomTypeQuote `json:"room_types"`
	TotalReviews  int             `json:"total_reviews"`
	AverageRating float64         `json:"average_rating"`
}

// RoomType is a row of `RoomType` joined with the owning hotel's name.
type RoomType struct {
	ID        uint64  `json:"room_type_id"`
	HotelID   uint64  `json:"hotel_id"`
	Name      string  `json:"name"`
	MaxGuests int     `json:"max_guests"`
	BasePrice float64 `json:"base_price"`
	HotelName string  `json:"hotel_name"`
}

// RoomTypeQuote is a room type with the seasonal price for a given date.
type RoomTypeQuote struct {
	ID           uint64  `json:"room_type_id"`
	Name         string  `json:"name"`
	BasePrice    float64 `json:"base_price"`
	MaxGuests    int     `json:"max_guests"`
	CurrentPrice float64 `json:"current_price"`
}

// Availability answers whether a room type can be booked for a stay.
type Availability struct {
	RoomTypeID     uint64  `json:"room_type_id"`
	RoomTypeName   string  `json:"room_type_name"`
	HotelName      string  `json:"hotel_name"`
	CheckIn        string  `json:"check_in"`
	CheckOut       string  `json:"check_out"`
	Nights         int     `json:"nights"`
	Available      bool    `json:"available"`
	AvailableCount int     `json:"available_count"`
	PricePerNight  float64 `json:"price_per_night"`
	TotalAmount    float64 `json:"total_amount"`
}

// CalendarDay is one inventory row with its seasonal price.
type CalendarDay struct {
	StayDate       string  `json:"stay_date"`
	AvailableRooms int     `json:"available_rooms"`
	PricePerNight  float64 `json:"price_per_night"`
}
