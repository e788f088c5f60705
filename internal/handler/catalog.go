package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

type CityStore interface {
	List(ctx context.Context) ([]model.City, error)
	GetByID(ctx context.Context, id uint64) (model.City, error)
	ListHotels(ctx context.Context, cityID uint64, f repository.HotelFilter) ([]model.HotelSummary, error)
}

type HotelStore interface {
	GetDetail(ctx context.Context, id uint64, date string) (model.HotelDetail, error)
	ListReviews(ctx context.Context, hotelID uint64, rating, page, limit int) ([]model.Review, int64, error)
}

type RoomTypeStore interface {
	GetByID(ctx context.Context, id uint64) (model.RoomType, error)
	SeasonalPrice(ctx context.Context, id uint64, date string) (float64, error)
	MinInventory(ctx context.Context, id uint64, checkIn, checkOut string) (int, error)
	Calendar(ctx context.Context, id uint64, start, end string) ([]model.CalendarDay, error)
}

// CatalogHandler serves the public browse endpoints.
type CatalogHandler struct {
	Cities    CityStore
	Hotels    HotelStore
	RoomTypes RoomTypeStore
}

func NewCatalogHandler(cities CityStore, hotels HotelStore, roomTypes RoomTypeStore) *CatalogHandler {
	return &CatalogHandler{Cities: cities, Hotels: hotels, RoomTypes: roomTypes}
}

func (h *CatalogHandler) ListCities(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	cities, err := h.Cities.List(ctx)
	if err != nil {
		return internalError(err, "Failed to fetch cities")
	}
	return respond(c, http.StatusOK, "", cities)
}

// ListCityHotels supports rating_min, rating_max, sort_by and order.
// Malformed rating bounds are ignored.
func (h *CatalogHandler) ListCityHotels(c echo.Context) error {
	cityID, err := parseID(c, "id", "city ID")
	if err != nil {
		return err
	}
	f := repository.HotelFilter{
		RatingMin: floatQuery(c, "rating_min"),
		RatingMax: floatQuery(c, "rating_max"),
		SortBy:    c.QueryParam("sort_by"),
		Desc:      strings.EqualFold(c.QueryParam("order"), "desc"),
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	hotels, err := h.Cities.ListHotels(ctx, cityID, f)
	if err != nil {
		return internalError(err, "Failed to fetch hotels")
	}
	if len(hotels) == 0 {
		// an empty page is only a 404 when the city itself is unknown
		if _, err := h.Cities.GetByID(ctx, cityID); errors.Is(err, repository.ErrCityNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "City not found")
		} else if err != nil {
			return internalError(err, "Failed to fetch hotels")
		}
	}
	return respond(c, http.StatusOK, "", hotels)
}

// GetHotel returns the hotel with room types priced for today.
func (h *CatalogHandler) GetHotel(c echo.Context) error {
	id, err := parseID(c, "id", "hotel ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Hotels.GetDetail(ctx, id, today().Format(dateLayout))
	if errors.Is(err, repository.ErrHotelNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Hotel not found")
	}
	if err != nil {
		return internalError(err, "Failed to fetch hotel details")
	}
	return respond(c, http.StatusOK, "", d)
}

func (h *CatalogHandler) ListHotelReviews(c echo.Context) error {
	id, err := parseID(c, "id", "hotel ID")
	if err != nil {
		return err
	}
	page, limit := pageQuery(c, 10, 100)
	rating, _ := strconv.Atoi(c.QueryParam("rating_filter"))

	ctx, cancel := dbCtx(c)
	defer cancel()
	reviews, total, err := h.Hotels.ListReviews(ctx, id, rating, page, limit)
	if err != nil {
		return internalError(err, "Failed to fetch hotel reviews")
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"reviews":    reviews,
		"pagination": model.NewPagination(page, limit, total),
	})
}

// Availability prices a stay and reports the lowest nightly inventory.
func (h *CatalogHandler) Availability(c echo.Context) error {
	id, err := parseID(c, "id", "room type ID")
	if err != nil {
		return err
	}
	checkIn, checkOut := c.QueryParam("check_in"), c.QueryParam("check_out")
	var fields []FieldError
	if _, err := parseDate(checkIn); err != nil {
		fields = append(fields, FieldError{Field: "check_in", Message: "Valid check_in date required (YYYY-MM-DD)"})
	}
	if _, err := parseDate(checkOut); err != nil {
		fields = append(fields, FieldError{Field: "check_out", Message: "Valid check_out date required (YYYY-MM-DD)"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	nights, err := stay(checkIn, checkOut)
	if err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	rt, err := h.RoomTypes.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRoomTypeNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Room type not found")
	}
	if err != nil {
		return internalError(err, "Failed to check availability")
	}
	price, err := h.RoomTypes.SeasonalPrice(ctx, id, checkIn)
	if err != nil {
		return internalError(err, "Failed to check availability")
	}
	count, err := h.RoomTypes.MinInventory(ctx, id, checkIn, checkOut)
	if err != nil {
		return internalError(err, "Failed to check availability")
	}

	return respond(c, http.StatusOK, "", model.Availability{
		RoomTypeID:     id,
		RoomTypeName:   rt.Name,
		HotelName:      rt.HotelName,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Nights:         nights,
		Available:      count > 0,
		AvailableCount: count,
		PricePerNight:  price,
		TotalAmount:    round2(price * float64(nights)),
	})
}

// Calendar defaults to the next 30 days.
func (h *CatalogHandler) Calendar(c echo.Context) error {
	id, err := parseID(c, "id", "room type ID")
	if err != nil {
		return err
	}
	start, end := today(), today().AddDate(0, 0, 30)
	if s := c.QueryParam("start_date"); s != "" {
		if start, err = parseDate(s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Valid start_date required (YYYY-MM-DD)")
		}
	}
	if s := c.QueryParam("end_date"); s != "" {
		if end, err = parseDate(s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Valid end_date required (YYYY-MM-DD)")
		}
	}
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date must not be before start_date")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	days, err := h.RoomTypes.Calendar(ctx, id, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return internalError(err, "Failed to fetch calendar")
	}
	return respond(c, http.StatusOK, "", echo.Map{"room_type_id": id, "calendar": days})
}

func floatQuery(c echo.Context, name string) *float64 {
	v, err := strconv.ParseFloat(c.QueryParam(name), 64)
	if err != nil {
		return nil
	}
	return &v
}
