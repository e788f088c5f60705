package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/queue"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

type BookingStore interface {
	Create(ctx context.Context, nb repository.NewBooking) (model.BookingReceipt, error)
	GetDetail(ctx context.Context, id uint64) (model.BookingDetail, error)
	GetState(ctx context.Context, id uint64) (model.BookingState, error)
	Cancel(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64, status string, page, limit int) ([]model.BookingSummary, int64, error)
}

// PriceLookup resolves the nightly seasonal price of a room type.
type PriceLookup interface {
	SeasonalPrice(ctx context.Context, id uint64, date string) (float64, error)
}

type BookingHandler struct {
	Bookings BookingStore
	Prices   PriceLookup
	Events   queue.Publisher
}

func NewBookingHandler(b BookingStore, p PriceLookup, ev queue.Publisher) *BookingHandler {
	return &BookingHandler{Bookings: b, Prices: p, Events: ev}
}

type createBookingReq struct {
	RoomTypeID uint64 `json:"room_type_id" validate:"required,min=1" msg:"Valid room_type_id required"`
	CheckIn    string `json:"check_in" validate:"required,date" msg:"Valid check_in date required (YYYY-MM-DD)"`
	CheckOut   string `json:"check_out" validate:"required,date" msg:"Valid check_out date required (YYYY-MM-DD)"`
}

// Create prices the stay at the check-in date's seasonal rate and books it
// through MakeBooking. New bookings are paid by card unless the guest
// pays otherwise through /payments.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := mustUserID(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	nights, err := stay(req.CheckIn, req.CheckOut)
	if err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	price, err := h.Prices.SeasonalPrice(ctx, req.RoomTypeID, req.CheckIn)
	if errors.Is(err, repository.ErrRoomTypeNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Room type not found")
	}
	if err != nil {
		return internalError(err, "Failed to create booking")
	}

	rc, err := h.Bookings.Create(ctx, repository.NewBooking{
		UserID:     uid,
		RoomTypeID: req.RoomTypeID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Total:      round2(price * float64(nights)),
		Method:     model.MethodCard,
	})
	switch {
	case errors.Is(err, repository.ErrInsufficientInventory):
		return echo.NewHTTPError(http.StatusConflict, "Selected dates are not available").SetInternal(err)
	case errors.Is(err, repository.ErrBookingNotFound):
		return internalError(err, "Booking creation failed")
	case err != nil:
		return internalError(err, "Failed to create booking")
	}
	rc.Nights = nights

	emit(c, h.Events, queue.NewBookingEvent(queue.KeyBookingCreated, queue.BookingEvent{
		BookingID:   rc.ID,
		UserID:      uid,
		RoomTypeID:  req.RoomTypeID,
		HotelName:   rc.HotelName,
		RoomType:    rc.RoomType,
		CheckIn:     rc.CheckIn,
		CheckOut:    rc.CheckOut,
		Nights:      nights,
		TotalAmount: rc.TotalAmount,
		Status:      rc.Status,
	}))
	return respond(c, http.StatusCreated, "Booking created successfully", rc)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "booking ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	d, err := h.Bookings.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return internalError(err, "Failed to fetch booking")
	}
	if !canAccess(c, d.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return respond(c, http.StatusOK, "", d)
}

// Cancel releases the inventory of a booking and refunds a settled
// payment.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseID(c, "id", "booking ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Bookings.GetState(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return internalError(err, "Failed to cancel booking")
	}
	if !canAccess(c, st.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	if st.Status == model.BookingCancelled {
		return echo.NewHTTPError(http.StatusBadRequest, "Booking is already cancelled")
	}

	err = h.Bookings.Cancel(ctx, id)
	if errors.Is(err, repository.ErrAlreadyCancelled) {
		return echo.NewHTTPError(http.StatusBadRequest, "Booking is already cancelled")
	}
	if err != nil {
		return internalError(err, "Failed to cancel booking")
	}

	emit(c, h.Events, queue.NewBookingEvent(queue.KeyBookingCancelled, queue.BookingEvent{
		BookingID: id,
		UserID:    st.UserID,
		HotelName: st.HotelName,
		RoomType:  st.RoomType,
		Status:    model.BookingCancelled,
	}))
	return respond(c, http.StatusOK, "Booking cancelled successfully", echo.Map{
		"booking_id": id,
		"status":     model.BookingCancelled,
	})
}

// ListForUser serves /users/:id/bookings to the user or an admin.
func (h *BookingHandler) ListForUser(c echo.Context) error {
	userID, err := parseID(c, "id", "user ID")
	if err != nil {
		return err
	}
	if !canAccess(c, userID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	page, limit := pageQuery(c, 10, 100)
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))

	ctx, cancel := dbCtx(c)
	defer cancel()
	bookings, total, err := h.Bookings.ListByUser(ctx, userID, status, page, limit)
	if err != nil {
		return internalError(err, "Failed to fetch bookings")
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"bookings":   bookings,
		"pagination": model.NewPagination(page, limit, total),
	})
}
