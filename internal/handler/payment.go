package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/payment"
	"github.com/iliyamo/hotel-booking-api/internal/queue"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

type PaymentStore interface {
	AmountForBooking(ctx context.Context, bookingID uint64) (float64, error)
	MarkFailed(ctx context.Context, bookingID uint64) error
	MarkPaid(ctx context.Context, bookingID uint64, method string) (model.Payment, error)
	GetByID(ctx context.Context, id uint64) (model.Payment, error)
	MarkRefunded(ctx context.Context, id uint64) error
}

// BookingStateLookup is the part of BookingStore payments depend on.
type BookingStateLookup interface {
	GetState(ctx context.Context, id uint64) (model.BookingState, error)
}

type PaymentHandler struct {
	Payments PaymentStore
	Bookings BookingStateLookup
	Gateway  payment.Gateway
	Events   queue.Publisher
}

func NewPaymentHandler(p PaymentStore, b BookingStateLookup, gw payment.Gateway, ev queue.Publisher) *PaymentHandler {
	return &PaymentHandler{Payments: p, Bookings: b, Gateway: gw, Events: ev}
}

type payReq struct {
	BookingID     uint64 `json:"booking_id" validate:"required,min=1" msg:"Valid booking_id required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CARD UPI NETBANKING CASH" msg:"Valid payment method required"`
	CardNumber    string `json:"card_number" validate:"omitempty,credit_card" msg:"Valid card number required"`
	Expiry        string `json:"expiry" validate:"omitempty,expiry" msg:"Valid expiry format required (MM/YY)"`
	CVV           string `json:"cvv" validate:"omitempty,numeric,min=3,max=4" msg:"Valid CVV required"`
}

type refundReq struct {
	Reason string `json:"reason"`
}

// Process charges the amount recorded by MakeBooking. Only the booking's
// owner may pay for it.
func (h *PaymentHandler) Process(c echo.Context) error {
	uid, err := mustUserID(c)
	if err != nil {
		return err
	}
	var req payReq
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	req.PaymentMethod = strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Bookings.GetState(ctx, req.BookingID)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return internalError(err, "Payment processing failed")
	}
	if st.UserID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	if st.Status == model.BookingCancelled {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot pay for cancelled booking")
	}
	if st.PaymentStatus != nil && *st.PaymentStatus == model.PaymentSuccess {
		return echo.NewHTTPError(http.StatusBadRequest, "Payment already completed for this booking")
	}

	amount, err := h.Payments.AmountForBooking(ctx, req.BookingID)
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Payment record not found")
	}
	if err != nil {
		return internalError(err, "Payment processing failed")
	}

	res, err := h.Gateway.Charge(ctx, payment.Charge{
		BookingID:  req.BookingID,
		Amount:     amount,
		Method:     req.PaymentMethod,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		return internalError(err, "Payment processing failed")
	}
	if !res.Approved {
		if err := h.Payments.MarkFailed(ctx, req.BookingID); err != nil {
			return internalError(err, "Payment processing failed")
		}
		emit(c, h.Events, queue.NewPaymentEvent(queue.KeyPaymentFailed, queue.PaymentEvent{
			BookingID: req.BookingID,
			UserID:    uid,
			Amount:    amount,
			Method:    req.PaymentMethod,
			Status:    model.PaymentFailed,
			Reason:    res.DeclineReason,
		}))
		return echo.NewHTTPError(http.StatusBadRequest, "Payment processing failed. Please try again.")
	}

	p, err := h.Payments.MarkPaid(ctx, req.BookingID, req.PaymentMethod)
	if errors.Is(err, repository.ErrAlreadyPaid) {
		return echo.NewHTTPError(http.StatusBadRequest, "Payment already completed for this booking")
	}
	if err != nil {
		return internalError(err, "Payment processing failed")
	}

	emit(c, h.Events, queue.NewPaymentEvent(queue.KeyPaymentSucceeded, queue.PaymentEvent{
		PaymentID:      p.ID,
		BookingID:      req.BookingID,
		UserID:         uid,
		Amount:         p.Amount,
		Method:         req.PaymentMethod,
		Status:         p.Status,
		TransactionRef: res.TransactionRef,
	}))
	return respond(c, http.StatusOK, "Payment processed successfully", model.PaymentReceipt{
		PaymentID:      p.ID,
		BookingID:      req.BookingID,
		Amount:         p.Amount,
		Status:         p.Status,
		TransactionRef: res.TransactionRef,
		PaidAt:         p.PaidAt,
		HotelName:      st.HotelName,
		RoomType:       st.RoomType,
	})
}

func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "payment ID")
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
	}
	if err != nil {
		return internalError(err, "Failed to fetch payment details")
	}
	if !canAccess(c, p.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
	return respond(c, http.StatusOK, "", p)
}

// Refund is admin only. It does not release the booking's inventory;
// cancelling the booking does that.
func (h *PaymentHandler) Refund(c echo.Context) error {
	id, err := parseID(c, "id", "payment ID")
	if err != nil {
		return err
	}
	var req refundReq
	_ = c.Bind(&req) // the body is optional
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Refund requested by admin"
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Payments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Payment not found")
	}
	if err != nil {
		return internalError(err, "Refund processing failed")
	}
	switch p.Status {
	case model.PaymentRefunded:
		return echo.NewHTTPError(http.StatusBadRequest, "Payment already refunded")
	case model.PaymentSuccess:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Can only refund successful payments")
	}

	err = h.Payments.MarkRefunded(ctx, id)
	if errors.Is(err, repository.ErrNotRefundable) {
		return echo.NewHTTPError(http.StatusBadRequest, "Can only refund successful payments")
	}
	if err != nil {
		return internalError(err, "Refund processing failed")
	}

	emit(c, h.Events, queue.NewPaymentEvent(queue.KeyPaymentRefunded, queue.PaymentEvent{
		PaymentID: id,
		BookingID: p.BookingID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    model.PaymentRefunded,
		Reason:    reason,
	}))
	return respond(c, http.StatusOK, "Refund processed successfully", model.Refund{
		PaymentID:    id,
		BookingID:    p.BookingID,
		RefundAmount: p.Amount,
		Reason:       reason,
	})
}
