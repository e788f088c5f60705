package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// BookingRepo wraps the MakeBooking and CancelBooking procedures and the
// read queries around bookings.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// NewBooking holds the arguments passed to MakeBooking. Dates are
// YYYY-MM-DD.
type NewBooking struct {
	UserID     uint64
	RoomTypeID uint64
	CheckIn    string
	CheckOut   string
	Total      float64
	Method     string
}

// Create calls MakeBooking and reloads the booking it inserted. Procedure
// errors are classified, so callers can test for ErrInsufficientInventory.
func (r *BookingRepo) Create(ctx context.Context, nb NewBooking) (model.BookingReceipt, error) {
	var rc model.BookingReceipt
	if _, err := r.db.ExecContext(ctx, "CALL MakeBooking(?, ?, ?, ?, ?, ?)",
		nb.UserID, nb.RoomTypeID, nb.CheckIn, nb.CheckOut, nb.Total, nb.Method); err != nil {
		return rc, ClassifyProcError(err)
	}

	const q = `SELECT b.booking_id, b.status, rt.name, h.name, COALESCE(p.amount, 0)
		FROM Booking b
		JOIN RoomType rt ON b.room_type_id = rt.room_type_id
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		LEFT JOIN Payment p ON b.booking_id = p.booking_id
		WHERE b.user_id = ? AND b.room_type_id = ? AND b.check_in = ?
		ORDER BY b.booking_id DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, q, nb.UserID, nb.RoomTypeID, nb.CheckIn).
		Scan(&rc.ID, &rc.Status, &rc.RoomType, &rc.HotelName, &rc.TotalAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return rc, fmt.Errorf("booking not visible after MakeBooking: %w", ErrBookingNotFound)
	}
	if err != nil {
		return rc, err
	}
	rc.CheckIn = nb.CheckIn
	rc.CheckOut = nb.CheckOut
	return rc, nil
}

// GetDetail loads a booking with room type, hotel, city, payment and guest.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (model.BookingDetail, error) {
	const q = `SELECT b.booking_id, b.user_id, b.room_type_id,
			DATE_FORMAT(b.check_in, '%Y-%m-%d'), DATE_FORMAT(b.check_out, '%Y-%m-%d'),
			b.status, b.created_at,
			rt.name, rt.max_guests,
			h.name, h.address, h.rating,
			c.name, c.country,
			p.amount, p.method, p.status,
			u.full_name, u.email
		FROM Booking b
		JOIN RoomType rt ON b.room_type_id = rt.room_type_id
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		JOIN City c ON h.city_id = c.city_id
		LEFT JOIN Payment p ON b.booking_id = p.booking_id
		JOIN ` + "`User`" + ` u ON b.user_id = u.user_id
		WHERE b.booking_id = ?`
	var (
		d                     model.BookingDetail
		amount                sql.NullFloat64
		method, paymentStatus sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.RoomTypeID,
		&d.CheckIn, &d.CheckOut,
		&d.Status, &d.CreatedAt,
		&d.RoomType, &d.MaxGuests,
		&d.Hotel, &d.Address, &d.Rating,
		&d.City, &d.Country,
		&amount, &method, &paymentStatus,
		&d.GuestName, &d.GuestEmail,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrBookingNotFound
	}
	if err != nil {
		return d, err
	}
	d.TotalAmount = nullFloat(amount)
	d.PaymentMethod = nullString(method)
	d.PaymentStatus = nullString(paymentStatus)
	return d, nil
}

// GetState returns the owner, status and payment status of a booking.
func (r *BookingRepo) GetState(ctx context.Context, id uint64) (model.BookingState, error) {
	const q = `SELECT b.booking_id, b.user_id, b.status, p.status, rt.name, h.name
		FROM Booking b
		LEFT JOIN Payment p ON b.booking_id = p.booking_id
		JOIN RoomType rt ON b.room_type_id = rt.room_type_id
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		WHERE b.booking_id = ?`
	var (
		s             model.BookingState
		paymentStatus sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.UserID, &s.Status, &paymentStatus, &s.RoomType, &s.HotelName)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrBookingNotFound
	}
	s.PaymentStatus = nullString(paymentStatus)
	return s, err
}

// Cancel calls CancelBooking, which releases inventory and refunds a
// settled payment.
func (r *BookingRepo) Cancel(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, "CALL CancelBooking(?)", id); err != nil {
		return ClassifyProcError(err)
	}
	return nil
}

// ListByUser pages through a user's bookings, newest first. An empty
// status lists every booking.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, status string, page, limit int) ([]model.BookingSummary, int64, error) {
	where := "b.user_id = ?"
	args := []any{userID}
	if status != "" {
		where += " AND b.status = ?"
		args = append(args, strings.ToUpper(status))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Booking b WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT b.booking_id,
			DATE_FORMAT(b.check_in, '%Y-%m-%d'), DATE_FORMAT(b.check_out, '%Y-%m-%d'),
			b.status, b.created_at,
			rt.name, h.name, h.rating, c.name,
			p.amount, p.status
		FROM Booking b
		JOIN RoomType rt ON b.room_type_id = rt.room_type_id
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		JOIN City c ON h.city_id = c.city_id
		LEFT JOIN Payment p ON b.booking_id = p.booking_id
		WHERE ` + where + `
		ORDER BY b.created_at DESC, b.booking_id DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.BookingSummary, 0, limit)
	for rows.Next() {
		var (
			s             model.BookingSummary
			amount        sql.NullFloat64
			paymentStatus sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.CheckIn, &s.CheckOut, &s.Status, &s.CreatedAt,
			&s.RoomType, &s.Hotel, &s.Rating, &s.City, &amount, &paymentStatus); err != nil {
			return nil, 0, err
		}
		s.TotalAmount = nullFloat(amount)
		s.PaymentStatus = nullString(paymentStatus)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
