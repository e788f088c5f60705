package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// ErrNotRefundable is returned when a refund targets a payment that is not
// in SUCCESS state at update time.
var ErrNotRefundable = errors.New("payment is not refundable")

// PaymentRepo owns the Payment row created by MakeBooking.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// AmountForBooking returns the amount due for a booking.
func (r *PaymentRepo) AmountForBooking(ctx context.Context, bookingID uint64) (float64, error) {
	var amount float64
	err := r.db.QueryRowContext(ctx, "SELECT amount FROM Payment WHERE booking_id = ?", bookingID).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPaymentNotFound
	}
	return amount, err
}

// MarkFailed records a declined charge. A payment that already succeeded
// is left untouched.
func (r *PaymentRepo) MarkFailed(ctx context.Context, bookingID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE Payment SET status = 'FAILED', paid_at = UTC_TIMESTAMP() WHERE booking_id = ? AND status <> 'SUCCESS'",
		bookingID)
	return err
}

// MarkPaid moves the booking's payment to SUCCESS and returns the updated
// row. It returns ErrAlreadyPaid when a concurrent charge won.
func (r *PaymentRepo) MarkPaid(ctx context.Context, bookingID uint64, method string) (model.Payment, error) {
	var p model.Payment
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return p, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE Payment SET status = 'SUCCESS', paid_at = UTC_TIMESTAMP(), method = ? WHERE booking_id = ? AND status <> 'SUCCESS'",
		method, bookingID)
	if err != nil {
		return p, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return p, err
	}
	if n == 0 {
		return p, ErrAlreadyPaid
	}

	var paidAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		"SELECT payment_id, booking_id, amount, method, status, paid_at FROM Payment WHERE booking_id = ?",
		bookingID).Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &paidAt)
	if err != nil {
		return p, err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	if err := tx.Commit(); err != nil {
		return p, err
	}
	committed = true
	return p, nil
}

// GetByID loads a payment joined with its booking, room type and hotel.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	const q = `SELECT p.payment_id, p.booking_id, p.amount, p.method, p.status, p.paid_at,
			b.user_id, DATE_FORMAT(b.check_in, '%Y-%m-%d'), DATE_FORMAT(b.check_out, '%Y-%m-%d'),
			rt.name, h.name
		FROM Payment p
		JOIN Booking b ON p.booking_id = b.booking_id
		JOIN RoomType rt ON b.room_type_id = rt.room_type_id
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		WHERE p.payment_id = ?`
	var (
		p      model.Payment
		paidAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &paidAt,
		&p.UserID, &p.CheckIn, &p.CheckOut, &p.RoomType, &p.HotelName)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrPaymentNotFound
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return p, err
}

// MarkRefunded flips a SUCCESS payment to REFUNDED.
func (r *PaymentRepo) MarkRefunded(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE Payment SET status = 'REFUNDED' WHERE payment_id = ? AND status = 'SUCCESS'", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRefundable
	}
	return nil
}
