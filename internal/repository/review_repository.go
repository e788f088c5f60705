package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// ReviewRepo wraps AddReview and MarkReviewHelpful and the plain review
// queries.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ReviewInput carries the editable fields of a review.
type ReviewInput struct {
	Rating int
	Title  string
	Text   string
}

const reviewSelect = `SELECT r.review_id, r.booking_id, r.user_id, r.hotel_id, r.rating,
		r.review_title, r.review_text, r.helpful_count, r.is_verified, r.created_at,
		u.full_name, h.name, c.name
	FROM Review r
	JOIN ` + "`User`" + ` u ON r.user_id = u.user_id
	JOIN Hotel h ON r.hotel_id = h.hotel_id
	JOIN City c ON h.city_id = c.city_id`

func scanReview(s interface{ Scan(...any) error }) (model.Review, error) {
	var rv model.Review
	err := s.Scan(&rv.ID, &rv.BookingID, &rv.UserID, &rv.HotelID, &rv.Rating,
		&rv.Title, &rv.Text, &rv.HelpfulCount, &rv.IsVerified, &rv.CreatedAt,
		&rv.ReviewerName, &rv.HotelName, &rv.CityName)
	return rv, err
}

// Add calls AddReview and returns the stored review.
func (r *ReviewRepo) Add(ctx context.Context, bookingID, userID uint64, in ReviewInput) (model.Review, error) {
	if _, err := r.db.ExecContext(ctx, "CALL AddReview(?, ?, ?, ?, ?)",
		bookingID, userID, in.Rating, in.Title, in.Text); err != nil {
		// a concurrent insert can pass the procedure's existence check and
		// lose on the unique key
		if isDuplicateKey(err) {
			return model.Review{}, fmt.Errorf("%w: %w", ErrReviewExists, err)
		}
		return model.Review{}, ClassifyProcError(err)
	}
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.booking_id = ?", bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return rv, ErrReviewNotFound
	}
	return rv, err
}

// GetByID returns a review with reviewer, hotel and city names.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.review_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return rv, ErrReviewNotFound
	}
	return rv, err
}

// OwnerOf returns the user who wrote the review.
func (r *ReviewRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var uid uint64
	err := r.db.QueryRowContext(ctx, "SELECT user_id FROM Review WHERE review_id = ?", id).Scan(&uid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrReviewNotFound
	}
	return uid, err
}

// MarkHelpful records one helpful vote per user.
func (r *ReviewRepo) MarkHelpful(ctx context.Context, reviewID, userID uint64) error {
	if _, err := r.db.ExecContext(ctx, "CALL MarkReviewHelpful(?, ?)", reviewID, userID); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %w", ErrAlreadyMarkedHelpful, err)
		}
		return ClassifyProcError(err)
	}
	return nil
}

// Update rewrites the rating, title and text of a review.
func (r *ReviewRepo) Update(ctx context.Context, id uint64, in ReviewInput) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE Review SET rating = ?, review_title = ?, review_text = ?, updated_at = UTC_TIMESTAMP() WHERE review_id = ?",
		in.Rating, in.Title, in.Text, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM Review WHERE review_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// ListRecent pages through verified reviews across all hotels.
func (r *ReviewRepo) ListRecent(ctx context.Context, page, limit int) ([]model.Review, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Review WHERE is_verified = TRUE").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		reviewSelect+" WHERE r.is_verified = TRUE ORDER BY r.created_at DESC, r.review_id DESC LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}
