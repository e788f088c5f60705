package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// HotelRepo reads hotel detail pages and hotel reviews.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// GetByID returns a hotel joined with its city.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	const q = `SELECT h.hotel_id, h.name, h.address, h.rating, c.name, c.country
		FROM Hotel h
		JOIN City c ON h.city_id = c.city_id
		WHERE h.hotel_id = ?`
	var h model.Hotel
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.Address, &h.Rating, &h.CityName, &h.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return h, ErrHotelNotFound
	}
	return h, err
}

// RoomTypeQuotes lists a hotel's room types priced for date (YYYY-MM-DD),
// cheapest first.
func (r *HotelRepo) RoomTypeQuotes(ctx context.Context, hotelID uint64, date string) ([]model.RoomTypeQuote, error) {
	const q = `SELECT rt.room_type_id, rt.name, rt.base_price, rt.max_guests,
			GetSeasonalPrice(rt.room_type_id, ?) AS current_price
		FROM RoomType rt
		WHERE rt.hotel_id = ?
		ORDER BY rt.base_price`
	rows, err := r.db.QueryContext(ctx, q, date, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RoomTypeQuote{}
	for rows.Next() {
		var (
			rt    model.RoomTypeQuote
			price sql.NullFloat64
		)
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.BasePrice, &rt.MaxGuests, &price); err != nil {
			return nil, err
		}
		rt.CurrentPrice = rt.BasePrice
		if price.Valid {
			rt.CurrentPrice = price.Float64
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// RatingSummary returns the review count and the average rating rounded
// to one decimal. ok is false when the hotel has no reviews.
func (r *HotelRepo) RatingSummary(ctx context.Context, hotelID uint64) (total int, avg float64, ok bool, err error) {
	var avgNull sql.NullFloat64
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(r.review_id), ROUND(AVG(r.rating), 1) FROM Review r WHERE r.hotel_id = ?",
		hotelID).Scan(&total, &avgNull)
	if err != nil {
		return 0, 0, false, err
	}
	return total, avgNull.Float64, avgNull.Valid, nil
}

// GetDetail loads the hotel, its priced room types and the rating summary
// concurrently. average_rating falls back to the hotel's own rating when
// there are no reviews.
func (r *HotelRepo) GetDetail(ctx context.Context, id uint64, date string) (model.HotelDetail, error) {
	var (
		d      model.HotelDetail
		hotel  model.Hotel
		quotes []model.RoomTypeQuote
		total  int
		avg    float64
		hasAvg bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hotel, err = r.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = r.RoomTypeQuotes(gctx, id, date)
		return err
	})
	g.Go(func() error {
		var err error
		total, avg, hasAvg, err = r.RatingSummary(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return d, err
	}

	d.Hotel = hotel
	d.RoomTypes = quotes
	d.TotalReviews = total
	d.AverageRating = hotel.Rating
	if hasAvg {
		d.AverageRating = avg
	}
	return d, nil
}

// ListReviews pages through a hotel's reviews, newest first. A non-zero
// rating keeps only reviews with exactly that rating.
func (r *HotelRepo) ListReviews(ctx context.Context, hotelID uint64, rating, page, limit int) ([]model.Review, int64, error) {
	where := []string{"r.hotel_id = ?"}
	args := []any{hotelID}
	if rating > 0 {
		where = append(where, "r.rating = ?")
		args = append(args, rating)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM Review r WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT r.review_id, r.rating, r.review_title, r.review_text,
			r.helpful_count, r.created_at, r.is_verified,
			u.full_name AS reviewer_name
		FROM Review r
		JOIN ` + "`User`" + ` u ON r.user_id = u.user_id
		WHERE ` + cond + `
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Title, &rv.Text, &rv.HelpfulCount, &rv.CreatedAt, &rv.IsVerified, &rv.ReviewerName); err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}
