package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// CityRepo reads cities and the hotels located in them.
type CityRepo struct {
	db *sql.DB
}

func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// HotelFilter narrows and orders a city's hotel listing. Zero rating bounds
// are ignored. SortBy is one of name, rating, price_from; anything else
// sorts by name.
type HotelFilter struct {
	RatingMin *float64
	RatingMax *float64
	SortBy    string
	Desc      bool
}

var hotelSortColumns = map[string]string{
	"name":       "h.name",
	"rating":     "h.rating",
	"price_from": "price_from",
}

// List returns every city ordered by name.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT city_id, name, country FROM City ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.City{}
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns ErrCityNotFound when the id is unknown.
func (r *CityRepo) GetByID(ctx context.Context, id uint64) (model.City, error) {
	var c model.City
	err := r.db.QueryRowContext(ctx, "SELECT city_id, name, country FROM City WHERE city_id = ?", id).
		Scan(&c.ID, &c.Name, &c.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCityNotFound
	}
	return c, err
}

// ListHotels returns the hotels of a city with their room type count and
// lowest base price.
func (r *CityRepo) ListHotels(ctx context.Context, cityID uint64, f HotelFilter) ([]model.HotelSummary, error) {
	where := []string{"h.city_id = ?"}
	args := []any{cityID}
	if f.RatingMin != nil {
		where = append(where, "h.rating >= ?")
		args = append(args, *f.RatingMin)
	}
	if f.RatingMax != nil {
		where = append(where, "h.rating <= ?")
		args = append(args, *f.RatingMax)
	}

	sortCol, ok := hotelSortColumns[strings.ToLower(f.SortBy)]
	if !ok {
		sortCol = "h.name"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}

	q := `SELECT h.hotel_id, h.name, h.address, h.rating,
			c.name AS city_name, c.country,
			COUNT(rt.room_type_id) AS room_types_count,
			MIN(rt.base_price)     AS price_from
		FROM Hotel h
		JOIN City c ON h.city_id = c.city_id
		LEFT JOIN RoomType rt ON h.hotel_id = rt.hotel_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY h.hotel_id, h.name, h.address, h.rating, c.name, c.country
		ORDER BY ` + sortCol + " " + dir

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HotelSummary{}
	for rows.Next() {
		var (
			h         model.HotelSummary
			priceFrom sql.NullFloat64
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Rating, &h.CityName, &h.Country, &h.RoomTypesCount, &priceFrom); err != nil {
			return nil, err
		}
		if priceFrom.Valid {
			h.PriceFrom = &priceFrom.Float64
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
