package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// PricingRepo manages SeasonalPricing rules.
type PricingRepo struct {
	db *sql.DB
}

func NewPricingRepo(db *sql.DB) *PricingRepo { return &PricingRepo{db: db} }

// PricingFilter narrows List. Zero values are ignored; Date keeps rules
// whose range covers it.
type PricingFilter struct {
	RoomTypeID uint64
	HotelID    uint64
	IsActive   *bool
	Date       string
}

// PricingInput is a rule as written by an admin. Dates are YYYY-MM-DD.
type PricingInput struct {
	RoomTypeID      uint64
	SeasonName      string
	Description     *string
	StartDate       string
	EndDate         string
	PriceMultiplier float64
	Priority        int
	IsActive        bool
}

const pricingSelect = `SELECT sp.pricing_id, sp.room_type_id, sp.season_name, sp.description,
		DATE_FORMAT(sp.start_date, '%Y-%m-%d'), DATE_FORMAT(sp.end_date, '%Y-%m-%d'),
		sp.price_multiplier, sp.is_active, sp.priority, sp.created_at, sp.updated_at,
		rt.name, rt.base_price, h.hotel_id, h.name, c.name
	FROM SeasonalPricing sp
	JOIN RoomType rt ON sp.room_type_id = rt.room_type_id
	JOIN Hotel h ON rt.hotel_id = h.hotel_id
	JOIN City c ON h.city_id = c.city_id`

func scanPricing(s interface{ Scan(...any) error }) (model.SeasonalPricing, error) {
	var (
		p         model.SeasonalPricing
		desc      sql.NullString
		updatedAt sql.NullTime
	)
	err := s.Scan(&p.ID, &p.RoomTypeID, &p.SeasonName, &desc,
		&p.StartDate, &p.EndDate,
		&p.PriceMultiplier, &p.IsActive, &p.Priority, &p.CreatedAt, &updatedAt,
		&p.RoomTypeName, &p.BasePrice, &p.HotelID, &p.HotelName, &p.CityName)
	p.Description = nullString(desc)
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	return p, err
}

// List returns rules ordered by priority (highest first) then start date.
func (r *PricingRepo) List(ctx context.Context, f PricingFilter) ([]model.SeasonalPricing, error) {
	var (
		where []string
		args  []any
	)
	if f.RoomTypeID != 0 {
		where = append(where, "sp.room_type_id = ?")
		args = append(args, f.RoomTypeID)
	}
	if f.HotelID != 0 {
		where = append(where, "rt.hotel_id = ?")
		args = append(args, f.HotelID)
	}
	if f.IsActive != nil {
		where = append(where, "sp.is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.Date != "" {
		where = append(where, "? BETWEEN sp.start_date AND sp.end_date")
		args = append(args, f.Date)
	}
	q := pricingSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sp.priority DESC, sp.start_date"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeasonalPricing{}
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Add calls AddSeasonalPricing and returns the newest rule of that room
// type.
func (r *PricingRepo) Add(ctx context.Context, in PricingInput) (model.SeasonalPricing, error) {
	if _, err := r.db.ExecContext(ctx, "CALL AddSeasonalPricing(?, ?, ?, ?, ?, ?, ?)",
		in.RoomTypeID, in.SeasonName, in.Description, in.StartDate, in.EndDate, in.PriceMultiplier, in.Priority); err != nil {
		return model.SeasonalPricing{}, ClassifyProcError(err)
	}
	p, err := scanPricing(r.db.QueryRowContext(ctx,
		pricingSelect+" WHERE sp.room_type_id = ? ORDER BY sp.pricing_id DESC LIMIT 1", in.RoomTypeID))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrPricingNotFound
	}
	return p, err
}

func (r *PricingRepo) GetByID(ctx context.Context, id uint64) (model.SeasonalPricing, error) {
	p, err := scanPricing(r.db.QueryRowContext(ctx, pricingSelect+" WHERE sp.pricing_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrPricingNotFound
	}
	return p, err
}

// Update overwrites a rule. The room type is not changed.
func (r *PricingRepo) Update(ctx context.Context, id uint64, in PricingInput) error {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM SeasonalPricing WHERE pricing_id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPricingNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE SeasonalPricing
		SET season_name = ?, description = ?, start_date = ?, end_date = ?,
			price_multiplier = ?, is_active = ?, priority = ?, updated_at = UTC_TIMESTAMP()
		WHERE pricing_id = ?`,
		in.SeasonName, in.Description, in.StartDate, in.EndDate,
		in.PriceMultiplier, in.IsActive, in.Priority, id)
	return err
}

func (r *PricingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM SeasonalPricing WHERE pricing_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPricingNotFound
	}
	return nil
}

// Quote prices a room type on date and names the winning active season,
// if any.
func (r *PricingRepo) Quote(ctx context.Context, roomTypeID uint64, date string) (model.PriceQuote, error) {
	const q = `SELECT rt.room_type_id, rt.name, h.name, rt.base_price,
			GetSeasonalPrice(rt.room_type_id, ?),
			(SELECT sp.season_name FROM SeasonalPricing sp
				WHERE sp.room_type_id = rt.room_type_id AND sp.is_active = TRUE
					AND ? BETWEEN sp.start_date AND sp.end_date
				ORDER BY sp.priority DESC, sp.pricing_id DESC
				LIMIT 1)
		FROM RoomType rt
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		WHERE rt.room_type_id = ?`
	var (
		pq     model.PriceQuote
		price  sql.NullFloat64
		season sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, date, date, roomTypeID).
		Scan(&pq.RoomTypeID, &pq.RoomTypeName, &pq.HotelName, &pq.BasePrice, &price, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return pq, ErrRoomTypeNotFound
	}
	if err != nil {
		return pq, err
	}
	pq.Date = date
	pq.CurrentPrice = pq.BasePrice
	if price.Valid {
		pq.CurrentPrice = price.Float64
	}
	if pq.BasePrice > 0 {
		pq.PriceChangePercent = math.Round((pq.CurrentPrice-pq.BasePrice)/pq.BasePrice*10000) / 100
	}
	pq.ActiveSeason = nullString(season)
	return pq, nil
}
