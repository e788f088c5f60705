package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking-api/internal/model"
)

// RoomTypeRepo answers inventory and price questions for one room type.
type RoomTypeRepo struct {
	db *sql.DB
}

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

// GetByID returns a room type with its hotel name.
func (r *RoomTypeRepo) GetByID(ctx context.Context, id uint64) (model.RoomType, error) {
	const q = `SELECT rt.room_type_id, rt.hotel_id, rt.name, rt.max_guests, rt.base_price, h.name
		FROM RoomType rt
		JOIN Hotel h ON rt.hotel_id = h.hotel_id
		WHERE rt.room_type_id = ?`
	var rt model.RoomType
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.MaxGuests, &rt.BasePrice, &rt.HotelName)
	if errors.Is(err, sql.ErrNoRows) {
		return rt, ErrRoomTypeNotFound
	}
	return rt, err
}

// SeasonalPrice evaluates GetSeasonalPrice for a room type and date. The
// function yields NULL for unknown room types, reported as
// ErrRoomTypeNotFound.
func (r *RoomTypeRepo) SeasonalPrice(ctx context.Context, id uint64, date string) (float64, error) {
	var price sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, "SELECT GetSeasonalPrice(?, ?)", id, date).Scan(&price); err != nil {
		return 0, err
	}
	if !price.Valid {
		return 0, ErrRoomTypeNotFound
	}
	return price.Float64, nil
}

// MinInventory returns the smallest nightly quantity over [checkIn,
// checkOut). A range without inventory rows yields 0.
func (r *RoomTypeRepo) MinInventory(ctx context.Context, id uint64, checkIn, checkOut string) (int, error) {
	var min sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(qty) FROM RoomInventory
		WHERE room_type_id = ? AND stay_date >= ? AND stay_date < ?`,
		id, checkIn, checkOut).Scan(&min)
	if err != nil {
		return 0, err
	}
	return int(min.Int64), nil
}

// Calendar lists inventory and nightly price for every stay date in
// [start, end].
func (r *RoomTypeRepo) Calendar(ctx context.Context, id uint64, start, end string) ([]model.CalendarDay, error) {
	const q = `SELECT DATE_FORMAT(ri.stay_date, '%Y-%m-%d'), ri.qty,
			GetSeasonalPrice(ri.room_type_id, ri.stay_date)
		FROM RoomInventory ri
		WHERE ri.room_type_id = ? AND ri.stay_date >= ? AND ri.stay_date <= ?
		ORDER BY ri.stay_date`
	rows, err := r.db.QueryContext(ctx, q, id, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CalendarDay{}
	for rows.Next() {
		var d model.CalendarDay
		if err := rows.Scan(&d.StayDate, &d.AvailableRooms, &d.PricePerNight); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
