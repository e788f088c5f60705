package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingListBuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	active := true
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE sp.room_type_id = ? AND sp.is_active = ? AND ? BETWEEN sp.start_date AND sp.end_date ORDER BY sp.priority DESC, sp.start_date")).
		WithArgs(uint64(2), true, "2030-07-01").
		WillReturnRows(sqlmock.NewRows([]string{"a"}))

	out, err := NewPricingRepo(db).List(context.Background(), PricingFilter{RoomTypeID: 2, IsActive: &active, Date: "2030-07-01"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingAddRejectsBadMultiplier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CALL AddSeasonalPricing(?, ?, ?, ?, ?, ?, ?)")).
		WillReturnError(signal("Price multiplier must be between 0 and 5.0"))

	_, err = NewPricingRepo(db).Add(context.Background(), PricingInput{RoomTypeID: 1, PriceMultiplier: 9})
	assert.ErrorIs(t, err, ErrMultiplierRange)
}

func TestPricingUpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM SeasonalPricing")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err = NewPricingRepo(db).Update(context.Background(), 4, PricingInput{})
	assert.ErrorIs(t, err, ErrPricingNotFound)
}

func TestPricingQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("GetSeasonalPrice").
		WithArgs("2030-12-24", "2030-12-24", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rt", "h", "base", "price", "season"}).
			AddRow(3, "Suite", "Grand", 200.0, 250.0, "Holidays"))

	q, err := NewPricingRepo(db).Quote(context.Background(), 3, "2030-12-24")
	require.NoError(t, err)
	assert.Equal(t, 250.0, q.CurrentPrice)
	assert.Equal(t, 25.0, q.PriceChangePercent)
	require.NotNil(t, q.ActiveSeason)
	assert.Equal(t, "Holidays", *q.ActiveSeason)
}

func TestPricingQuoteUnknownRoomType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("GetSeasonalPrice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "rt", "h", "base", "price", "season"}))

	_, err = NewPricingRepo(db).Quote(context.Background(), 99, "2030-12-24")
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}
