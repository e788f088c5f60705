package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityListHotelsFiltersAndSorts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	minRating := 4.0
	mock.ExpectQuery(`(?s)WHERE h.city_id = \? AND h.rating >= \?.*ORDER BY price_from DESC`).
		WithArgs(uint64(2), 4.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "addr", "rating", "city", "country", "n", "price_from"}).
			AddRow(1, "Harbor Inn", "1 Quay St", 4.5, "Lisbon", "Portugal", 2, 80.0).
			AddRow(2, "Empty House", "2 Quay St", 4.1, "Lisbon", "Portugal", 0, nil))

	hotels, err := NewCityRepo(db).ListHotels(context.Background(), 2, HotelFilter{RatingMin: &minRating, SortBy: "PRICE_FROM", Desc: true})
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	require.NotNil(t, hotels[0].PriceFrom)
	assert.Equal(t, 80.0, *hotels[0].PriceFrom)
	assert.Nil(t, hotels[1].PriceFrom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityListHotelsUnknownSortFallsBackToName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`ORDER BY h.name ASC`).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "addr", "rating", "city", "country", "n", "price_from"}))

	hotels, err := NewCityRepo(db).ListHotels(context.Background(), 2, HotelFilter{SortBy: "h.rating; DROP TABLE Hotel"})
	require.NoError(t, err)
	assert.Empty(t, hotels)
}

func TestCityGetByIDUnknown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM City WHERE city_id = \?`).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"city_id", "name", "country"}))

	_, err = NewCityRepo(db).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestHotelGetDetail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("FROM Hotel h").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "addr", "rating", "city", "country"}).
			AddRow(3, "Harbor Inn", "1 Quay St", 4.2, "Lisbon", "Portugal"))
	mock.ExpectQuery("FROM RoomType rt").WithArgs("2026-07-01", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "base", "guests", "price"}).
			AddRow(1, "Standard", 80.0, 2, 100.0).
			AddRow(2, "Suite", 200.0, 4, nil))
	mock.ExpectQuery("FROM Review r WHERE r.hotel_id").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"n", "avg"}).AddRow(0, nil))

	d, err := NewHotelRepo(db).GetDetail(context.Background(), 3, "2026-07-01")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Inn", d.Name)
	require.Len(t, d.RoomTypes, 2)
	assert.Equal(t, 100.0, d.RoomTypes[0].CurrentPrice)
	assert.Equal(t, 200.0, d.RoomTypes[1].CurrentPrice, "NULL price falls back to base")
	assert.Equal(t, 4.2, d.AverageRating, "no reviews falls back to hotel rating")
	assert.Zero(t, d.TotalReviews)
}

func TestHotelGetDetailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery("FROM Hotel h").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "addr", "rating", "city", "country"}))
	mock.ExpectQuery("FROM RoomType rt").WillReturnRows(sqlmock.NewRows([]string{"id", "name", "base", "guests", "price"}))
	mock.ExpectQuery("FROM Review r WHERE r.hotel_id").WillReturnRows(sqlmock.NewRows([]string{"n", "avg"}).AddRow(0, nil))

	_, err = NewHotelRepo(db).GetDetail(context.Background(), 9, "2026-07-01")
	assert.ErrorIs(t, err, ErrHotelNotFound)
}

func TestRoomTypeSeasonalPriceNullIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT GetSeasonalPrice(?, ?)")).
		WithArgs(uint64(77), "2026-07-01").
		WillReturnRows(sqlmock.NewRows([]string{"p"}).AddRow(nil))

	_, err = NewRoomTypeRepo(db).SeasonalPrice(context.Background(), 77, "2026-07-01")
	assert.ErrorIs(t, err, ErrRoomTypeNotFound)
}

func TestRoomTypeMinInventory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(qty) FROM RoomInventory")).
		WithArgs(uint64(1), "2026-07-01", "2026-07-04").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(qty) FROM RoomInventory")).
		WithArgs(uint64(1), "2030-01-01", "2030-01-02").
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nil))

	repo := NewRoomTypeRepo(db)
	n, err := repo.MinInventory(context.Background(), 1, "2026-07-01", "2026-07-04")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.MinInventory(context.Background(), 1, "2030-01-01", "2030-01-02")
	require.NoError(t, err)
	assert.Zero(t, n)
}
