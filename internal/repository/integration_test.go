//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-api/internal/database"
	"github.com/iliyamo/hotel-booking-api/internal/model"
	"github.com/iliyamo/hotel-booking-api/internal/repository"
)

// startMySQL runs a throwaway MySQL 8 container and applies migrations/.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "dockertest")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotel_booking",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mysql")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	pool.MaxWait = 2 * time.Minute
	opt := database.Options{
		User: "root", Pass: "root", Host: "127.0.0.1", Port: resource.GetPort("3306/tcp"), Name: "hotel_booking",
	}
	var mdb *sql.DB
	err = pool.Retry(func() error {
		var e error
		mdb, e = database.OpenForMigrations(context.Background(), opt)
		return e
	})
	require.NoError(t, err, "connect mysql")
	applied, err := database.Migrate(context.Background(), mdb, "../../migrations")
	require.NoError(t, err)
	require.Len(t, applied, 3)
	require.NoError(t, mdb.Close())

	db, err := database.Open(context.Background(), opt)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format("2006-01-02")
}

func TestStoredRoutines(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	reviews := repository.NewReviewRepo(db)
	pricing := repository.NewPricingRepo(db)

	guest, err := users.Create(ctx, repository.NewUser{FullName: "Asha Rao", Email: "asha@example.com", Password: "secret123", Role: model.RoleUser}, 4)
	require.NoError(t, err)
	other, err := users.Create(ctx, repository.NewUser{FullName: "Ravi Shah", Email: "ravi@example.com", Password: "secret123", Role: model.RoleUser}, 4)
	require.NoError(t, err)

	rc, err := bookings.Create(ctx, repository.NewBooking{
		UserID: guest, RoomTypeID: 1, CheckIn: day(3), CheckOut: day(5), Total: 7000, Method: "CARD",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", rc.Status)
	assert.InDelta(t, 7000, rc.TotalAmount, 0.001)

	t.Run("payment is charged once", func(t *testing.T) {
		p, err := payments.MarkPaid(ctx, rc.ID, "UPI")
		require.NoError(t, err)
		assert.Equal(t, "SUCCESS", p.Status)
		assert.NotNil(t, p.PaidAt)

		_, err = payments.MarkPaid(ctx, rc.ID, "UPI")
		assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
	})

	t.Run("reviews", func(t *testing.T) {
		rv, err := reviews.Add(ctx, rc.ID, guest, repository.ReviewInput{Rating: 5, Title: "Lovely", Text: "Quiet room near the beach."})
		require.NoError(t, err)
		assert.True(t, rv.IsVerified)
		assert.Equal(t, "Asha Rao", rv.ReviewerName)

		_, err = reviews.Add(ctx, rc.ID, guest, repository.ReviewInput{Rating: 4, Title: "Again", Text: "Second try."})
		assert.ErrorIs(t, err, repository.ErrReviewExists)

		_, err = reviews.Add(ctx, rc.ID, other, repository.ReviewInput{Rating: 1, Title: "Not mine", Text: "Someone else's booking."})
		assert.ErrorIs(t, err, repository.ErrNotBookingOwner)

		_, err = reviews.Add(ctx, 999999, guest, repository.ReviewInput{Rating: 3, Title: "Ghost", Text: "No such booking."})
		assert.ErrorIs(t, err, repository.ErrBookingNotFound)

		require.NoError(t, reviews.MarkHelpful(ctx, rv.ID, other))
		assert.ErrorIs(t, reviews.MarkHelpful(ctx, rv.ID, other), repository.ErrAlreadyMarkedHelpful)
		assert.ErrorIs(t, reviews.MarkHelpful(ctx, 999999, other), repository.ErrReviewNotFound)

		got, err := reviews.GetByID(ctx, rv.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.HelpfulCount)
	})

	t.Run("cancel refunds and rejects a second cancel", func(t *testing.T) {
		require.NoError(t, bookings.Cancel(ctx, rc.ID))
		assert.ErrorIs(t, bookings.Cancel(ctx, rc.ID), repository.ErrAlreadyCancelled)
		assert.ErrorIs(t, bookings.Cancel(ctx, 999999), repository.ErrBookingNotFound)

		st, err := bookings.GetState(ctx, rc.ID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", st.Status)

		d, err := bookings.GetDetail(ctx, rc.ID)
		require.NoError(t, err)
		require.NotNil(t, d.PaymentStatus)
		assert.Equal(t, "REFUNDED", *d.PaymentStatus)
	})

	t.Run("cancelled bookings cannot be reviewed", func(t *testing.T) {
		b, err := bookings.Create(ctx, repository.NewBooking{
			UserID: other, RoomTypeID: 1, CheckIn: day(10), CheckOut: day(11), Total: 3500, Method: "CARD",
		})
		require.NoError(t, err)
		require.NoError(t, bookings.Cancel(ctx, b.ID))
		_, err = reviews.Add(ctx, b.ID, other, repository.ReviewInput{Rating: 2, Title: "Cancelled", Text: "Never stayed."})
		assert.ErrorIs(t, err, repository.ErrBookingCancelled)
	})

	t.Run("inventory runs out", func(t *testing.T) {
		// seed stocks five rooms per night
		for i := 0; i < 5; i++ {
			_, err := bookings.Create(ctx, repository.NewBooking{
				UserID: guest, RoomTypeID: 2, CheckIn: day(200), CheckOut: day(202), Total: 1, Method: "CARD",
			})
			require.NoError(t, err, "booking %d", i+1)
		}
		_, err := bookings.Create(ctx, repository.NewBooking{
			UserID: guest, RoomTypeID: 2, CheckIn: day(201), CheckOut: day(203), Total: 1, Method: "CARD",
		})
		assert.ErrorIs(t, err, repository.ErrInsufficientInventory)

		_, err = bookings.Create(ctx, repository.NewBooking{
			UserID: guest, RoomTypeID: 2, CheckIn: day(500), CheckOut: day(501), Total: 1, Method: "CARD",
		})
		assert.ErrorIs(t, err, repository.ErrInsufficientInventory, "no inventory rows past the seeded year")
	})

	t.Run("seasonal pricing", func(t *testing.T) {
		_, err := pricing.Add(ctx, repository.PricingInput{
			RoomTypeID: 3, SeasonName: "Backwards", StartDate: day(40), EndDate: day(30), PriceMultiplier: 1.2, Priority: 1, IsActive: true,
		})
		assert.ErrorIs(t, err, repository.ErrInvalidDateRange)

		_, err = pricing.Add(ctx, repository.PricingInput{
			RoomTypeID: 424242, SeasonName: "Nowhere", StartDate: day(30), EndDate: day(40), PriceMultiplier: 1.2, Priority: 1, IsActive: true,
		})
		assert.ErrorIs(t, err, repository.ErrRoomTypeNotFound)

		rule, err := pricing.Add(ctx, repository.PricingInput{
			RoomTypeID: 3, SeasonName: "Festival", StartDate: day(30), EndDate: day(40), PriceMultiplier: 2, Priority: 9, IsActive: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Festival", rule.SeasonName)

		q, err := pricing.Quote(ctx, 3, day(35))
		require.NoError(t, err)
		assert.InDelta(t, q.BasePrice*2, q.CurrentPrice, 0.01)
		assert.InDelta(t, 100, q.PriceChangePercent, 0.01)
		require.NotNil(t, q.ActiveSeason)
		assert.Equal(t, "Festival", *q.ActiveSeason)

		require.NoError(t, pricing.Delete(ctx, rule.ID))
		q, err = pricing.Quote(ctx, 3, day(35))
		require.NoError(t, err)
		assert.InDelta(t, q.BasePrice, q.CurrentPrice, 0.01)
	})
}
