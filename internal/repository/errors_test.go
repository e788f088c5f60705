package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func signal(msg string) error {
	return &mysql.MySQLError{Number: 1644, SQLState: [5]byte{'4', '5', '0', '0', '0'}, Message: msg}
}

func TestClassifyProcError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{"Insufficient inventory for the selected dates", ErrInsufficientInventory},
		{"Booking is already cancelled", ErrAlreadyCancelled},
		{"Review already exists for this booking", ErrReviewExists},
		{"You can only review your own bookings", ErrNotBookingOwner},
		{"Cannot review a cancelled booking", ErrBookingCancelled},
		{"You have already marked this review as helpful", ErrAlreadyMarkedHelpful},
		{"Start date must be before end date", ErrInvalidDateRange},
		{"Price multiplier must be between 0 and 5.0", ErrMultiplierRange},
		{"Booking not found", ErrBookingNotFound},
		{"Room type not found", ErrRoomTypeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			src := signal(tc.msg)
			got := ClassifyProcError(src)
			assert.ErrorIs(t, got, tc.want)

			var me *mysql.MySQLError
			assert.True(t, errors.As(got, &me), "driver error must stay in the chain")
		})
	}
}

func TestClassifyProcErrorPlainText(t *testing.T) {
	err := errors.New("Error 1644 (45000): Insufficient inventory for the selected dates")
	assert.ErrorIs(t, ClassifyProcError(err), ErrInsufficientInventory)
}

func TestClassifyProcErrorPassThrough(t *testing.T) {
	assert.Nil(t, ClassifyProcError(nil))

	other := errors.New("connection refused")
	assert.Same(t, other, ClassifyProcError(other))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKey(errors.New("Error 1062: Duplicate entry 'a@b' for key 'uq_user_email'")))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
}
