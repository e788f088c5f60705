// Package repository defines the data access layer and the error values
// shared by every repository.  Not-found sentinels let handlers answer 404
// without inspecting SQL errors; the procedure sentinels below are produced
// by ClassifyProcError from the messages raised by stored routines.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrCityNotFound     = errors.New("city not found")
	ErrHotelNotFound    = errors.New("hotel not found")
	ErrRoomTypeNotFound = errors.New("room type not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrPricingNotFound  = errors.New("seasonal pricing rule not found")

	// ErrAlreadyPaid is returned when a charge races with another that
	// already moved the payment to SUCCESS.
	ErrAlreadyPaid = errors.New("payment already completed")
)

// Conditions signalled by stored procedures.
var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrAlreadyCancelled      = errors.New("booking already cancelled")
	ErrReviewExists          = errors.New("review already exists")
	ErrNotBookingOwner       = errors.New("booking belongs to another user")
	ErrBookingCancelled      = errors.New("booking is cancelled")
	ErrAlreadyMarkedHelpful  = errors.New("review already marked helpful")
	ErrInvalidDateRange      = errors.New("start date must be before end date")
	ErrMultiplierRange       = errors.New("price multiplier out of range")
)

// procRules maps message fragments raised with SIGNAL to sentinels. Order
// matters: the first matching fragment wins.
var procRules = []struct {
	fragment string
	err      error
}{
	{"Insufficient inventory", ErrInsufficientInventory},
	{"already cancelled", ErrAlreadyCancelled},
	{"already exists", ErrReviewExists},
	{"only review your own", ErrNotBookingOwner},
	{"cancelled booking", ErrBookingCancelled},
	{"already marked", ErrAlreadyMarkedHelpful},
	{"Start date must be before end date", ErrInvalidDateRange},
	{"Price multiplier must be between", ErrMultiplierRange},
	{"Booking not found", ErrBookingNotFound},
	{"Review not found", ErrReviewNotFound},
	{"Room type not found", ErrRoomTypeNotFound},
}

// ClassifyProcError wraps err with the sentinel matching its database
// message so callers can use errors.Is. The original error stays in the
// chain. Unrecognised errors are returned unchanged.
func ClassifyProcError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		msg = me.Message
	}
	for _, r := range procRules {
		if strings.Contains(msg, r.fragment) {
			return fmt.Errorf("%w: %w", r.err, err)
		}
	}
	return err
}

// isDuplicateKey reports a MySQL 1062 duplicate entry error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
