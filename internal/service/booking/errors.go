package booking

import (
	"errors"
	"fmt"

	"github.com/cinelab/cinetix/internal/domain"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDuplicateBooking  = errors.New("a pending booking for this screening already exists")
	ErrSeatConflict      = errors.New("selected seats are no longer available")
	ErrIllegalTransition = errors.New("illegal booking status transition")
)

type IllegalTransitionError struct {
	BookingID int64
	From      domain.Status
	To        domain.Status
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot transition from %s to %s", e.BookingID, e.From, e.To)
}

func (e IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }
