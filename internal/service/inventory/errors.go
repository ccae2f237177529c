package inventory

import (
	"errors"
	"fmt"
)

var ErrSeatNotFound = errors.New("seat not found on screening")

type SeatNotFoundError struct {
	ScreeningID int64
	SeatID      string
}

func (e SeatNotFoundError) Error() string {
	return fmt.Sprintf("seat %s not found on screening %d", e.SeatID, e.ScreeningID)
}

func (e SeatNotFoundError) Unwrap() error { return ErrSeatNotFound }
