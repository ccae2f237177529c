package coupon

import "errors"

var (
	ErrInvalid        = errors.New("coupon is unknown or expired")
	ErrAlreadyApplied = errors.New("booking already carries a coupon")
)
