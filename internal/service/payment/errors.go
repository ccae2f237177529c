package payment

import "errors"

var (
	ErrCardExpired  = errors.New("card expired")
	ErrDeclined     = errors.New("payment declined")
	ErrRefundFailed = errors.New("refund failed")
)
