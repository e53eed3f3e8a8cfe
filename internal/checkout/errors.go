package checkout

import "errors"

var (
	ErrSubmissionInProgress    = errors.New("a sale is already being submitted")
	ErrNotAwaitingConfirmation = errors.New("checkout has not been started")
	ErrNotCancelable           = errors.New("checkout cannot be canceled while submitting")
	ErrInsufficientPayment     = errors.New("received amount is less than the total")
	ErrSubmissionFailed        = errors.New("sale submission failed")
)
