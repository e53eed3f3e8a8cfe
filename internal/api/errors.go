package api

import (
	"errors"
	"net/http"

	"medeasy/pos/internal/cart"
	"medeasy/pos/internal/checkout"
	"medeasy/pos/internal/draft"
	"medeasy/pos/internal/patients"
	"medeasy/pos/internal/salesapi"
)

// respondDomainError maps POS errors onto HTTP statuses. Submission failures
// carry the sales API's own message when it sent one.
func respondDomainError(w http.ResponseWriter, err error) {
	var apiErr *salesapi.APIError
	switch {
	case errors.Is(err, checkout.ErrSubmissionFailed):
		msg := err.Error()
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		} else if errors.Is(err, salesapi.ErrUnavailable) {
			msg = salesapi.ErrUnavailable.Error()
		}
		respondError(w, http.StatusBadGateway, msg)
	case errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, draft.ErrNotFound),
		errors.Is(err, patients.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, checkout.ErrNotCancelable),
		errors.Is(err, checkout.ErrNotAwaitingConfirmation),
		errors.Is(err, cart.ErrUnsavedCart):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrNoCustomerSelected),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidDiscount),
		errors.Is(err, cart.ErrInvalidPayment),
		errors.Is(err, checkout.ErrInsufficientPayment):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
