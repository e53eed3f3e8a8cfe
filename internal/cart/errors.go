package cart

import "errors"

var (
	ErrNoCustomerSelected = errors.New("select a customer before changing the cart")
	ErrOutOfStock         = errors.New("item is out of stock")
	ErrInvalidQuantity    = errors.New("invalid cart line or quantity")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("item not found")
	ErrUnsavedCart        = errors.New("cart has unsaved items")
	ErrInvalidDiscount    = errors.New("invalid discount or delivery charge")
	ErrInvalidPayment     = errors.New("invalid payment details")
)
