package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"medeasy/pos/domain"
)

// Session is the complete state of one POS screen: who is being served, what
// is in the cart and how they intend to pay. DraftID is set when the session
// was resumed from a draft.
type Session struct {
	Customer *domain.Patient       `json:"customer,omitempty"`
	Cart     Cart                  `json:"cart"`
	Payment  domain.PaymentDetails `json:"payment"`
	DraftID  string                `json:"draft_id,omitempty"`
}

// SelectCustomer binds p to the session. Switching to another customer while
// the cart holds lines is refused with ErrUnsavedCart unless discard is set,
// in which case the cart, payment and draft tag are dropped.
func (s *Session) SelectCustomer(p domain.Patient, discard bool) error {
	if s.Customer != nil && s.Customer.ID == p.ID {
		s.Customer = &p
		return nil
	}
	if !s.Cart.IsEmpty() {
		if !discard {
			return ErrUnsavedCart
		}
		s.reset()
	}
	s.Customer = &p
	return nil
}

// AddLine adds the variation at variationIndex of item. An existing line for
// the same variation is incremented instead, up to the recorded stock.
func (s *Session) AddLine(item domain.CatalogItem, variationIndex int) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	if variationIndex < 0 || variationIndex >= len(item.Variations) {
		return s.Cart.Clone(), fmt.Errorf("%w: %s has no variation %d", ErrItemNotFound, item.Name, variationIndex)
	}
	if item.Variations[variationIndex].Stock <= 0 {
		return s.Cart.Clone(), fmt.Errorf("%w: %s", ErrOutOfStock, item.Name)
	}

	if i := s.Cart.find(item.ID, variationIndex); i >= 0 {
		line := &s.Cart.Lines[i]
		if line.Quantity+1 <= line.Stock {
			line.Quantity++
		}
		return s.Cart.Clone(), nil
	}
	s.Cart.Lines = append(s.Cart.Lines, newLine(item, variationIndex))
	return s.Cart.Clone(), nil
}

// UpdateQuantity sets the quantity of a line. A quantity below 1 removes the
// line; one above the line's stock is ignored.
func (s *Session) UpdateQuantity(lineIndex int, qty int64) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	if lineIndex < 0 || lineIndex >= len(s.Cart.Lines) {
		return s.Cart.Clone(), fmt.Errorf("%w: no line %d", ErrInvalidQuantity, lineIndex)
	}
	if qty < 1 {
		return s.RemoveLine(lineIndex)
	}
	line := &s.Cart.Lines[lineIndex]
	if qty <= line.Stock {
		line.Quantity = qty
	}
	return s.Cart.Clone(), nil
}

func (s *Session) RemoveLine(lineIndex int) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	if lineIndex < 0 || lineIndex >= len(s.Cart.Lines) {
		return s.Cart.Clone(), fmt.Errorf("%w: no line %d", ErrInvalidQuantity, lineIndex)
	}
	s.Cart.Lines = append(s.Cart.Lines[:lineIndex:lineIndex], s.Cart.Lines[lineIndex+1:]...)
	return s.Cart.Clone(), nil
}

// Clear empties the cart and its pricing settings. The customer stays selected.
func (s *Session) Clear() (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	s.Cart = Cart{}
	return s.Cart.Clone(), nil
}

// SetDiscount replaces the cart-level discount. A zero value removes it.
func (s *Session) SetDiscount(d domain.Discount) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	if d.Value.IsNegative() {
		return s.Cart.Clone(), fmt.Errorf("%w: discount cannot be negative", ErrInvalidDiscount)
	}
	if !d.Value.IsZero() && !d.Kind.Valid() {
		return s.Cart.Clone(), fmt.Errorf("%w: unknown discount kind %q", ErrInvalidDiscount, d.Kind)
	}
	if d.Kind == domain.DiscountPercent && d.Value.GreaterThan(decimal.NewFromInt(100)) {
		return s.Cart.Clone(), fmt.Errorf("%w: percentage must be 0-100", ErrInvalidDiscount)
	}
	s.Cart.Discount = d
	return s.Cart.Clone(), nil
}

func (s *Session) SetDeliveryCharge(v decimal.Decimal) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	if v.IsNegative() {
		return s.Cart.Clone(), fmt.Errorf("%w: delivery charge cannot be negative", ErrInvalidDiscount)
	}
	s.Cart.DeliveryCharge = v
	return s.Cart.Clone(), nil
}

func (s *Session) SetRoundOff(on bool) (Cart, error) {
	if s.Customer == nil {
		return s.Cart.Clone(), ErrNoCustomerSelected
	}
	s.Cart.RoundOff = on
	return s.Cart.Clone(), nil
}

// SetPayment records the payment details captured so far. Fields that do not
// apply to the chosen method are kept as they are.
func (s *Session) SetPayment(details domain.PaymentDetails) error {
	if details.Method != "" && !details.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, details.Method)
	}
	if details.ReceivedAmount.IsNegative() {
		return fmt.Errorf("%w: received amount cannot be negative", ErrInvalidPayment)
	}
	s.Payment = details
	return nil
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() Session {
	out := *s
	if s.Customer != nil {
		c := *s.Customer
		out.Customer = &c
	}
	out.Cart = s.Cart.Clone()
	return out
}

// Reset drops everything, including the customer.
func (s *Session) Reset() {
	s.reset()
	s.Customer = nil
}

func (s *Session) reset() {
	s.Cart = Cart{}
	s.Payment = domain.PaymentDetails{}
	s.DraftID = ""
}
