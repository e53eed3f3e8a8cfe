package domain

import "github.com/shopspring/decimal"

// PaymentMethod is how the customer settles a sale.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentGiftCard PaymentMethod = "gift_card"
	PaymentMobile   PaymentMethod = "mobile"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentGiftCard, PaymentMobile:
		return true
	}
	return false
}

// PaymentDetails holds the fields captured for the selected method. Fields that do
// not apply to Method are kept but ignored.
type PaymentDetails struct {
	Method         PaymentMethod   `json:"method"`
	ReceivedAmount decimal.Decimal `json:"received_amount"`
	GiftCardCode   string          `json:"gift_card_code,omitempty"`
	Receiver       string          `json:"receiver,omitempty"`
	Note           string          `json:"note,omitempty"`
}
