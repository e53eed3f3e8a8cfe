package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
	"medeasy/pos/internal/pricing"
)

// Receipt describes a sale accepted by the sales API.
type Receipt struct {
	SaleID        string                `json:"sale_id"`
	InvoiceNumber string                `json:"invoice_number"`
	Customer      domain.Patient        `json:"customer"`
	Totals        pricing.Totals        `json:"totals"`
	Change        decimal.Decimal       `json:"change"`
	Payment       domain.PaymentDetails `json:"payment"`
	Message       string                `json:"message,omitempty"`
}

func newInvoiceNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), id[:8])
}

// settle works out what is charged and what is handed back. Non-cash methods
// are charged exactly the final total.
func settle(details domain.PaymentDetails, total decimal.Decimal) (received, change decimal.Decimal, err error) {
	if details.Method != domain.PaymentCash {
		return total, decimal.Zero, nil
	}
	if details.ReceivedAmount.LessThan(total) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: received %s, total %s",
			ErrInsufficientPayment, details.ReceivedAmount.StringFixed(pricing.MoneyPlaces), total.StringFixed(pricing.MoneyPlaces))
	}
	return details.ReceivedAmount, pricing.Change(details.ReceivedAmount, total), nil
}

// buildSale maps a frozen session onto the sales API payload. Item subtotals
// are net of tier discounts, so totalAmount - discount + deliveryCharge +
// roundOff equals grandTotal.
func buildSale(invoice string, sess cart.Session, totals pricing.Totals, received, change decimal.Decimal) domain.SaleRequest {
	items := make([]domain.SaleItem, len(sess.Cart.Lines))
	for i, line := range sess.Cart.Lines {
		items[i] = domain.SaleItem{
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    totals.Lines[i].Net,
		}
	}

	var kind domain.DiscountKind
	if totals.CartDiscount.IsPositive() {
		kind = sess.Cart.Discount.Kind
	}

	return domain.SaleRequest{
		InvoiceNumber:  invoice,
		PatientID:      sess.Customer.ID,
		TotalAmount:    totals.SubtotalAfterItemDiscounts,
		Discount:       totals.CartDiscount,
		DiscountKind:   kind,
		GrandTotal:     totals.FinalTotal,
		RoundOff:       totals.RoundOff,
		DeliveryCharge: totals.DeliveryCharge,
		Payment: []domain.SalePayment{{
			Method:         sess.Payment.Method,
			ReceivedAmount: received,
			PayingAmount:   totals.FinalTotal,
			Change:         change,
			Receiver:       sess.Payment.Receiver,
			Note:           sess.Payment.Note,
			GiftCardCode:   sess.Payment.GiftCardCode,
		}},
		Items: items,
	}
}
