package domain

import "github.com/shopspring/decimal"

// SaleRequest is the payload posted to the external sales API.
type SaleRequest struct {
	InvoiceNumber  string          `json:"invoiceNumber"`
	PatientID      int64           `json:"patientId"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountKind   DiscountKind    `json:"discountKind,omitempty"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	RoundOff       decimal.Decimal `json:"roundOff"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Payment        []SalePayment   `json:"payment"`
	Items          []SaleItem      `json:"items"`
}

type SalePayment struct {
	Method         PaymentMethod   `json:"method"`
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	PayingAmount   decimal.Decimal `json:"payingAmount"`
	Change         decimal.Decimal `json:"change"`
	Receiver       string          `json:"receiver,omitempty"`
	Note           string          `json:"note,omitempty"`
	GiftCardCode   string          `json:"giftCardCode,omitempty"`
}

type SaleItem struct {
	VariationID int64           `json:"variationId"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse is what the sales API returns for an accepted sale.
type SaleResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}
