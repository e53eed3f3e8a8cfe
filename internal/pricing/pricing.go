// Package pricing turns cart contents and their discount, delivery and rounding
// settings into an itemized total. Everything here is pure: identical inputs
// always produce identical Totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"medeasy/pos/domain"
)

// MoneyPlaces is the number of decimal places monetary amounts are rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Line is the pricing view of one cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int64
	Tiers     []domain.QuantityDiscountTier
}

// Input is everything Compute needs.
type Input struct {
	Lines          []Line
	Discount       domain.Discount
	DeliveryCharge decimal.Decimal
	RoundOff       bool
}

// LineTotals is the breakdown of a single line.
type LineTotals struct {
	Gross    decimal.Decimal              `json:"gross"`
	Discount decimal.Decimal              `json:"discount"`
	Net      decimal.Decimal              `json:"net"`
	Tier     *domain.QuantityDiscountTier `json:"tier,omitempty"`
}

// Totals is the fully itemized result of the pricing pipeline.
type Totals struct {
	Lines                      []LineTotals    `json:"lines"`
	OriginalSubtotal           decimal.Decimal `json:"original_subtotal"`
	TotalItemDiscounts         decimal.Decimal `json:"total_item_discounts"`
	SubtotalAfterItemDiscounts decimal.Decimal `json:"subtotal_after_item_discounts"`
	CartDiscount               decimal.Decimal `json:"cart_discount"`
	AfterCartDiscount          decimal.Decimal `json:"after_cart_discount"`
	DeliveryCharge             decimal.Decimal `json:"delivery_charge"`
	AfterDelivery              decimal.Decimal `json:"after_delivery"`
	RoundOff                   decimal.Decimal `json:"round_off"`
	FinalTotal                 decimal.Decimal `json:"final_total"`
}

// Compute runs the pipeline: line gross, tier discounts, cart discount,
// delivery, round-off. The order matters and is fixed.
func Compute(in Input) Totals {
	t := Totals{Lines: make([]LineTotals, 0, len(in.Lines))}

	for _, l := range in.Lines {
		lt := priceLine(l)
		t.Lines = append(t.Lines, lt)
		t.OriginalSubtotal = t.OriginalSubtotal.Add(lt.Gross)
		t.TotalItemDiscounts = t.TotalItemDiscounts.Add(lt.Discount)
	}
	t.SubtotalAfterItemDiscounts = t.OriginalSubtotal.Sub(t.TotalItemDiscounts)

	t.CartDiscount = CartDiscount(in.Discount, t.SubtotalAfterItemDiscounts)
	t.AfterCartDiscount = t.SubtotalAfterItemDiscounts.Sub(t.CartDiscount)

	t.DeliveryCharge = nonNegative(in.DeliveryCharge)
	t.AfterDelivery = t.AfterCartDiscount.Add(t.DeliveryCharge)

	if in.RoundOff {
		t.RoundOff = roundHalfUp(t.AfterDelivery, 0).Sub(t.AfterDelivery)
	}
	t.FinalTotal = t.AfterDelivery.Add(t.RoundOff)
	return t
}

func priceLine(l Line) LineTotals {
	if l.Quantity <= 0 {
		return LineTotals{}
	}
	lt := LineTotals{Gross: l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))}
	if tier, ok := BestTier(l.Tiers, l.Quantity); ok {
		lt.Tier = &tier
		lt.Discount = decimal.Min(TierDiscount(tier, l.Quantity, lt.Gross), lt.Gross)
	}
	lt.Net = lt.Gross.Sub(lt.Discount)
	return lt
}

// BestTier picks the applicable tier with the largest minimum quantity. The
// most specific tier wins even when a lower tier would discount more.
func BestTier(tiers []domain.QuantityDiscountTier, quantity int64) (domain.QuantityDiscountTier, bool) {
	var (
		best  domain.QuantityDiscountTier
		found bool
	)
	for _, tier := range tiers {
		if tier.MinimumQuantity <= 0 || quantity < tier.MinimumQuantity {
			continue
		}
		if !found || tier.MinimumQuantity > best.MinimumQuantity {
			best, found = tier, true
		}
	}
	return best, found
}

// TierDiscount is the discount a tier grants on a line. Flat tiers apply once
// per complete multiple of the threshold regardless of price; percent tiers
// apply to the whole line gross. Compute caps the result at the line gross.
func TierDiscount(tier domain.QuantityDiscountTier, quantity int64, gross decimal.Decimal) decimal.Decimal {
	if !tier.Value.IsPositive() || tier.MinimumQuantity <= 0 {
		return decimal.Zero
	}
	switch tier.Kind {
	case domain.DiscountFlat:
		return tier.Value.Mul(decimal.NewFromInt(quantity / tier.MinimumQuantity))
	case domain.DiscountPercent:
		return roundHalfUp(gross.Mul(tier.Value).Div(hundred), MoneyPlaces)
	}
	return decimal.Zero
}

// CartDiscount applies d to subtotal and clamps the result to [0, subtotal].
func CartDiscount(d domain.Discount, subtotal decimal.Decimal) decimal.Decimal {
	if !d.Value.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Kind {
	case domain.DiscountFlat:
		amount = d.Value
	case domain.DiscountPercent:
		amount = roundHalfUp(subtotal.Mul(d.Value).Div(hundred), MoneyPlaces)
	default:
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// Change is what a cash customer gets back. It is never negative.
func Change(received, total decimal.Decimal) decimal.Decimal {
	return nonNegative(received.Sub(total))
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// roundHalfUp rounds v to places. Every amount rounded here is non-negative,
// so decimal's half-away-from-zero rounding is half-up.
func roundHalfUp(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Round(places)
}
