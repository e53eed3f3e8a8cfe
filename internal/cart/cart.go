package cart

import (
	"github.com/shopspring/decimal"

	"medeasy/pos/domain"
	"medeasy/pos/internal/pricing"
)

// Line is one variation in the cart. Price, unit, stock and tiers are copied
// when the line is added so later catalog changes do not alter an open cart.
type Line struct {
	CatalogItemID  int64                         `json:"catalog_item_id"`
	VariationIndex int                           `json:"variation_index"`
	VariationID    int64                         `json:"variation_id"`
	SKU            string                        `json:"sku"`
	Name           string                        `json:"name"`
	Unit           string                        `json:"unit"`
	UnitPrice      decimal.Decimal               `json:"unit_price"`
	Stock          int64                         `json:"stock"`
	Tiers          []domain.QuantityDiscountTier `json:"tiers,omitempty"`
	Quantity       int64                         `json:"quantity"`
}

// Cart holds lines in insertion order plus the cart-wide pricing settings.
type Cart struct {
	Lines          []Line          `json:"lines"`
	Discount       domain.Discount `json:"discount"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	RoundOff       bool            `json:"round_off"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a deep copy of c.
func (c Cart) Clone() Cart {
	out := c
	out.Lines = make([]Line, len(c.Lines))
	for i, l := range c.Lines {
		l.Tiers = append([]domain.QuantityDiscountTier(nil), l.Tiers...)
		out.Lines[i] = l
	}
	return out
}

// Totals prices the cart. It is recomputed on every call; nothing is cached.
func (c Cart) Totals() pricing.Totals {
	in := pricing.Input{
		Lines:          make([]pricing.Line, len(c.Lines)),
		Discount:       c.Discount,
		DeliveryCharge: c.DeliveryCharge,
		RoundOff:       c.RoundOff,
	}
	for i, l := range c.Lines {
		in.Lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity, Tiers: l.Tiers}
	}
	return pricing.Compute(in)
}

func (c Cart) find(itemID int64, variationIndex int) int {
	for i, l := range c.Lines {
		if l.CatalogItemID == itemID && l.VariationIndex == variationIndex {
			return i
		}
	}
	return -1
}

func newLine(item domain.CatalogItem, variationIndex int) Line {
	v := item.Variations[variationIndex]
	return Line{
		CatalogItemID:  item.ID,
		VariationIndex: variationIndex,
		VariationID:    v.ID,
		SKU:            v.SKU,
		Name:           item.Name,
		Unit:           v.Unit,
		UnitPrice:      v.UnitPrice,
		Stock:          v.Stock,
		Tiers:          append([]domain.QuantityDiscountTier(nil), v.Tiers...),
		Quantity:       1,
	}
}
