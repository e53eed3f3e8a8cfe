package domain

import "github.com/shopspring/decimal"

// DiscountKind selects how a discount value is interpreted.
type DiscountKind string

const (
	DiscountFlat    DiscountKind = "flat"
	DiscountPercent DiscountKind = "percent"
)

// Valid reports whether k is a known discount kind.
func (k DiscountKind) Valid() bool {
	return k == DiscountFlat || k == DiscountPercent
}

// QuantityDiscountTier grants a discount once a line reaches MinimumQuantity.
// Tiers on a variation are independent thresholds, not cumulative bands.
type QuantityDiscountTier struct {
	MinimumQuantity int64           `db:"minimum_quantity" json:"minimum_quantity"`
	Kind            DiscountKind    `db:"kind" json:"kind"`
	Value           decimal.Decimal `db:"value" json:"value"`
}

// Variation is a sellable configuration of a catalog item.
type Variation struct {
	ID        int64                  `db:"id" json:"id"`
	SKU       string                 `db:"sku" json:"sku"`
	UnitPrice decimal.Decimal        `db:"unit_price" json:"unit_price"`
	Stock     int64                  `db:"stock" json:"stock"`
	Unit      string                 `db:"unit" json:"unit"`
	Tiers     []QuantityDiscountTier `json:"tiers,omitempty"`
}

// CatalogItem is a medicine as the catalog collaborator supplies it.
type CatalogItem struct {
	ID          int64       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Brand       string      `db:"brand" json:"brand"`
	GenericName string      `db:"generic_name" json:"generic_name"`
	Variations  []Variation `json:"variations"`
}

// Clone returns a copy that shares no slices with item.
func (item CatalogItem) Clone() CatalogItem {
	out := item
	out.Variations = make([]Variation, len(item.Variations))
	for i, v := range item.Variations {
		v.Tiers = append([]QuantityDiscountTier(nil), v.Tiers...)
		out.Variations[i] = v
	}
	return out
}

// Discount is a cart-level discount.
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}
