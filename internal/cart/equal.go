package cart

import "medeasy/pos/domain"

// Equal compares carts field by field, treating numerically equal decimals
// as equal regardless of their internal exponent.
func (c Cart) Equal(o Cart) bool {
	if len(c.Lines) != len(o.Lines) || c.RoundOff != o.RoundOff ||
		c.Discount.Kind != o.Discount.Kind || !c.Discount.Value.Equal(o.Discount.Value) ||
		!c.DeliveryCharge.Equal(o.DeliveryCharge) {
		return false
	}
	for i := range c.Lines {
		if !c.Lines[i].Equal(o.Lines[i]) {
			return false
		}
	}
	return true
}

func (l Line) Equal(o Line) bool {
	if l.CatalogItemID != o.CatalogItemID || l.VariationIndex != o.VariationIndex ||
		l.VariationID != o.VariationID || l.SKU != o.SKU || l.Name != o.Name || l.Unit != o.Unit ||
		!l.UnitPrice.Equal(o.UnitPrice) || l.Stock != o.Stock || l.Quantity != o.Quantity ||
		len(l.Tiers) != len(o.Tiers) {
		return false
	}
	for i := range l.Tiers {
		if !tierEqual(l.Tiers[i], o.Tiers[i]) {
			return false
		}
	}
	return true
}

func tierEqual(a, b domain.QuantityDiscountTier) bool {
	return a.MinimumQuantity == b.MinimumQuantity && a.Kind == b.Kind && a.Value.Equal(b.Value)
}
