package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medeasy/pos/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func flatTier(min int64, value string) domain.QuantityDiscountTier {
	return domain.QuantityDiscountTier{MinimumQuantity: min, Kind: domain.DiscountFlat, Value: dec(value)}
}

func percentTier(min int64, value string) domain.QuantityDiscountTier {
	return domain.QuantityDiscountTier{MinimumQuantity: min, Kind: domain.DiscountPercent, Value: dec(value)}
}

func scenarioInput() Input {
	return Input{
		Lines: []Line{{
			UnitPrice: dec("10"),
			Quantity:  5,
			Tiers:     []domain.QuantityDiscountTier{flatTier(5, "20")},
		}},
	}
}

func TestCompute_FlatTierScenario(t *testing.T) {
	got := Compute(scenarioInput())

	assertMoney(t, "50", got.OriginalSubtotal, "original subtotal")
	assertMoney(t, "20", got.TotalItemDiscounts, "item discounts")
	assertMoney(t, "30", got.SubtotalAfterItemDiscounts, "after item discounts")
	assertMoney(t, "0", got.CartDiscount, "cart discount")
	assertMoney(t, "30", got.FinalTotal, "final total")
	require.Len(t, got.Lines, 1)
	require.NotNil(t, got.Lines[0].Tier)
	assert.Equal(t, int64(5), got.Lines[0].Tier.MinimumQuantity)
}

func TestCompute_PercentCartDiscountScenario(t *testing.T) {
	in := scenarioInput()
	in.Discount = domain.Discount{Kind: domain.DiscountPercent, Value: dec("10")}

	got := Compute(in)

	assertMoney(t, "3", got.CartDiscount, "cart discount")
	assertMoney(t, "27", got.AfterCartDiscount, "after cart discount")
	assertMoney(t, "27", got.FinalTotal, "final total")
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{
		Lines: []Line{
			{UnitPrice: dec("3.33"), Quantity: 7, Tiers: []domain.QuantityDiscountTier{percentTier(3, "12.5"), flatTier(5, "1")}},
			{UnitPrice: dec("0.99"), Quantity: 2},
		},
		Discount:       domain.Discount{Kind: domain.DiscountPercent, Value: dec("7")},
		DeliveryCharge: dec("4.25"),
		RoundOff:       true,
	}

	assert.Equal(t, Compute(in), Compute(in))
}

func TestCompute_BelowEveryTierHasNoItemDiscount(t *testing.T) {
	got := Compute(Input{Lines: []Line{{
		UnitPrice: dec("12"),
		Quantity:  2,
		Tiers:     []domain.QuantityDiscountTier{flatTier(3, "5"), percentTier(10, "50")},
	}}})

	assertMoney(t, "0", got.TotalItemDiscounts, "item discounts")
	assert.Nil(t, got.Lines[0].Tier)
}

func TestTierDiscount_FlatIsPerCompleteMultiple(t *testing.T) {
	tests := []struct {
		qty   int64
		price string
		want  string
	}{
		{qty: 3, price: "1", want: "5"},
		{qty: 5, price: "100", want: "5"},
		{qty: 6, price: "7.5", want: "10"},
		{qty: 11, price: "0.01", want: "15"},
	}
	for _, tt := range tests {
		gross := dec(tt.price).Mul(decimal.NewFromInt(tt.qty))
		got := TierDiscount(flatTier(3, "5"), tt.qty, gross)
		assertMoney(t, tt.want, got, "tier discount")
	}
}

func TestCompute_TierDiscountCappedAtLineGross(t *testing.T) {
	got := Compute(Input{
		Lines: []Line{
			{UnitPrice: dec("1"), Quantity: 5, Tiers: []domain.QuantityDiscountTier{flatTier(5, "20")}},
			{UnitPrice: dec("4"), Quantity: 6, Tiers: []domain.QuantityDiscountTier{flatTier(3, "5")}},
		},
		Discount:       domain.Discount{Kind: domain.DiscountFlat, Value: dec("50")},
		DeliveryCharge: dec("10"),
	})

	require.Len(t, got.Lines, 2)
	assertMoney(t, "5", got.Lines[0].Discount, "capped line discount")
	assertMoney(t, "0", got.Lines[0].Net, "capped line net")
	assertMoney(t, "10", got.Lines[1].Discount, "line discount within gross")
	assertMoney(t, "14", got.SubtotalAfterItemDiscounts, "subtotal after item discounts")
	assertMoney(t, "14", got.CartDiscount, "cart discount")
	assertMoney(t, "0", got.AfterCartDiscount, "after cart discount")
	assertMoney(t, "10", got.FinalTotal, "final total")
}

func TestBestTier_LargestThresholdWins(t *testing.T) {
	// The 5-unit tier discounts more, but the 10-unit tier is the most specific.
	tiers := []domain.QuantityDiscountTier{percentTier(5, "50"), flatTier(10, "1"), percentTier(2, "5")}

	got, ok := BestTier(tiers, 12)
	require.True(t, ok)
	assert.Equal(t, int64(10), got.MinimumQuantity)

	got, ok = BestTier(tiers, 6)
	require.True(t, ok)
	assert.Equal(t, int64(5), got.MinimumQuantity)

	_, ok = BestTier(tiers, 1)
	assert.False(t, ok)
}

func TestCompute_PercentTierUsesFullLineTotal(t *testing.T) {
	got := Compute(Input{Lines: []Line{{
		UnitPrice: dec("8"),
		Quantity:  7,
		Tiers:     []domain.QuantityDiscountTier{percentTier(3, "10")},
	}}})

	assertMoney(t, "5.6", got.TotalItemDiscounts, "item discounts")
	assertMoney(t, "50.4", got.FinalTotal, "final total")
}

func TestCartDiscount(t *testing.T) {
	tests := []struct {
		name     string
		discount domain.Discount
		subtotal string
		want     string
	}{
		{name: "flat", discount: domain.Discount{Kind: domain.DiscountFlat, Value: dec("5")}, subtotal: "30", want: "5"},
		{name: "flat clamped", discount: domain.Discount{Kind: domain.DiscountFlat, Value: dec("45")}, subtotal: "30", want: "30"},
		{name: "percent half up", discount: domain.Discount{Kind: domain.DiscountPercent, Value: dec("15")}, subtotal: "10.10", want: "1.52"},
		{name: "percent over 100 clamped", discount: domain.Discount{Kind: domain.DiscountPercent, Value: dec("150")}, subtotal: "20", want: "20"},
		{name: "zero value", discount: domain.Discount{Kind: domain.DiscountPercent}, subtotal: "20", want: "0"},
		{name: "negative value", discount: domain.Discount{Kind: domain.DiscountFlat, Value: dec("-3")}, subtotal: "20", want: "0"},
		{name: "missing kind", discount: domain.Discount{Value: dec("3")}, subtotal: "20", want: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CartDiscount(tt.discount, dec(tt.subtotal))
			assertMoney(t, tt.want, got, "cart discount")
			assert.False(t, got.GreaterThan(dec(tt.subtotal)))
		})
	}
}

func TestCompute_DeliveryIsNeverDiscounted(t *testing.T) {
	in := scenarioInput()
	in.Discount = domain.Discount{Kind: domain.DiscountFlat, Value: dec("1000")}
	in.DeliveryCharge = dec("15")

	got := Compute(in)

	assertMoney(t, "0", got.AfterCartDiscount, "after cart discount")
	assertMoney(t, "15", got.FinalTotal, "final total")
}

func TestCompute_EmptyCartKeepsDelivery(t *testing.T) {
	got := Compute(Input{DeliveryCharge: dec("12.5"), RoundOff: true})

	assertMoney(t, "0", got.OriginalSubtotal, "original subtotal")
	assertMoney(t, "12.5", got.AfterDelivery, "after delivery")
	assertMoney(t, "13", got.FinalTotal, "final total")
	assert.Empty(t, got.Lines)
}

func TestCompute_RoundOff(t *testing.T) {
	for _, price := range []string{"10.49", "10.5", "10.51", "9.99", "7", "0.25"} {
		in := Input{Lines: []Line{{UnitPrice: dec(price), Quantity: 1}}}

		off := Compute(in)
		assert.True(t, off.FinalTotal.Equal(off.AfterDelivery), price)
		assert.True(t, off.RoundOff.IsZero(), price)

		in.RoundOff = true
		on := Compute(in)
		assert.True(t, on.FinalTotal.Equal(on.FinalTotal.Truncate(0)), "%s not whole: %s", price, on.FinalTotal)
		assert.True(t, on.RoundOff.Abs().LessThanOrEqual(dec("0.5")), price)
		assert.True(t, on.FinalTotal.Sub(on.AfterDelivery).Equal(on.RoundOff), price)
	}

	got := Compute(Input{Lines: []Line{{UnitPrice: dec("10.5"), Quantity: 1}}, RoundOff: true})
	assertMoney(t, "11", got.FinalTotal, "half rounds up")
	assertMoney(t, "0.5", got.RoundOff, "round off")
}

func TestChange(t *testing.T) {
	assertMoney(t, "3", Change(dec("30"), dec("27")), "change")
	assertMoney(t, "0", Change(dec("20"), dec("27")), "short payment")
}
