package resolver

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
)

func catalog() []domain.CatalogItem {
	price := decimal.RequireFromString("5")
	return []domain.CatalogItem{
		{ID: 1, Name: "Napa Extra", Variations: []domain.Variation{
			{ID: 10, SKU: "NPX-STRIP", UnitPrice: price, Stock: 20},
			{ID: 11, SKU: "NPX-BOX", UnitPrice: price, Stock: 4},
		}},
		{ID: 2, Name: "Napa 500", Variations: []domain.Variation{
			{ID: 20, SKU: "npx", UnitPrice: price, Stock: 9},
		}},
		{ID: 3, Name: "Seclo 20", Variations: []domain.Variation{
			{ID: 30, SKU: "SEC-20", UnitPrice: price, Stock: 0},
		}},
		{ID: 4, Name: "Empty listing"},
	}
}

func TestResolveCode_ExactSKUBeatsEarlierContains(t *testing.T) {
	r := New(catalog())

	got, err := r.ResolveCode("NPX")

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Item.ID)
	assert.Equal(t, 0, got.VariationIndex)
}

func TestResolveCode_CaseInsensitiveExact(t *testing.T) {
	r := New(catalog())

	got, err := r.ResolveCode("  npx-box ")

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Item.ID)
	assert.Equal(t, 0, got.VariationIndex)
}

func TestResolveCode_SKUOfLaterVariationAddsDefault(t *testing.T) {
	price := decimal.RequireFromString("12")
	r := New([]domain.CatalogItem{{ID: 8, Name: "Amoxicillin", Variations: []domain.Variation{
		{ID: 80, SKU: "AMX-250", UnitPrice: price, Stock: 10},
		{ID: 81, SKU: "AMX-500", UnitPrice: price, Stock: 10},
	}}})

	for _, code := range []string{"amx-500", "500"} {
		got, err := r.ResolveCode(code)
		require.NoError(t, err, code)
		assert.Equal(t, int64(8), got.Item.ID, code)
		assert.Equal(t, 0, got.VariationIndex, code)
		assert.Equal(t, "AMX-250", got.Item.Variations[got.VariationIndex].SKU, code)
	}
}

func TestResolveCode_SKUContains(t *testing.T) {
	r := New(catalog())

	got, err := r.ResolveCode("strip")

	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Item.Variations[got.VariationIndex].ID)
}

func TestResolveCode_NameFallbackUsesFirstVariation(t *testing.T) {
	r := New(catalog())

	got, err := r.ResolveCode("seclo")

	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Item.ID)
	assert.Equal(t, 0, got.VariationIndex)
}

func TestResolveCode_NotFound(t *testing.T) {
	r := New(catalog())

	for _, code := range []string{"", "   ", "zzz", "empty listing"} {
		_, err := r.ResolveCode(code)
		assert.ErrorIs(t, err, cart.ErrItemNotFound, code)
	}
}

func TestResolveName_FirstMatchInCatalogOrder(t *testing.T) {
	r := New(catalog())

	got, err := r.ResolveName("napa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	// An exact name later in the catalog still loses to an earlier containment.
	got, err = r.ResolveName("NAPA 500")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	_, err = r.ResolveName("amoxicillin")
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestImportPrescriptions_ReportsPartialSuccess(t *testing.T) {
	r := New(catalog())
	sess := &cart.Session{}
	require.NoError(t, sess.SelectCustomer(domain.Patient{ID: 5, Name: "Salma"}, false))

	report, err := r.ImportPrescriptions(sess,
		domain.Prescription{ID: 1, PatientID: 5, Medicines: []string{"Napa Extra", "Amoxicillin"}},
		domain.Prescription{ID: 2, PatientID: 5, Medicines: []string{"seclo"}},
	)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Prescribed)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, []string{"Amoxicillin", "seclo"}, report.Missing)
	assert.Equal(t, "1 of 3 prescribed items added", report.Summary())
	require.Len(t, sess.Cart.Lines, 1)
	assert.Equal(t, "NPX-STRIP", sess.Cart.Lines[0].SKU)
}

func TestImportPrescriptions_NeedsCustomer(t *testing.T) {
	r := New(catalog())

	_, err := r.ImportPrescriptions(&cart.Session{}, domain.Prescription{Medicines: []string{"napa"}})

	assert.ErrorIs(t, err, cart.ErrNoCustomerSelected)
}
