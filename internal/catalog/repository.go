package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medeasy/pos/domain"
)

// Repository reads the medicine catalog from the database.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type variationRow struct {
	ID            int64           `db:"id"`
	CatalogItemID int64           `db:"catalog_item_id"`
	SKU           string          `db:"sku"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	Stock         int64           `db:"stock"`
	Unit          string          `db:"unit"`
}

type tierRow struct {
	VariationID     int64           `db:"variation_id"`
	MinimumQuantity int64           `db:"minimum_quantity"`
	Kind            string          `db:"kind"`
	Value           decimal.Decimal `db:"value"`
}

// List loads every catalog item with its variations and tiers. Items come
// back in id order and variations in their configured position.
func (r *Repository) List(ctx context.Context) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := r.db.SelectContext(ctx, &items, `SELECT id, name, brand, generic_name FROM catalog_items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	if len(items) == 0 {
		return []domain.CatalogItem{}, nil
	}

	var variations []variationRow
	if err := r.db.SelectContext(ctx, &variations, `SELECT id, catalog_item_id, sku, unit_price, stock, unit FROM variations ORDER BY catalog_item_id, position, id`); err != nil {
		return nil, fmt.Errorf("list variations: %w", err)
	}
	var tiers []tierRow
	if err := r.db.SelectContext(ctx, &tiers, `SELECT variation_id, minimum_quantity, kind, value FROM discount_tiers ORDER BY variation_id, minimum_quantity`); err != nil {
		return nil, fmt.Errorf("list discount tiers: %w", err)
	}

	tiersByVariation := make(map[int64][]domain.QuantityDiscountTier)
	for _, t := range tiers {
		tiersByVariation[t.VariationID] = append(tiersByVariation[t.VariationID], domain.QuantityDiscountTier{
			MinimumQuantity: t.MinimumQuantity,
			Kind:            domain.DiscountKind(t.Kind),
			Value:           t.Value,
		})
	}
	variationsByItem := make(map[int64][]domain.Variation)
	for _, v := range variations {
		variationsByItem[v.CatalogItemID] = append(variationsByItem[v.CatalogItemID], domain.Variation{
			ID:        v.ID,
			SKU:       v.SKU,
			UnitPrice: v.UnitPrice,
			Stock:     v.Stock,
			Unit:      v.Unit,
			Tiers:     tiersByVariation[v.ID],
		})
	}
	for i := range items {
		items[i].Variations = variationsByItem[items[i].ID]
	}
	return items, nil
}

// AdjustStock adds delta to a variation's stock, never going below zero.
func (r *Repository) AdjustStock(ctx context.Context, variationID, delta int64) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE variations SET stock = CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END WHERE id = ?`), delta, delta, variationID)
	if err != nil {
		return fmt.Errorf("adjust stock for variation %d: %w", variationID, err)
	}
	return nil
}
