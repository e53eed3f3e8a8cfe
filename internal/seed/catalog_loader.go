package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medeasy/pos/domain"
	"medeasy/pos/internal/logging"
)

// Catalog CSV columns, after a header row.
const (
	colName = iota
	colBrand
	colGeneric
	colSKU
	colUnit
	colPrice
	colStock
	colTiers
	catalogColumns
)

// LoadCatalog ingests a catalog CSV, ignoring items and SKUs that already
// exist. It returns the number of variations inserted.
func LoadCatalog(db *sqlx.DB, csvPath string, logger *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("unable to load catalog %s: %w", csvPath, err)
	}
	defer file.Close()
	return loadCatalog(db, file, logger)
}

func loadCatalog(db *sqlx.DB, r io.Reader, logger *zap.Logger) (int, error) {
	logger = logging.OrNop(logger)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("unable to read catalog header: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("unable to start catalog transaction: %w", err)
	}
	defer tx.Rollback()

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("unable to read catalog row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if len(record) < catalogColumns-1 {
			continue
		}
		inserted, err := insertRow(tx, record)
		if err != nil {
			logger.Warn("skipping catalog row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if inserted {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("unable to commit catalog seed: %w", err)
	}
	logger.Info("seeded catalog", zap.Int("variations", rows))
	return rows, nil
}

func insertRow(tx *sqlx.Tx, record []string) (bool, error) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	name, sku := field(colName), field(colSKU)
	if name == "" || sku == "" {
		return false, errors.New("name and sku are required")
	}
	price, err := decimal.NewFromString(field(colPrice))
	if err != nil || price.IsNegative() {
		return false, fmt.Errorf("invalid unit price %q", field(colPrice))
	}
	stock, err := strconv.ParseInt(field(colStock), 10, 64)
	if err != nil || stock < 0 {
		return false, fmt.Errorf("invalid stock %q", field(colStock))
	}
	tiers, err := ParseTiers(field(colTiers))
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(tx.Rebind(`INSERT INTO catalog_items (name, brand, generic_name) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`),
		name, field(colBrand), field(colGeneric)); err != nil {
		return false, fmt.Errorf("insert item %s: %w", name, err)
	}
	var itemID int64
	if err := tx.Get(&itemID, tx.Rebind(`SELECT id FROM catalog_items WHERE name = ?`), name); err != nil {
		return false, fmt.Errorf("lookup item %s: %w", name, err)
	}
	var position int64
	if err := tx.Get(&position, tx.Rebind(`SELECT COUNT(*) FROM variations WHERE catalog_item_id = ?`), itemID); err != nil {
		return false, fmt.Errorf("count variations of %s: %w", name, err)
	}

	var variationID int64
	err = tx.QueryRowx(tx.Rebind(`INSERT INTO variations (catalog_item_id, sku, unit_price, stock, unit, position) VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (sku) DO NOTHING RETURNING id`),
		itemID, sku, price, stock, field(colUnit), position).Scan(&variationID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert variation %s: %w", sku, err)
	}

	for _, tier := range tiers {
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO discount_tiers (variation_id, minimum_quantity, kind, value) VALUES (?, ?, ?, ?)`),
			variationID, tier.MinimumQuantity, string(tier.Kind), tier.Value); err != nil {
			return false, fmt.Errorf("insert tier for %s: %w", sku, err)
		}
	}
	return true, nil
}

// ParseTiers decodes "min:kind:value" entries separated by ";", for example
// "5:flat:20;10:percent:7.5". An empty string yields no tiers.
func ParseTiers(raw string) ([]domain.QuantityDiscountTier, error) {
	var tiers []domain.QuantityDiscountTier
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid tier %q", part)
		}
		threshold, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil || threshold <= 0 {
			return nil, fmt.Errorf("invalid tier threshold %q", fields[0])
		}
		kind := domain.DiscountKind(strings.ToLower(strings.TrimSpace(fields[1])))
		if !kind.Valid() {
			return nil, fmt.Errorf("invalid tier kind %q", fields[1])
		}
		value, err := decimal.NewFromString(strings.TrimSpace(fields[2]))
		if err != nil || !value.IsPositive() {
			return nil, fmt.Errorf("invalid tier value %q", fields[2])
		}
		if kind == domain.DiscountPercent && value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("tier percentage %s exceeds 100", value)
		}
		tiers = append(tiers, domain.QuantityDiscountTier{MinimumQuantity: threshold, Kind: kind, Value: value})
	}
	return tiers, nil
}
