package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"medeasy/pos/domain"
	"medeasy/pos/internal/logging"
)

// Source supplies catalog snapshots.
type Source interface {
	List(ctx context.Context) ([]domain.CatalogItem, error)
}

// StockWriter persists stock changes.
type StockWriter interface {
	AdjustStock(ctx context.Context, variationID, delta int64) error
}

// Cache is the POS-side copy of the catalog. It is refreshed between sessions
// and adjusted optimistically after a confirmed sale.
type Cache struct {
	mu     sync.RWMutex
	items  []domain.CatalogItem
	source Source
	writer StockWriter
	logger *zap.Logger
}

// NewCache builds an empty cache. writer may be nil when stock changes should
// stay local.
func NewCache(source Source, writer StockWriter, logger *zap.Logger) *Cache {
	return &Cache{source: source, writer: writer, logger: logging.OrNop(logger)}
}

// Refresh replaces the snapshot with a fresh one from the source.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.source.List(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	c.logger.Info("catalog refreshed", zap.Int("items", len(items)))
	return nil
}

// Items returns a deep copy of the snapshot in catalog order.
func (c *Cache) Items() []domain.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CatalogItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

func (c *Cache) Item(id int64) (domain.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return domain.CatalogItem{}, false
}

// DecrementStock lowers the cached stock of a sold variation, clamping at
// zero, and forwards the change to the stock writer. A failed write is logged;
// the next Refresh reconciles the cache.
func (c *Cache) DecrementStock(ctx context.Context, variationID, qty int64) error {
	c.mu.Lock()
	for i := range c.items {
		for j := range c.items[i].Variations {
			v := &c.items[i].Variations[j]
			if v.ID != variationID {
				continue
			}
			v.Stock -= qty
			if v.Stock < 0 {
				v.Stock = 0
			}
		}
	}
	c.mu.Unlock()

	if c.writer == nil {
		return nil
	}
	if err := c.writer.AdjustStock(ctx, variationID, -qty); err != nil {
		c.logger.Warn("persist stock change failed", zap.Int64("variation_id", variationID), zap.Error(err))
		return err
	}
	return nil
}
