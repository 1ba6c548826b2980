package repository

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/prometheus"
	"gorm.io/gorm"
)

// SQL forms of the stock status rules. They follow the same precedence as
// rules.StockStatus: out-of-stock, then low-stock, then overstocked.
const (
	sqlOutOfStock  = "current_stock <= 0"
	sqlLowStock    = "current_stock > 0 AND current_stock <= minimum_stock"
	sqlOverstocked = "current_stock > 0 AND current_stock > minimum_stock AND maximum_stock IS NOT NULL AND maximum_stock > 0 AND current_stock >= maximum_stock"
	sqlNormal      = "current_stock > 0 AND current_stock > minimum_stock AND (maximum_stock IS NULL OR maximum_stock <= 0 OR current_stock < maximum_stock)"
)

var stockStatusSQL = map[model.StockStatus]string{
	model.StockOutOfStock:  sqlOutOfStock,
	model.StockLow:         sqlLowStock,
	model.StockOverstocked: sqlOverstocked,
	model.StockNormal:      sqlNormal,
}

// InventoryFilter narrows an inventory listing
type InventoryFilter struct {
	Search      string
	Category    model.Category
	SupplierID  string
	StockStatus model.StockStatus
	IsActive    *bool
}

func (f InventoryFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", p, p, p)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.SupplierID != "" {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	if cond, ok := stockStatusSQL[f.StockStatus]; ok {
		q = q.Where(cond)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return q
}

// InventoryTotals are the scalar figures of the overview. Stock figures
// cover active items only.
type InventoryTotals struct {
	TotalItems  int64   `json:"totalItems"`
	ActiveItems int64   `json:"activeItems"`
	OutOfStock  int64   `json:"outOfStock"`
	LowStock    int64   `json:"lowStock"`
	TotalValue  float64 `json:"totalValue"`
}

// InventoryStats is the inventory overview with the top five categories
type InventoryStats struct {
	InventoryTotals
	Categories []GroupCount `json:"categories"`
}

// InventoryRepository stores inventory items
type InventoryRepository struct {
	store[model.Inventory]
}

// NewInventoryRepository creates an InventoryRepository on db
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{store[model.Inventory]{db: db, entity: "inventory", resource: "Inventory item"}}
}

// FindWithSupplier loads an item with its preferred supplier
func (r *InventoryRepository) FindWithSupplier(ctx context.Context, id string) (*model.Inventory, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var item model.Inventory
	if err := r.db.WithContext(ctx).Preload("Supplier").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, r.mapError("find", id, err)
	}
	return &item, nil
}

// Find lists items with their suppliers, newest first unless the page sets an order
func (r *InventoryRepository) Find(ctx context.Context, f InventoryFilter, p Page) ([]model.Inventory, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var items []model.Inventory
	q := f.apply(r.db.WithContext(ctx).Model(&model.Inventory{}).Preload("Supplier"))
	if err := p.apply(q, "created_at DESC").Find(&items).Error; err != nil {
		return nil, r.mapError("find", "", err)
	}
	return items, nil
}

// Count returns how many items match f
func (r *InventoryRepository) Count(ctx context.Context, f InventoryFilter) (int64, error) {
	defer prometheus.TrackDBOperation(r.entity, "count")(time.Now())

	var total int64
	if err := f.apply(r.db.WithContext(ctx).Model(&model.Inventory{})).Count(&total).Error; err != nil {
		return 0, r.mapError("count", "", err)
	}
	return total, nil
}

// SKUTaken reports whether any item, active or not, other than excludeID holds sku
func (r *InventoryRepository) SKUTaken(ctx context.Context, sku, excludeID string) (bool, error) {
	if excludeID == "" {
		return r.exists(ctx, "sku = ?", sku)
	}
	return r.exists(ctx, "sku = ? AND id <> ?", sku, excludeID)
}

// Stats aggregates the inventory overview
func (r *InventoryRepository) Stats(ctx context.Context) (*InventoryStats, error) {
	defer prometheus.TrackDBOperation(r.entity, "aggregate")(time.Now())

	db := r.db.WithContext(ctx)
	stats := &InventoryStats{Categories: []GroupCount{}}

	err := db.Model(&model.Inventory{}).Select(
		"COUNT(*) AS total_items, " +
			"COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active_items, " +
			"COALESCE(SUM(CASE WHEN is_active AND " + sqlOutOfStock + " THEN 1 ELSE 0 END), 0) AS out_of_stock, " +
			"COALESCE(SUM(CASE WHEN is_active AND " + sqlLowStock + " THEN 1 ELSE 0 END), 0) AS low_stock, " +
			"COALESCE(SUM(CASE WHEN is_active THEN current_stock * cost_price ELSE 0 END), 0.0) AS total_value",
	).Scan(&stats.InventoryTotals).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}

	err = db.Model(&model.Inventory{}).
		Select("category AS name, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Order("count DESC, name ASC").
		Limit(5).
		Scan(&stats.Categories).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}
	return stats, nil
}
