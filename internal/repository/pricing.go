package repository

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/prometheus"
	"gorm.io/gorm"
)

// PricingFilter narrows a pricing listing. MinPrice and MaxPrice bound costPrice.
type PricingFilter struct {
	Search      string
	SupplierID  string
	InventoryID string
	Currency    model.Currency
	MinPrice    *float64
	MaxPrice    *float64
	IsActive    *bool
}

func (f PricingFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where(
			"pricing.supplier_id IN (SELECT id FROM suppliers WHERE LOWER(name) LIKE ?) OR pricing.inventory_id IN (SELECT id FROM inventory WHERE LOWER(name) LIKE ?)",
			p, p,
		)
	}
	if f.SupplierID != "" {
		q = q.Where("pricing.supplier_id = ?", f.SupplierID)
	}
	if f.InventoryID != "" {
		q = q.Where("pricing.inventory_id = ?", f.InventoryID)
	}
	if f.Currency != "" {
		q = q.Where("pricing.currency = ?", f.Currency)
	}
	if f.MinPrice != nil {
		q = q.Where("pricing.cost_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("pricing.cost_price <= ?", *f.MaxPrice)
	}
	if f.IsActive != nil {
		q = q.Where("pricing.is_active = ?", *f.IsActive)
	}
	return q
}

// PricingOverview summarizes every agreement, active or not
type PricingOverview struct {
	ActiveOverview
	AvgCostPrice    float64 `json:"avgCostPrice"`
	AvgSellingPrice float64 `json:"avgSellingPrice"`
}

// SupplierPricingCount is a supplier ranked by active agreements
type SupplierPricingCount struct {
	SupplierID   string `json:"supplierId"`
	Name         string `json:"name"`
	PricingCount int64  `json:"pricingCount"`
}

// PricingStats is the pricing overview
type PricingStats struct {
	Overview     PricingOverview        `json:"overview"`
	Currencies   []GroupCount           `json:"currencies"`
	TopSuppliers []SupplierPricingCount `json:"topSuppliers"`
}

// PricingRepository stores pricing agreements
type PricingRepository struct {
	store[model.Pricing]
}

// NewPricingRepository creates a PricingRepository on db
func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{store[model.Pricing]{db: db, entity: "pricing", resource: "Pricing"}}
}

func (r *PricingRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Pricing{}).Preload("Supplier").Preload("Inventory")
}

// FindWithRefs loads an agreement with its supplier and inventory item
func (r *PricingRepository) FindWithRefs(ctx context.Context, id string) (*model.Pricing, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var pricing model.Pricing
	if err := r.withRefs(ctx).Where("pricing.id = ?", id).First(&pricing).Error; err != nil {
		return nil, r.mapError("find", id, err)
	}
	return &pricing, nil
}

// Find lists agreements with their references, newest first unless the page sets an order
func (r *PricingRepository) Find(ctx context.Context, f PricingFilter, p Page) ([]model.Pricing, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var list []model.Pricing
	if err := p.apply(f.apply(r.withRefs(ctx)), "pricing.created_at DESC").Find(&list).Error; err != nil {
		return nil, r.mapError("find", "", err)
	}
	return list, nil
}

// Count returns how many agreements match f
func (r *PricingRepository) Count(ctx context.Context, f PricingFilter) (int64, error) {
	defer prometheus.TrackDBOperation(r.entity, "count")(time.Now())

	var total int64
	if err := f.apply(r.db.WithContext(ctx).Model(&model.Pricing{})).Count(&total).Error; err != nil {
		return 0, r.mapError("count", "", err)
	}
	return total, nil
}

// ActiveBySupplier lists the active agreements of a supplier by inventory name
func (r *PricingRepository) ActiveBySupplier(ctx context.Context, supplierID string) ([]model.Pricing, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var list []model.Pricing
	err := r.withRefs(ctx).
		Joins("JOIN inventory ON inventory.id = pricing.inventory_id").
		Where("pricing.supplier_id = ? AND pricing.is_active = ?", supplierID, true).
		Order("inventory.name ASC").
		Find(&list).Error
	if err != nil {
		return nil, r.mapError("find", "", err)
	}
	return list, nil
}

// ActiveByInventory lists the active agreements for an item, cheapest first
func (r *PricingRepository) ActiveByInventory(ctx context.Context, inventoryID string) ([]model.Pricing, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var list []model.Pricing
	err := r.withRefs(ctx).
		Where("pricing.inventory_id = ? AND pricing.is_active = ?", inventoryID, true).
		Order("pricing.cost_price ASC").
		Find(&list).Error
	if err != nil {
		return nil, r.mapError("find", "", err)
	}
	return list, nil
}

// PairTaken reports whether an agreement, active or not, other than excludeID
// already exists for the supplier and inventory pair
func (r *PricingRepository) PairTaken(ctx context.Context, supplierID, inventoryID, excludeID string) (bool, error) {
	if excludeID == "" {
		return r.exists(ctx, "supplier_id = ? AND inventory_id = ?", supplierID, inventoryID)
	}
	return r.exists(ctx, "supplier_id = ? AND inventory_id = ? AND id <> ?", supplierID, inventoryID, excludeID)
}

// Stats aggregates the pricing overview
func (r *PricingRepository) Stats(ctx context.Context) (*PricingStats, error) {
	defer prometheus.TrackDBOperation(r.entity, "aggregate")(time.Now())

	db := r.db.WithContext(ctx)
	stats := &PricingStats{Currencies: []GroupCount{}, TopSuppliers: []SupplierPricingCount{}}

	if err := activeOverview(db.Model(&model.Pricing{}), &stats.Overview.ActiveOverview); err != nil {
		return nil, r.mapError("stats", "", err)
	}

	var avg struct {
		AvgCostPrice    float64
		AvgSellingPrice float64
	}
	err := db.Model(&model.Pricing{}).
		Select("COALESCE(AVG(cost_price), 0.0) AS avg_cost_price, COALESCE(AVG(selling_price), 0.0) AS avg_selling_price").
		Scan(&avg).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}
	stats.Overview.AvgCostPrice = avg.AvgCostPrice
	stats.Overview.AvgSellingPrice = avg.AvgSellingPrice

	err = db.Model(&model.Pricing{}).
		Select("currency AS name, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("currency").
		Order("count DESC, name ASC").
		Scan(&stats.Currencies).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}

	err = db.Model(&model.Pricing{}).
		Select("pricing.supplier_id AS supplier_id, COALESCE(suppliers.name, '') AS name, COUNT(*) AS pricing_count").
		Joins("LEFT JOIN suppliers ON suppliers.id = pricing.supplier_id").
		Where("pricing.is_active = ?", true).
		Group("pricing.supplier_id, suppliers.name").
		Order("pricing_count DESC, name ASC").
		Limit(10).
		Scan(&stats.TopSuppliers).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}
	return stats, nil
}
