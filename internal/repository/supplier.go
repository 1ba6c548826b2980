package repository

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/prometheus"
	"gorm.io/gorm"
)

// SupplierFilter narrows a supplier listing. Nil fields do not filter.
type SupplierFilter struct {
	Search       string
	BusinessType model.BusinessType
	IsActive     *bool
}

func (f SupplierFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?", p, p, p)
	}
	if f.BusinessType != "" {
		q = q.Where("business_type = ?", f.BusinessType)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	return q
}

// ActiveOverview counts records by active flag
type ActiveOverview struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// SupplierStats is the supplier overview
type SupplierStats struct {
	Overview      ActiveOverview `json:"overview"`
	BusinessTypes []GroupCount   `json:"businessTypes"`
}

// SupplierRepository stores suppliers
type SupplierRepository struct {
	store[model.Supplier]
}

// NewSupplierRepository creates a SupplierRepository on db
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{store[model.Supplier]{db: db, entity: "supplier", resource: "Supplier"}}
}

// Find lists suppliers, newest first unless the page sets an order
func (r *SupplierRepository) Find(ctx context.Context, f SupplierFilter, p Page) ([]model.Supplier, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var suppliers []model.Supplier
	q := f.apply(r.db.WithContext(ctx).Model(&model.Supplier{}))
	if err := p.apply(q, "created_at DESC").Find(&suppliers).Error; err != nil {
		return nil, r.mapError("find", "", err)
	}
	return suppliers, nil
}

// Count returns how many suppliers match f
func (r *SupplierRepository) Count(ctx context.Context, f SupplierFilter) (int64, error) {
	defer prometheus.TrackDBOperation(r.entity, "count")(time.Now())

	var total int64
	if err := f.apply(r.db.WithContext(ctx).Model(&model.Supplier{})).Count(&total).Error; err != nil {
		return 0, r.mapError("count", "", err)
	}
	return total, nil
}

// EmailTaken reports whether another supplier already uses email
func (r *SupplierRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	if excludeID == "" {
		return r.exists(ctx, "email = ?", email)
	}
	return r.exists(ctx, "email = ? AND id <> ?", email, excludeID)
}

// Stats aggregates the supplier overview
func (r *SupplierRepository) Stats(ctx context.Context) (*SupplierStats, error) {
	defer prometheus.TrackDBOperation(r.entity, "aggregate")(time.Now())

	db := r.db.WithContext(ctx)
	stats := &SupplierStats{BusinessTypes: []GroupCount{}}

	if err := activeOverview(db.Model(&model.Supplier{}), &stats.Overview); err != nil {
		return nil, r.mapError("stats", "", err)
	}

	err := db.Model(&model.Supplier{}).
		Select("business_type AS name, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("business_type").
		Order("count DESC, name ASC").
		Scan(&stats.BusinessTypes).Error
	if err != nil {
		return nil, r.mapError("stats", "", err)
	}
	return stats, nil
}

func activeOverview(q *gorm.DB, out *ActiveOverview) error {
	err := q.Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active").
		Scan(out).Error
	if err != nil {
		return err
	}
	out.Inactive = out.Total - out.Active
	return nil
}
