package model

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// BulkTier is a quantity threshold with its own unit price
type BulkTier struct {
	Quantity int      `json:"quantity" validate:"min=1"`
	Price    float64  `json:"price" validate:"gte=0"`
	Discount *float64 `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// BulkTiers is stored as JSON, always in ascending quantity order
type BulkTiers []BulkTier

func (t BulkTiers) Value() (driver.Value, error) {
	if t == nil {
		t = BulkTiers{}
	}
	return marshalColumn([]BulkTier(t))
}

func (t *BulkTiers) Scan(value interface{}) error {
	*t = BulkTiers{}
	return unmarshalColumn(value, (*[]BulkTier)(t))
}

func (BulkTiers) GormDataType() string { return "json" }

func (BulkTiers) GormDBDataType(db *gorm.DB, _ *schema.Field) string { return jsonDBType(db) }

// Pricing is the agreement a supplier offers for one inventory item.
// At most one row exists per supplier and inventory pair.
type Pricing struct {
	ID                   string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	SupplierID           string       `json:"supplierId" gorm:"type:varchar(36);not null;uniqueIndex:idx_pricing_supplier_inventory;index:idx_pricing_supplier_active"`
	Supplier             *Supplier    `json:"-" gorm:"foreignKey:SupplierID"`
	InventoryID          string       `json:"inventoryId" gorm:"type:varchar(36);not null;uniqueIndex:idx_pricing_supplier_inventory;index:idx_pricing_inventory_active"`
	Inventory            *Inventory   `json:"-" gorm:"foreignKey:InventoryID"`
	CostPrice            float64      `json:"costPrice" gorm:"not null"`
	SellingPrice         float64      `json:"sellingPrice" gorm:"not null"`
	BulkPricing          BulkTiers    `json:"bulkPricing"`
	Currency             Currency     `json:"currency" gorm:"type:varchar(3);not null"`
	EffectiveDate        time.Time    `json:"effectiveDate" gorm:"index"`
	ExpiryDate           *time.Time   `json:"expiryDate,omitempty" gorm:"index"`
	MinimumOrderQuantity int          `json:"minimumOrderQuantity" gorm:"not null"`
	LeadTime             int          `json:"leadTime" gorm:"not null"`
	PaymentTerms         PaymentTerms `json:"paymentTerms" gorm:"type:varchar(30)"`
	IsActive             bool         `json:"isActive" gorm:"not null;index:idx_pricing_supplier_active;index:idx_pricing_inventory_active"`
	Notes                string       `json:"notes" gorm:"type:varchar(500)"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// TableName keeps the table singular like the collection it replaces
func (Pricing) TableName() string { return "pricing" }

// IsExpired reports whether the agreement ended before now
func (p Pricing) IsExpired(now time.Time) bool {
	return p.ExpiryDate != nil && now.After(*p.ExpiryDate)
}

// IsEffective reports whether the agreement applies at now
func (p Pricing) IsEffective(now time.Time) bool {
	return p.IsActive && !now.Before(p.EffectiveDate) && (p.ExpiryDate == nil || !now.After(*p.ExpiryDate))
}
