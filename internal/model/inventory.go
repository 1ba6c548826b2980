package model

import "time"

// Location pins an item inside a warehouse
type Location struct {
	Warehouse string `json:"warehouse" gorm:"type:varchar(100)"`
	Shelf     string `json:"shelf" gorm:"type:varchar(50)"`
	Bin       string `json:"bin" gorm:"type:varchar(50)"`
}

// Inventory is a stocked item. Stock status and profit margin are derived
// at read time and have no columns.
type Inventory struct {
	ID           string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string      `json:"name" gorm:"type:varchar(100);not null;index:idx_inventory_name_category"`
	SKU          string      `json:"sku" gorm:"column:sku;type:varchar(50);uniqueIndex;not null"`
	Category     Category    `json:"category" gorm:"type:varchar(30);not null;index:idx_inventory_name_category"`
	Subcategory  string      `json:"subcategory" gorm:"type:varchar(50)"`
	Description  string      `json:"description" gorm:"type:varchar(500)"`
	Unit         Unit        `json:"unit" gorm:"type:varchar(20);not null"`
	CurrentStock float64     `json:"currentStock" gorm:"not null;index"`
	MinimumStock float64     `json:"minimumStock" gorm:"not null"`
	MaximumStock *float64    `json:"maximumStock,omitempty"`
	CostPrice    float64     `json:"costPrice" gorm:"not null"`
	SellingPrice float64     `json:"sellingPrice" gorm:"not null"`
	SupplierID   *string     `json:"supplierId,omitempty" gorm:"type:varchar(36);index"`
	Supplier     *Supplier   `json:"-" gorm:"foreignKey:SupplierID"`
	Location     Location    `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	ExpiryDate   *time.Time  `json:"expiryDate,omitempty" gorm:"index"`
	BatchNumber  string      `json:"batchNumber" gorm:"type:varchar(50)"`
	IsActive     bool        `json:"isActive" gorm:"index;not null"`
	Tags         StringList  `json:"tags"`
	Images       Attachments `json:"images"`
	Notes        string      `json:"notes" gorm:"type:varchar(1000)"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TableName keeps the table singular like the collection it replaces
func (Inventory) TableName() string { return "inventory" }
