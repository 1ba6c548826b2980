package handler

import (
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/rules"
)

// SupplierView is a supplier as callers see it. The financial fields are
// left out of the public profile.
type SupplierView struct {
	*model.Supplier
	TaxID          *string  `json:"taxId,omitempty"`
	CreditLimit    *float64 `json:"creditLimit,omitempty"`
	CurrentBalance *float64 `json:"currentBalance,omitempty"`
	FullAddress    string   `json:"fullAddress"`
}

func newSupplierView(s *model.Supplier, full bool) SupplierView {
	v := SupplierView{Supplier: s, FullAddress: s.Address.Full()}
	if full {
		v.TaxID = &s.TaxID
		v.CreditLimit = &s.CreditLimit
		v.CurrentBalance = &s.CurrentBalance
	}
	return v
}

func supplierViews(list []model.Supplier, full bool) []SupplierView {
	out := make([]SupplierView, 0, len(list))
	for i := range list {
		out = append(out, newSupplierView(&list[i], full))
	}
	return out
}

// SupplierRef is the summary of a referenced supplier
type SupplierRef struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Email         string `json:"email,omitempty"`
}

func supplierRef(s *model.Supplier) *SupplierRef {
	if s == nil {
		return nil
	}
	return &SupplierRef{ID: s.ID, Name: s.Name, ContactPerson: s.ContactPerson, Email: s.Email}
}

// InventoryView is an item with its derived fields
type InventoryView struct {
	*model.Inventory
	StockStatus  model.StockStatus `json:"stockStatus"`
	ProfitMargin float64           `json:"profitMargin"`
	Supplier     *SupplierRef      `json:"supplier,omitempty"`
}

func newInventoryView(item *model.Inventory) InventoryView {
	return InventoryView{
		Inventory:    item,
		StockStatus:  rules.StockStatus(item.CurrentStock, item.MinimumStock, item.MaximumStock),
		ProfitMargin: rules.ProfitMargin(item.CostPrice, item.SellingPrice),
		Supplier:     supplierRef(item.Supplier),
	}
}

func inventoryViews(list []model.Inventory) []InventoryView {
	out := make([]InventoryView, 0, len(list))
	for i := range list {
		out = append(out, newInventoryView(&list[i]))
	}
	return out
}

// InventoryRef is the summary of a referenced item
type InventoryRef struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	SKU      string         `json:"sku"`
	Category model.Category `json:"category"`
	Unit     model.Unit     `json:"unit"`
}

func inventoryRef(item *model.Inventory) *InventoryRef {
	if item == nil {
		return nil
	}
	return &InventoryRef{ID: item.ID, Name: item.Name, SKU: item.SKU, Category: item.Category, Unit: item.Unit}
}

// PricingView is an agreement with its derived fields, evaluated at one instant
type PricingView struct {
	*model.Pricing
	ProfitMargin     float64       `json:"profitMargin"`
	MarkupPercentage float64       `json:"markupPercentage"`
	IsExpired        bool          `json:"isExpired"`
	IsEffective      bool          `json:"isEffective"`
	Supplier         *SupplierRef  `json:"supplier,omitempty"`
	Inventory        *InventoryRef `json:"inventory,omitempty"`
}

func newPricingView(p *model.Pricing, now time.Time) PricingView {
	margin := rules.ProfitMargin(p.CostPrice, p.SellingPrice)
	return PricingView{
		Pricing:          p,
		ProfitMargin:     margin,
		MarkupPercentage: margin,
		IsExpired:        p.IsExpired(now),
		IsEffective:      p.IsEffective(now),
		Supplier:         supplierRef(p.Supplier),
		Inventory:        inventoryRef(p.Inventory),
	}
}

func pricingViews(list []model.Pricing, now time.Time) []PricingView {
	out := make([]PricingView, 0, len(list))
	for i := range list {
		out = append(out, newPricingView(&list[i], now))
	}
	return out
}
