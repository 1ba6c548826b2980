package service

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/rules"
	"github.com/sergioamr/farm-management/internal/validation"
	"go.uber.org/zap"
)

// PricingStore is the storage the pricing service needs
type PricingStore interface {
	FindByID(ctx context.Context, id string) (*model.Pricing, error)
	FindWithRefs(ctx context.Context, id string) (*model.Pricing, error)
	Find(ctx context.Context, f repository.PricingFilter, p repository.Page) ([]model.Pricing, error)
	Count(ctx context.Context, f repository.PricingFilter) (int64, error)
	ActiveBySupplier(ctx context.Context, supplierID string) ([]model.Pricing, error)
	ActiveByInventory(ctx context.Context, inventoryID string) ([]model.Pricing, error)
	Insert(ctx context.Context, p *model.Pricing) error
	Save(ctx context.Context, p *model.Pricing) error
	SetActive(ctx context.Context, id string, active bool) (*model.Pricing, error)
	PairTaken(ctx context.Context, supplierID, inventoryID, excludeID string) (bool, error)
	Stats(ctx context.Context) (*repository.PricingStats, error)
}

// InventoryLookup resolves inventory references
type InventoryLookup interface {
	FindByID(ctx context.Context, id string) (*model.Inventory, error)
}

// PricingInput is the body of a pricing create or update.
// Supplier and Inventory are record ids. On update, optional fields left
// out keep their stored values; empty dates count as left out.
type PricingInput struct {
	Supplier             string             `json:"supplier" validate:"required,uuid"`
	Inventory            string             `json:"inventory" validate:"required,uuid"`
	CostPrice            *float64           `json:"costPrice" validate:"required,gte=0"`
	SellingPrice         *float64           `json:"sellingPrice" validate:"required,gte=0"`
	BulkPricing          []model.BulkTier   `json:"bulkPricing" validate:"omitempty,dive"`
	Currency             model.Currency     `json:"currency" validate:"omitempty,enum"`
	EffectiveDate        string             `json:"effectiveDate" validate:"omitempty,isodate"`
	ExpiryDate           string             `json:"expiryDate" validate:"omitempty,isodate"`
	MinimumOrderQuantity *int               `json:"minimumOrderQuantity" validate:"omitempty,min=1"`
	LeadTime             *int               `json:"leadTime" validate:"omitempty,gte=0"`
	PaymentTerms         model.PaymentTerms `json:"paymentTerms" validate:"omitempty,enum"`
	Notes                *string            `json:"notes" validate:"omitempty,max=500"`
}

func (in *PricingInput) normalize() {
	trimAll(&in.Supplier, &in.Inventory, &in.EffectiveDate, &in.ExpiryDate)
	trimSet(in.Notes)
}

// newPricing is the record a create starts from
func newPricing(now time.Time) *model.Pricing {
	return &model.Pricing{
		BulkPricing:          model.BulkTiers{},
		Currency:             model.CurrencyUSD,
		EffectiveDate:        now.UTC(),
		MinimumOrderQuantity: 1,
		PaymentTerms:         model.PaymentNet30,
		IsActive:             true,
	}
}

// applyTo copies validated input and canonical tiers onto p. Required
// fields always overwrite; optional ones only when sent.
func (in *PricingInput) applyTo(p *model.Pricing, tiers model.BulkTiers) {
	p.SupplierID = in.Supplier
	p.InventoryID = in.Inventory
	p.Supplier = nil
	p.Inventory = nil
	p.CostPrice = *in.CostPrice
	p.SellingPrice = *in.SellingPrice
	if in.BulkPricing != nil {
		p.BulkPricing = tiers
	}
	if in.Currency != "" {
		p.Currency = in.Currency
	}
	if in.MinimumOrderQuantity != nil {
		p.MinimumOrderQuantity = *in.MinimumOrderQuantity
	}
	if in.LeadTime != nil {
		p.LeadTime = *in.LeadTime
	}
	if in.PaymentTerms != "" {
		p.PaymentTerms = in.PaymentTerms
	}
	setString(&p.Notes, in.Notes)

	// dates already passed the isodate tag
	if in.EffectiveDate != "" {
		p.EffectiveDate, _ = validation.ParseDate(in.EffectiveDate)
	}
	if in.ExpiryDate != "" {
		if t, err := validation.ParseDate(in.ExpiryDate); err == nil {
			p.ExpiryDate = &t
		}
	}
}

// PricingService manages supplier pricing agreements
type PricingService struct {
	store       PricingStore
	suppliers   SupplierLookup
	inventories InventoryLookup
	deps        Deps
}

// NewPricingService creates a PricingService
func NewPricingService(store PricingStore, suppliers SupplierLookup, inventories InventoryLookup, deps Deps) *PricingService {
	return &PricingService{store: store, suppliers: suppliers, inventories: inventories, deps: deps.withDefaults()}
}

// Now is the clock used for the derived effective and expired flags
func (s *PricingService) Now() time.Time { return s.deps.Now() }

// List returns a page of agreements with their references
func (s *PricingService) List(ctx context.Context, f repository.PricingFilter, p repository.Page) (*ListResult[model.Pricing], error) {
	res, err := list(ctx, f, p, s.store.Find, s.store.Count)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "list", err)
	}
	return res, nil
}

// Get returns an agreement with its references
func (s *PricingService) Get(ctx context.Context, id string) (*model.Pricing, error) {
	p, err := s.store.FindWithRefs(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "get", err)
	}
	return p, nil
}

// BySupplier lists the active agreements of a supplier by item name
func (s *PricingService) BySupplier(ctx context.Context, supplierID string) ([]model.Pricing, error) {
	agreements, err := s.store.ActiveBySupplier(ctx, supplierID)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "by supplier", err)
	}
	return agreements, nil
}

// ByInventory lists the active agreements for an item, cheapest first
func (s *PricingService) ByInventory(ctx context.Context, inventoryID string) ([]model.Pricing, error) {
	agreements, err := s.store.ActiveByInventory(ctx, inventoryID)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "by inventory", err)
	}
	return agreements, nil
}

// Create stores a new active agreement. Checks run in order: fields, bulk
// tiers, the supplier and inventory pairing, then both references.
func (s *PricingService) Create(ctx context.Context, in PricingInput) (*model.Pricing, error) {
	tiers, err := s.check(ctx, &in)
	if err != nil {
		return nil, err
	}

	if err := s.checkPair(ctx, in.Supplier, in.Inventory, ""); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in.Supplier, in.Inventory); err != nil {
		return nil, err
	}

	p := newPricing(s.deps.Now())
	in.applyTo(p, tiers)
	if err := s.store.Insert(ctx, p); err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "create", err)
	}

	s.deps.log(ctx).Info("Pricing created",
		zap.String("id", p.ID),
		zap.String("supplier_id", p.SupplierID),
		zap.String("inventory_id", p.InventoryID))
	s.deps.committed(ctx, EntityPricing, events.ActionCreated, p.ID, p)
	return s.reload(ctx, p)
}

// Update changes the fields sent for an agreement. The pairing is checked again only when
// the supplier or the inventory reference changes.
func (s *PricingService) Update(ctx context.Context, id string, in PricingInput) (*model.Pricing, error) {
	tiers, err := s.check(ctx, &in)
	if err != nil {
		return nil, err
	}

	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "update", err)
	}

	if in.Supplier != p.SupplierID || in.Inventory != p.InventoryID {
		if err := s.checkPair(ctx, in.Supplier, in.Inventory, id); err != nil {
			return nil, err
		}
		if err := s.checkRefs(ctx, in.Supplier, in.Inventory); err != nil {
			return nil, err
		}
	}

	in.applyTo(p, tiers)
	if err := s.store.Save(ctx, p); err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, "update", err)
	}

	s.deps.committed(ctx, EntityPricing, events.ActionUpdated, p.ID, p)
	return s.reload(ctx, p)
}

// check runs field validation and then canonicalizes the bulk tiers
func (s *PricingService) check(ctx context.Context, in *PricingInput) (model.BulkTiers, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntityPricing, err)
	}
	tiers, err := rules.CanonicalBulkTiers(in.BulkPricing)
	if err != nil {
		return nil, s.deps.reject(ctx, EntityPricing, err)
	}
	return tiers, nil
}

func (s *PricingService) checkPair(ctx context.Context, supplierID, inventoryID, excludeID string) error {
	taken, err := s.store.PairTaken(ctx, supplierID, inventoryID, excludeID)
	if err != nil {
		return s.deps.failed(ctx, EntityPricing, "pair check", err)
	}
	if taken {
		return s.deps.reject(ctx, EntityPricing, &apperror.DuplicateError{
			Message: "Pricing for this supplier and inventory combination already exists",
		})
	}
	return nil
}

func (s *PricingService) checkRefs(ctx context.Context, supplierID, inventoryID string) error {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return s.deps.failed(ctx, EntityPricing, "supplier lookup", err)
	}
	if _, err := s.inventories.FindByID(ctx, inventoryID); err != nil {
		return s.deps.failed(ctx, EntityPricing, "inventory lookup", err)
	}
	return nil
}

// reload fetches the stored agreement with its references for the response
func (s *PricingService) reload(ctx context.Context, p *model.Pricing) (*model.Pricing, error) {
	full, err := s.store.FindWithRefs(ctx, p.ID)
	if err != nil {
		s.deps.log(ctx).Warn("Failed to load pricing references", zap.String("id", p.ID), zap.Error(err))
		return p, nil
	}
	return full, nil
}

// Deactivate soft deletes an agreement. The pair stays reserved.
func (s *PricingService) Deactivate(ctx context.Context, id string) (*model.Pricing, error) {
	return s.setActive(ctx, id, false, events.ActionDeactivated)
}

// Restore reactivates a soft deleted agreement
func (s *PricingService) Restore(ctx context.Context, id string) (*model.Pricing, error) {
	return s.setActive(ctx, id, true, events.ActionRestored)
}

func (s *PricingService) setActive(ctx context.Context, id string, active bool, action string) (*model.Pricing, error) {
	if _, err := s.store.SetActive(ctx, id, active); err != nil {
		return nil, s.deps.failed(ctx, EntityPricing, action, err)
	}
	s.deps.committed(ctx, EntityPricing, action, id, nil)
	return s.Get(ctx, id)
}

// Stats returns the pricing overview, cached between writes
func (s *PricingService) Stats(ctx context.Context) (*repository.PricingStats, error) {
	return cachedStats(ctx, s.deps, EntityPricing, s.store.Stats)
}
