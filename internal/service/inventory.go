package service

import (
	"context"
	"io"
	"strings"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/media"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/rules"
	"github.com/sergioamr/farm-management/internal/validation"
	"go.uber.org/zap"
)

// InventoryStore is the storage the inventory service needs
type InventoryStore interface {
	FindByID(ctx context.Context, id string) (*model.Inventory, error)
	FindWithSupplier(ctx context.Context, id string) (*model.Inventory, error)
	Find(ctx context.Context, f repository.InventoryFilter, p repository.Page) ([]model.Inventory, error)
	Count(ctx context.Context, f repository.InventoryFilter) (int64, error)
	Insert(ctx context.Context, item *model.Inventory) error
	Save(ctx context.Context, item *model.Inventory) error
	UpdateByID(ctx context.Context, id string, fields map[string]interface{}) (*model.Inventory, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Inventory, error)
	SKUTaken(ctx context.Context, sku, excludeID string) (bool, error)
	Stats(ctx context.Context) (*repository.InventoryStats, error)
}

// SupplierLookup resolves supplier references
type SupplierLookup interface {
	FindByID(ctx context.Context, id string) (*model.Supplier, error)
}

// LocationInput pins an item inside a warehouse
type LocationInput struct {
	Warehouse string `json:"warehouse" validate:"max=100"`
	Shelf     string `json:"shelf" validate:"max=50"`
	Bin       string `json:"bin" validate:"max=50"`
}

// InventoryInput is the body of an inventory create or update.
// Supplier is the id of the preferred supplier. On update, optional fields
// left out keep their stored values; an empty SKU, Supplier or ExpiryDate
// counts as left out.
type InventoryInput struct {
	Name         string         `json:"name" validate:"required,min=2,max=100"`
	SKU          string         `json:"sku" validate:"max=50"`
	Category     model.Category `json:"category" validate:"required,enum"`
	Subcategory  *string        `json:"subcategory" validate:"omitempty,max=50"`
	Description  *string        `json:"description" validate:"omitempty,max=500"`
	Unit         model.Unit     `json:"unit" validate:"required,enum"`
	CurrentStock *float64       `json:"currentStock" validate:"required,gte=0"`
	MinimumStock *float64       `json:"minimumStock" validate:"required,gte=0"`
	MaximumStock *float64       `json:"maximumStock" validate:"omitempty,gte=0"`
	CostPrice    *float64       `json:"costPrice" validate:"required,gte=0"`
	SellingPrice *float64       `json:"sellingPrice" validate:"required,gte=0"`
	Supplier     string         `json:"supplier" validate:"omitempty,uuid"`
	Location     *LocationInput `json:"location"`
	ExpiryDate   string         `json:"expiryDate" validate:"omitempty,isodate"`
	BatchNumber  *string        `json:"batchNumber" validate:"omitempty,max=50"`
	Notes        *string        `json:"notes" validate:"omitempty,max=1000"`
	Tags         []string       `json:"tags"`
}

func (in *InventoryInput) normalize() {
	trimAll(&in.Name, &in.SKU, &in.Supplier, &in.ExpiryDate)
	trimSet(in.Subcategory, in.Description, in.BatchNumber, in.Notes)
	if in.Location != nil {
		trimAll(&in.Location.Warehouse, &in.Location.Shelf, &in.Location.Bin)
	}
	in.SKU = strings.ToUpper(in.SKU)
	in.Tags = trimList(in.Tags)
}

// applyTo copies the validated input onto item. Required fields always
// overwrite; optional ones only when sent. SKU is handled by the caller.
func (in *InventoryInput) applyTo(item *model.Inventory) {
	item.Name = in.Name
	item.Category = in.Category
	item.Unit = in.Unit
	item.CurrentStock = *in.CurrentStock
	item.MinimumStock = *in.MinimumStock
	item.CostPrice = *in.CostPrice
	item.SellingPrice = *in.SellingPrice
	setString(&item.Subcategory, in.Subcategory)
	setString(&item.Description, in.Description)
	setString(&item.BatchNumber, in.BatchNumber)
	setString(&item.Notes, in.Notes)
	if in.MaximumStock != nil {
		maximum := *in.MaximumStock
		item.MaximumStock = &maximum
	}
	if in.Supplier != "" {
		supplierID := in.Supplier
		item.SupplierID = &supplierID
		item.Supplier = nil
	}
	if in.Location != nil {
		item.Location = model.Location(*in.Location)
	}
	if in.ExpiryDate != "" {
		// already checked by the isodate tag
		if t, err := validation.ParseDate(in.ExpiryDate); err == nil {
			item.ExpiryDate = &t
		}
	}
	if in.Tags != nil {
		item.Tags = in.Tags
	}
}

// StockInput is the body of a stock level update
type StockInput struct {
	CurrentStock *float64 `json:"currentStock" validate:"required,gte=0"`
	MinimumStock *float64 `json:"minimumStock" validate:"omitempty,gte=0"`
	MaximumStock *float64 `json:"maximumStock" validate:"omitempty,gte=0"`
}

// SKUSource synthesizes SKUs for items created without one
type SKUSource interface {
	Generate(category model.Category) string
}

// InventoryService manages inventory items
type InventoryService struct {
	store     InventoryStore
	suppliers SupplierLookup
	skus      SKUSource
	deps      Deps
}

// NewInventoryService creates an InventoryService. A nil skus uses the wall clock generator.
func NewInventoryService(store InventoryStore, suppliers SupplierLookup, skus SKUSource, deps Deps) *InventoryService {
	if skus == nil {
		skus = rules.NewSKUGenerator()
	}
	return &InventoryService{store: store, suppliers: suppliers, skus: skus, deps: deps.withDefaults()}
}

// List returns a page of items
func (s *InventoryService) List(ctx context.Context, f repository.InventoryFilter, p repository.Page) (*ListResult[model.Inventory], error) {
	res, err := list(ctx, f, p, s.store.Find, s.store.Count)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "list", err)
	}
	return res, nil
}

// Get returns an item with its supplier. Inactive items are not found
// unless includeInactive is set.
func (s *InventoryService) Get(ctx context.Context, id string, includeInactive bool) (*model.Inventory, error) {
	item, err := s.store.FindWithSupplier(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "get", err)
	}
	if !item.IsActive && !includeInactive {
		return nil, &apperror.NotFoundError{Resource: "Inventory item", ID: id}
	}
	return item, nil
}

// Create validates and stores a new active item. Without a SKU one is
// synthesized from the category; either way the SKU must be unused.
func (s *InventoryService) Create(ctx context.Context, in InventoryInput) (*model.Inventory, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntityInventory, err)
	}

	sku := in.SKU
	if sku == "" {
		sku = s.skus.Generate(in.Category)
	}
	if err := s.checkSKU(ctx, sku, ""); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, in.Supplier); err != nil {
		return nil, err
	}

	item := &model.Inventory{SKU: sku, IsActive: true, Tags: model.StringList{}}
	in.applyTo(item)
	if err := s.store.Insert(ctx, item); err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "create", err)
	}

	s.deps.log(ctx).Info("Inventory item created",
		zap.String("id", item.ID),
		zap.String("sku", item.SKU),
		zap.Bool("generated_sku", in.SKU == ""))
	s.deps.committed(ctx, EntityInventory, events.ActionCreated, item.ID, item)
	s.alertLowStock(ctx, item)
	return item, nil
}

// Update changes the fields sent for an item. An empty SKU keeps the current one.
func (s *InventoryService) Update(ctx context.Context, id string, in InventoryInput) (*model.Inventory, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntityInventory, err)
	}

	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "update", err)
	}

	if in.SKU != "" && in.SKU != item.SKU {
		if err := s.checkSKU(ctx, in.SKU, id); err != nil {
			return nil, err
		}
		item.SKU = in.SKU
	}
	if in.Supplier != "" && (item.SupplierID == nil || *item.SupplierID != in.Supplier) {
		if err := s.checkSupplier(ctx, in.Supplier); err != nil {
			return nil, err
		}
	}

	in.applyTo(item)
	if err := s.store.Save(ctx, item); err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "update", err)
	}

	s.deps.committed(ctx, EntityInventory, events.ActionUpdated, item.ID, item)
	s.alertLowStock(ctx, item)
	return item, nil
}

// UpdateStock sets the stock levels. Thresholds left out keep their values.
func (s *InventoryService) UpdateStock(ctx context.Context, id string, in StockInput) (*model.Inventory, error) {
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntityInventory, err)
	}

	fields := map[string]interface{}{"current_stock": *in.CurrentStock}
	if in.MinimumStock != nil {
		fields["minimum_stock"] = *in.MinimumStock
	}
	if in.MaximumStock != nil {
		fields["maximum_stock"] = *in.MaximumStock
	}

	item, err := s.store.UpdateByID(ctx, id, fields)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "stock", err)
	}

	s.deps.committed(ctx, EntityInventory, events.ActionStockUpdated, id, fields)
	s.alertLowStock(ctx, item)
	return item, nil
}

func (s *InventoryService) checkSKU(ctx context.Context, sku, excludeID string) error {
	taken, err := s.store.SKUTaken(ctx, sku, excludeID)
	if err != nil {
		return s.deps.failed(ctx, EntityInventory, "sku check", err)
	}
	if taken {
		return s.deps.reject(ctx, EntityInventory, &apperror.DuplicateError{Message: "SKU already exists"})
	}
	return nil
}

func (s *InventoryService) checkSupplier(ctx context.Context, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return s.deps.failed(ctx, EntityInventory, "supplier lookup", err)
	}
	return nil
}

// alertLowStock publishes a low_stock event when an active item needs restocking
func (s *InventoryService) alertLowStock(ctx context.Context, item *model.Inventory) {
	if !item.IsActive {
		return
	}
	status := rules.StockStatus(item.CurrentStock, item.MinimumStock, item.MaximumStock)
	if status != model.StockLow && status != model.StockOutOfStock {
		return
	}
	s.deps.publish(ctx, events.NewEvent(EntityInventory, events.ActionLowStock, item.ID, map[string]interface{}{
		"sku":          item.SKU,
		"stockStatus":  status,
		"currentStock": item.CurrentStock,
		"minimumStock": item.MinimumStock,
	}))
}

// Deactivate soft deletes an item. Its SKU stays reserved.
func (s *InventoryService) Deactivate(ctx context.Context, id string) (*model.Inventory, error) {
	return s.setActive(ctx, id, false, events.ActionDeactivated)
}

// Restore reactivates a soft deleted item
func (s *InventoryService) Restore(ctx context.Context, id string) (*model.Inventory, error) {
	return s.setActive(ctx, id, true, events.ActionRestored)
}

func (s *InventoryService) setActive(ctx context.Context, id string, active bool, action string) (*model.Inventory, error) {
	item, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, action, err)
	}
	s.deps.committed(ctx, EntityInventory, action, id, nil)
	return item, nil
}

// Stats returns the inventory overview, cached between writes
func (s *InventoryService) Stats(ctx context.Context) (*repository.InventoryStats, error) {
	return cachedStats(ctx, s.deps, EntityInventory, s.store.Stats)
}

// AddImage uploads an image and attaches it to the item
func (s *InventoryService) AddImage(ctx context.Context, id string, r io.Reader, filename, caption string) (*model.Inventory, error) {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "image", err)
	}

	img, err := s.deps.Media.Upload(ctx, r, filename, "inventory/"+id, media.KindImage)
	if err != nil {
		return nil, err
	}
	img.Caption = strings.TrimSpace(caption)

	images := append(model.Attachments{}, item.Images...)
	images = append(images, *img)
	updated, err := s.store.UpdateByID(ctx, id, map[string]interface{}{"images": images})
	if err != nil {
		return nil, s.deps.failed(ctx, EntityInventory, "image", err)
	}

	s.deps.committed(ctx, EntityInventory, events.ActionUpdated, id, img)
	return updated, nil
}
