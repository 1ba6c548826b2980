package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tomatoSeeds() InventoryInput {
	return InventoryInput{
		Name:         "Tomato Seeds",
		Category:     model.CategorySeeds,
		Unit:         model.UnitKg,
		CurrentStock: ptr(5),
		MinimumStock: ptr(10),
		CostPrice:    ptr(2),
		SellingPrice: ptr(3),
	}
}

type fixedSKU string

func (s fixedSKU) Generate(model.Category) string { return string(s) }

func TestInventoryCreateTomatoSeeds(t *testing.T) {
	f := newFixture(t)

	item, err := f.inventory.Create(context.Background(), tomatoSeeds())
	require.NoError(t, err)

	assert.Equal(t, model.StockLow, rules.StockStatus(item.CurrentStock, item.MinimumStock, item.MaximumStock))
	assert.Equal(t, 50.00, rules.ProfitMargin(item.CostPrice, item.SellingPrice))
	assert.True(t, item.IsActive)
	assert.Equal(t, []string{"inventory.created", "inventory.low_stock"}, f.events.types())
}

func TestInventoryGeneratedSKU(t *testing.T) {
	f := newFixture(t)

	item, err := f.inventory.Create(context.Background(), tomatoSeeds())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^SEE-\d{6}-[A-Z0-9]{3}$`), item.SKU)
}

func TestInventoryDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tomatoSeeds()
	in.SKU = "TOM-000001"
	first, err := f.inventory.Create(ctx, in)
	require.NoError(t, err)

	var dup *apperror.DuplicateError
	_, err = f.inventory.Create(ctx, in)
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "SKU already exists", dup.Message)

	_, err = f.inventory.Deactivate(ctx, first.ID)
	require.NoError(t, err)

	_, err = f.inventory.Create(ctx, in)
	assert.ErrorAs(t, err, &dup, "deactivated items keep their SKU")

	// lower case input is normalized before the check
	in.SKU = "tom-000001"
	_, err = f.inventory.Create(ctx, in)
	assert.ErrorAs(t, err, &dup)
}

func TestInventoryGeneratedSKUCollisionIsNotRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inventory.skus = fixedSKU("SEE-123456-ABC")

	_, err := f.inventory.Create(ctx, tomatoSeeds())
	require.NoError(t, err)

	var dup *apperror.DuplicateError
	_, err = f.inventory.Create(ctx, tomatoSeeds())
	assert.ErrorAs(t, err, &dup)
}

func TestInventoryValidationShortCircuits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tomatoSeeds()
	in.SKU = "TOM-1"
	_, err := f.inventory.Create(ctx, in)
	require.NoError(t, err)

	// duplicate SKU and missing supplier, but the field errors win
	in.Category = "Livestock"
	in.CurrentStock = ptr(-1)
	in.Supplier = "b8a3c0e2-3f4d-4c6e-9f11-2a7d9e5b1c00"
	_, err = f.inventory.Create(ctx, in)

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}

func TestInventoryRequiresNumbers(t *testing.T) {
	f := newFixture(t)
	in := tomatoSeeds()
	in.CostPrice = nil

	_, err := f.inventory.Create(context.Background(), in)
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "costPrice", ve.Fields[0].Field)
}

func TestInventorySupplierReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := tomatoSeeds()
	in.Supplier = "b8a3c0e2-3f4d-4c6e-9f11-2a7d9e5b1c00"
	_, err := f.inventory.Create(ctx, in)
	var notFound *apperror.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Supplier", notFound.Resource)

	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")
	in.Supplier = s.ID
	item, err := f.inventory.Create(ctx, in)
	require.NoError(t, err)

	got, err := f.inventory.Get(ctx, item.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.Supplier)
	assert.Equal(t, "Valley Seeds", got.Supplier.Name)
}

func TestInventoryGetInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.inventory.Create(ctx, tomatoSeeds())
	require.NoError(t, err)
	_, err = f.inventory.Deactivate(ctx, item.ID)
	require.NoError(t, err)

	var notFound *apperror.NotFoundError
	_, err = f.inventory.Get(ctx, item.ID, false)
	assert.ErrorAs(t, err, &notFound)

	got, err := f.inventory.Get(ctx, item.ID, true)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	restored, err := f.inventory.Restore(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
}

func TestInventoryUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := tomatoSeeds()
	a.SKU = "TOM-A"
	first, err := f.inventory.Create(ctx, a)
	require.NoError(t, err)

	b := tomatoSeeds()
	b.Name = "Pepper Seeds"
	b.SKU = "PEP-B"
	second, err := f.inventory.Create(ctx, b)
	require.NoError(t, err)

	// taking another item's SKU
	b.SKU = "TOM-A"
	var dup *apperror.DuplicateError
	_, err = f.inventory.Update(ctx, second.ID, b)
	require.ErrorAs(t, err, &dup)

	// an empty SKU keeps the current one
	a.SKU = ""
	a.ExpiryDate = "2026-01-31"
	a.MaximumStock = ptr(40)
	updated, err := f.inventory.Update(ctx, first.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "TOM-A", updated.SKU)
	require.NotNil(t, updated.ExpiryDate)
	assert.Equal(t, 2026, updated.ExpiryDate.Year())
	assert.Equal(t, 40.0, *updated.MaximumStock)
}

func TestInventoryUpdateKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")

	in := tomatoSeeds()
	in.SKU = "TOM-KEEP"
	in.MaximumStock = ptr(100)
	in.Notes = strPtr("keep me")
	in.Tags = []string{"organic"}
	in.Subcategory = strPtr("Heirloom")
	in.BatchNumber = strPtr("B-7")
	in.Supplier = s.ID
	in.Location = &LocationInput{Warehouse: "North", Shelf: "A2"}
	in.ExpiryDate = "2027-03-01"
	item, err := f.inventory.Create(ctx, in)
	require.NoError(t, err)

	partial := tomatoSeeds()
	partial.CurrentStock = ptr(150)
	_, err = f.inventory.Update(ctx, item.ID, partial)
	require.NoError(t, err)

	stored, err := f.inventory.Get(ctx, item.ID, false)
	require.NoError(t, err)
	require.NotNil(t, stored.MaximumStock)
	assert.Equal(t, 100.0, *stored.MaximumStock)
	assert.Equal(t, "keep me", stored.Notes)
	assert.Equal(t, model.StringList{"organic"}, stored.Tags)
	assert.Equal(t, "Heirloom", stored.Subcategory)
	assert.Equal(t, "B-7", stored.BatchNumber)
	assert.Equal(t, "North", stored.Location.Warehouse)
	require.NotNil(t, stored.SupplierID)
	assert.Equal(t, s.ID, *stored.SupplierID)
	require.NotNil(t, stored.ExpiryDate)
	assert.Equal(t, 2027, stored.ExpiryDate.Year())
	assert.Equal(t, "TOM-KEEP", stored.SKU)
	assert.Equal(t, model.StockOverstocked, rules.StockStatus(stored.CurrentStock, stored.MinimumStock, stored.MaximumStock))

	// sent but empty clears
	partial.Notes = strPtr("")
	partial.Tags = []string{}
	_, err = f.inventory.Update(ctx, item.ID, partial)
	require.NoError(t, err)

	stored, err = f.inventory.Get(ctx, item.ID, false)
	require.NoError(t, err)
	assert.Empty(t, stored.Notes)
	assert.Empty(t, stored.Tags)
	assert.Equal(t, 100.0, *stored.MaximumStock)
}

func TestInventoryUpdateStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.inventory.Create(ctx, tomatoSeeds())
	require.NoError(t, err)

	updated, err := f.inventory.UpdateStock(ctx, item.ID, StockInput{CurrentStock: ptr(100), MaximumStock: ptr(80)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.CurrentStock)
	assert.Equal(t, 10.0, updated.MinimumStock)
	assert.Equal(t, model.StockOverstocked, rules.StockStatus(updated.CurrentStock, updated.MinimumStock, updated.MaximumStock))

	_, err = f.inventory.UpdateStock(ctx, item.ID, StockInput{})
	var ve *apperror.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.inventory.UpdateStock(ctx, "b8a3c0e2-3f4d-4c6e-9f11-2a7d9e5b1c00", StockInput{CurrentStock: ptr(1)})
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = f.inventory.UpdateStock(ctx, item.ID, StockInput{CurrentStock: ptr(0)})
	require.NoError(t, err)
	types := f.events.types()
	assert.Equal(t, "inventory.low_stock", types[len(types)-1])
}

func TestInventoryListDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, name := range []string{"Alpha Seeds", "Beta Seeds", "Gamma Seeds"} {
		in := tomatoSeeds()
		in.Name = name
		in.CurrentStock = ptr(float64(i * 20))
		_, err := f.inventory.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := f.inventory.List(ctx, repository.InventoryFilter{StockStatus: model.StockNormal}, repository.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Pages())

	stats, err := f.inventory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OutOfStock)
	assert.InDelta(t, 120.0, stats.TotalValue, 0.001)
}
