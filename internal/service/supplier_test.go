package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/media"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplierInput(name, email string) SupplierInput {
	return SupplierInput{
		Name:          name,
		ContactPerson: "Dana Fields",
		Email:         email,
		Phone:         "555-010-2030",
		Address: AddressInput{
			Street:  "400 Orchard Road",
			City:    "Modesto",
			State:   "CA",
			ZipCode: "95354",
		},
		BusinessType: model.BusinessTypeSeed,
	}
}

func createSupplier(t *testing.T, f *fixture, name, email string) *model.Supplier {
	t.Helper()
	s, err := f.suppliers.Create(context.Background(), supplierInput(name, email))
	require.NoError(t, err)
	return s
}

func TestSupplierCreateDefaults(t *testing.T) {
	f := newFixture(t)

	in := supplierInput("  Valley Seeds  ", " Orders@ValleySeeds.com ")
	s, err := f.suppliers.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Valley Seeds", s.Name)
	assert.Equal(t, "orders@valleyseeds.com", s.Email)
	assert.Equal(t, "USA", s.Address.Country)
	assert.Equal(t, model.PaymentNet30, s.PaymentTerms)
	assert.Equal(t, 3, s.Rating)
	assert.True(t, s.IsActive)
	assert.Equal(t, []string{"supplier.created"}, f.events.types())
	assert.Equal(t, []string{EntitySupplier, EntityPricing}, f.cache.invalidated)
}

func TestSupplierCreateValidation(t *testing.T) {
	f := newFixture(t)

	in := supplierInput("X", "not-an-email")
	in.BusinessType = "Broker"
	in.Rating = intPtr(9)
	in.Address.ZipCode = "12"

	_, err := f.suppliers.Create(context.Background(), in)
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)

	fields := map[string]bool{}
	for _, fe := range ve.Fields {
		fields[fe.Field] = true
	}
	for _, name := range []string{"name", "email", "businessType", "rating", "address.zipCode"} {
		assert.True(t, fields[name], "expected %s to fail", name)
	}
	assert.Empty(t, f.events.types())
}

func TestSupplierDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")
	_, err := f.suppliers.Create(ctx, supplierInput("Other Seeds", "ORDERS@valleyseeds.com"))
	var dup *apperror.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Supplier with this email already exists", dup.Message)

	second := createSupplier(t, f, "Hill Seeds", "hill@example.com")
	_, err = f.suppliers.Update(ctx, second.ID, supplierInput("Hill Seeds", first.Email))
	assert.ErrorAs(t, err, &dup)

	// keeping its own email is not a collision
	in := supplierInput("Valley Seeds Co", first.Email)
	updated, err := f.suppliers.Update(ctx, first.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Valley Seeds Co", updated.Name)
}

func TestSupplierUpdateKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := supplierInput("Valley Seeds", "orders@valleyseeds.com")
	in.Address.Country = "Canada"
	in.TaxID = strPtr("TX-991")
	in.PaymentTerms = model.PaymentNet60
	in.CreditLimit = ptr(5000)
	in.Rating = intPtr(5)
	in.Notes = strPtr("ships Mondays")
	in.Tags = []string{"organic"}
	s, err := f.suppliers.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.suppliers.Update(ctx, s.ID, supplierInput("Valley Seeds Co", s.Email))
	require.NoError(t, err)

	stored, err := f.suppliers.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Valley Seeds Co", stored.Name)
	assert.Equal(t, "Canada", stored.Address.Country)
	assert.Equal(t, "TX-991", stored.TaxID)
	assert.Equal(t, model.PaymentNet60, stored.PaymentTerms)
	assert.Equal(t, 5000.0, stored.CreditLimit)
	assert.Equal(t, 5, stored.Rating)
	assert.Equal(t, "ships Mondays", stored.Notes)
	assert.Equal(t, model.StringList{"organic"}, stored.Tags)
}

func TestSupplierExplicitZeroRatingRejected(t *testing.T) {
	f := newFixture(t)

	in := supplierInput("Valley Seeds", "orders@valleyseeds.com")
	in.Rating = intPtr(0)
	_, err := f.suppliers.Create(context.Background(), in)

	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "rating", ve.Fields[0].Field)
}

func TestSupplierUpdateNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.suppliers.Update(context.Background(), "b8a3c0e2-3f4d-4c6e-9f11-2a7d9e5b1c00", supplierInput("Valley Seeds", "a@b.com"))
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSupplierDeactivateRestoreVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")
	createSupplier(t, f, "Hill Seeds", "hill@example.com")
	activeOnly := repository.SupplierFilter{IsActive: boolPtr(true)}

	ids := func() []string {
		res, err := f.suppliers.List(ctx, activeOnly, repository.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		out := []string{}
		for _, item := range res.Items {
			out = append(out, item.ID)
		}
		return out
	}

	require.Contains(t, ids(), s.ID)

	deactivated, err := f.suppliers.Deactivate(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	assert.NotContains(t, ids(), s.ID)

	// still reachable directly, and the default listing keeps inactive suppliers
	got, err := f.suppliers.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	all, err := f.suppliers.List(ctx, repository.SupplierFilter{}, repository.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, int64(2), all.Total)
	states := map[string]bool{}
	for _, item := range all.Items {
		states[item.ID] = item.IsActive
	}
	assert.False(t, states[s.ID])

	_, err = f.suppliers.Restore(ctx, s.ID)
	require.NoError(t, err)
	assert.Contains(t, ids(), s.ID)

	assert.Equal(t, []string{
		"supplier.created", "supplier.created", "supplier.deactivated", "supplier.restored",
	}, f.events.types())
}

func TestSupplierStatsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")

	stats, err := f.suppliers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Overview.Active)
	require.Contains(t, f.cache.values, EntitySupplier)

	createSupplier(t, f, "Hill Seeds", "hill@example.com")
	assert.NotContains(t, f.cache.values, EntitySupplier, "writes invalidate the overview")

	stats, err = f.suppliers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Overview.Total)
}

func TestSupplierRenameRefreshesPricingStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")
	item := createItem(t, f, "Tomato Seeds", "TOM-1")
	_, err := f.pricing.Create(ctx, pricingInput(s.ID, item.ID))
	require.NoError(t, err)

	stats, err := f.pricing.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.TopSuppliers, 1)
	assert.Equal(t, "Valley Seeds", stats.TopSuppliers[0].Name)

	_, err = f.suppliers.Update(ctx, s.ID, supplierInput("Valley Seeds Co", s.Email))
	require.NoError(t, err)
	assert.NotContains(t, f.cache.values, EntityPricing)

	stats, err = f.pricing.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Valley Seeds Co", stats.TopSuppliers[0].Name)
}

type fakeUploader struct {
	got []byte
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, filename, folder string, kind media.Kind) (*model.Attachment, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.got = b
	return &model.Attachment{
		Name:       filename,
		URL:        "https://cdn.example.com/" + folder + "/" + filename + "?" + string(kind),
		PublicID:   folder + "/" + filename,
		UploadedAt: time.Now(),
	}, nil
}

func TestSupplierAddDocument(t *testing.T) {
	f := newFixture(t)
	uploader := &fakeUploader{}
	f.suppliers.deps.Media = uploader
	ctx := context.Background()

	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")
	updated, err := f.suppliers.AddDocument(ctx, s.ID, bytes.NewReader([]byte("%PDF")), "w9.pdf", " Tax form ")
	require.NoError(t, err)

	require.Len(t, updated.Documents, 1)
	assert.Equal(t, "Tax form", updated.Documents[0].Caption)
	assert.Contains(t, updated.Documents[0].URL, "suppliers/"+s.ID)
	assert.Equal(t, "%PDF", string(uploader.got))
}

func TestSupplierAddDocumentDisabled(t *testing.T) {
	f := newFixture(t)
	s := createSupplier(t, f, "Valley Seeds", "orders@valleyseeds.com")

	_, err := f.suppliers.AddDocument(context.Background(), s.ID, bytes.NewReader(nil), "w9.pdf", "")
	assert.True(t, errors.Is(err, media.ErrDisabled))
}
