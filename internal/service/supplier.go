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
	"go.uber.org/zap"
)

// SupplierStore is the storage the supplier service needs
type SupplierStore interface {
	FindByID(ctx context.Context, id string) (*model.Supplier, error)
	Find(ctx context.Context, f repository.SupplierFilter, p repository.Page) ([]model.Supplier, error)
	Count(ctx context.Context, f repository.SupplierFilter) (int64, error)
	Insert(ctx context.Context, s *model.Supplier) error
	Save(ctx context.Context, s *model.Supplier) error
	UpdateByID(ctx context.Context, id string, fields map[string]interface{}) (*model.Supplier, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Supplier, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	Stats(ctx context.Context) (*repository.SupplierStats, error)
}

// AddressInput is the postal address of a supplier write
type AddressInput struct {
	Street  string `json:"street" validate:"required,min=5,max=200"`
	City    string `json:"city" validate:"required,min=2,max=100"`
	State   string `json:"state" validate:"required,min=2,max=100"`
	ZipCode string `json:"zipCode" validate:"required,min=5,max=10"`
	Country string `json:"country" validate:"max=100"`
}

// SupplierInput is the body of a supplier create or update. On update,
// optional fields left out keep their stored values.
type SupplierInput struct {
	Name           string             `json:"name" validate:"required,min=2,max=100"`
	ContactPerson  string             `json:"contactPerson" validate:"required,min=2,max=100"`
	Email          string             `json:"email" validate:"required,email,max=100"`
	Phone          string             `json:"phone" validate:"required,min=10,max=20"`
	Address        AddressInput       `json:"address"`
	BusinessType   model.BusinessType `json:"businessType" validate:"required,enum"`
	TaxID          *string            `json:"taxId" validate:"omitempty,max=20"`
	PaymentTerms   model.PaymentTerms `json:"paymentTerms" validate:"omitempty,enum"`
	CreditLimit    *float64           `json:"creditLimit" validate:"omitempty,gte=0"`
	CurrentBalance *float64           `json:"currentBalance"`
	Rating         *int               `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes          *string            `json:"notes" validate:"omitempty,max=500"`
	Tags           []string           `json:"tags"`
}

func (in *SupplierInput) normalize() {
	trimAll(&in.Name, &in.ContactPerson, &in.Email, &in.Phone,
		&in.Address.Street, &in.Address.City, &in.Address.State, &in.Address.ZipCode, &in.Address.Country)
	trimSet(in.TaxID, in.Notes)
	in.Email = strings.ToLower(in.Email)
	in.Tags = trimList(in.Tags)
}

// newSupplier is the record a create starts from
func newSupplier() *model.Supplier {
	return &model.Supplier{
		Address:      model.Address{Country: "USA"},
		PaymentTerms: model.PaymentNet30,
		Rating:       3,
		Tags:         model.StringList{},
		IsActive:     true,
	}
}

// applyTo copies the validated input onto s. Required fields always
// overwrite; optional ones only when sent.
func (in *SupplierInput) applyTo(s *model.Supplier) {
	s.Name = in.Name
	s.ContactPerson = in.ContactPerson
	s.Email = in.Email
	s.Phone = in.Phone
	country := s.Address.Country
	s.Address = model.Address(in.Address)
	if s.Address.Country == "" {
		s.Address.Country = country
	}
	s.BusinessType = in.BusinessType
	if in.PaymentTerms != "" {
		s.PaymentTerms = in.PaymentTerms
	}
	setString(&s.TaxID, in.TaxID)
	setString(&s.Notes, in.Notes)
	if in.CreditLimit != nil {
		s.CreditLimit = *in.CreditLimit
	}
	if in.CurrentBalance != nil {
		s.CurrentBalance = *in.CurrentBalance
	}
	if in.Rating != nil {
		s.Rating = *in.Rating
	}
	if in.Tags != nil {
		s.Tags = in.Tags
	}
}

// SupplierService manages suppliers
type SupplierService struct {
	store SupplierStore
	deps  Deps
}

// NewSupplierService creates a SupplierService
func NewSupplierService(store SupplierStore, deps Deps) *SupplierService {
	return &SupplierService{store: store, deps: deps.withDefaults()}
}

// List returns a page of suppliers. A zero page limit returns every match.
func (s *SupplierService) List(ctx context.Context, f repository.SupplierFilter, p repository.Page) (*ListResult[model.Supplier], error) {
	res, err := list(ctx, f, p, s.store.Find, s.store.Count)
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "list", err)
	}
	return res, nil
}

// Get returns a supplier whatever its active flag
func (s *SupplierService) Get(ctx context.Context, id string) (*model.Supplier, error) {
	supplier, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "get", err)
	}
	return supplier, nil
}

// Create validates and stores a new active supplier. The email must be unused.
func (s *SupplierService) Create(ctx context.Context, in SupplierInput) (*model.Supplier, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntitySupplier, err)
	}

	if err := s.checkEmail(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	supplier := newSupplier()
	in.applyTo(supplier)
	if err := s.store.Insert(ctx, supplier); err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "create", err)
	}

	s.deps.log(ctx).Info("Supplier created",
		zap.String("id", supplier.ID),
		zap.String("name", supplier.Name))
	s.deps.committed(ctx, EntitySupplier, events.ActionCreated, supplier.ID, supplier)
	return supplier, nil
}

// Update changes the fields sent for a supplier
func (s *SupplierService) Update(ctx context.Context, id string, in SupplierInput) (*model.Supplier, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntitySupplier, err)
	}

	supplier, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "update", err)
	}

	if in.Email != supplier.Email {
		if err := s.checkEmail(ctx, in.Email, id); err != nil {
			return nil, err
		}
	}

	in.applyTo(supplier)
	if err := s.store.Save(ctx, supplier); err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "update", err)
	}

	s.deps.committed(ctx, EntitySupplier, events.ActionUpdated, supplier.ID, supplier)
	return supplier, nil
}

func (s *SupplierService) checkEmail(ctx context.Context, email, excludeID string) error {
	taken, err := s.store.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return s.deps.failed(ctx, EntitySupplier, "email check", err)
	}
	if taken {
		return s.deps.reject(ctx, EntitySupplier, &apperror.DuplicateError{Message: "Supplier with this email already exists"})
	}
	return nil
}

// Deactivate soft deletes a supplier
func (s *SupplierService) Deactivate(ctx context.Context, id string) (*model.Supplier, error) {
	return s.setActive(ctx, id, false, events.ActionDeactivated)
}

// Restore reactivates a soft deleted supplier
func (s *SupplierService) Restore(ctx context.Context, id string) (*model.Supplier, error) {
	return s.setActive(ctx, id, true, events.ActionRestored)
}

func (s *SupplierService) setActive(ctx context.Context, id string, active bool, action string) (*model.Supplier, error) {
	supplier, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, action, err)
	}
	s.deps.committed(ctx, EntitySupplier, action, id, nil)
	return supplier, nil
}

// Stats returns the supplier overview, cached between writes
func (s *SupplierService) Stats(ctx context.Context) (*repository.SupplierStats, error) {
	return cachedStats(ctx, s.deps, EntitySupplier, s.store.Stats)
}

// AddDocument uploads a file and attaches it to the supplier
func (s *SupplierService) AddDocument(ctx context.Context, id string, r io.Reader, filename, caption string) (*model.Supplier, error) {
	supplier, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "document", err)
	}

	doc, err := s.deps.Media.Upload(ctx, r, filename, "suppliers/"+id, media.KindDocument)
	if err != nil {
		return nil, err
	}
	doc.Caption = strings.TrimSpace(caption)

	docs := append(model.Attachments{}, supplier.Documents...)
	docs = append(docs, *doc)
	updated, err := s.store.UpdateByID(ctx, id, map[string]interface{}{"documents": docs})
	if err != nil {
		return nil, s.deps.failed(ctx, EntitySupplier, "document", err)
	}

	s.deps.committed(ctx, EntitySupplier, events.ActionUpdated, id, doc)
	return updated, nil
}
