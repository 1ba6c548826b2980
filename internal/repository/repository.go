// Package repository is the record store for suppliers, inventory, pricing
// and users. Every method maps driver errors onto the apperror taxonomy.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation
const pgUniqueViolation = "23505"

// Page selects a window of a list. A zero Limit returns every row.
type Page struct {
	Number int
	Limit  int
	Order  string
}

// Offset of the first row in the window
func (p Page) Offset() int {
	if p.Number < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

func (p Page) apply(q *gorm.DB, defaultOrder string) *gorm.DB {
	order := p.Order
	if order == "" {
		order = defaultOrder
	}
	q = q.Order(order)
	if p.Limit > 0 {
		q = q.Limit(p.Limit).Offset(p.Offset())
	}
	return q
}

// GroupCount is one bucket of a grouped count
type GroupCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// store holds the operations shared by every entity table
type store[T any] struct {
	db       *gorm.DB
	entity   string
	resource string
}

func (s *store[T]) FindByID(ctx context.Context, id string) (*T, error) {
	defer prometheus.TrackDBOperation(s.entity, "query")(time.Now())

	var rec T
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, s.mapError("find", id, err)
	}
	return &rec, nil
}

// Insert stores a new record. The id is generated by the model hook when empty.
func (s *store[T]) Insert(ctx context.Context, rec *T) error {
	defer prometheus.TrackDBOperation(s.entity, "insert")(time.Now())

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return s.mapError("insert", "", err)
	}
	return nil
}

// Save writes every column of an existing record; the last writer wins
func (s *store[T]) Save(ctx context.Context, rec *T) error {
	defer prometheus.TrackDBOperation(s.entity, "update")(time.Now())

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error; err != nil {
		return s.mapError("save", "", err)
	}
	return nil
}

// UpdateByID applies a partial update keyed by column name and returns the fresh record
func (s *store[T]) UpdateByID(ctx context.Context, id string, fields map[string]interface{}) (*T, error) {
	start := time.Now()
	res := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	prometheus.TrackDBOperation(s.entity, "update")(start)

	if res.Error != nil {
		return nil, s.mapError("update", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &apperror.NotFoundError{Resource: s.resource, ID: id}
	}
	return s.FindByID(ctx, id)
}

// SetActive flips the soft delete flag
func (s *store[T]) SetActive(ctx context.Context, id string, active bool) (*T, error) {
	return s.UpdateByID(ctx, id, map[string]interface{}{"is_active": active})
}

func (s *store[T]) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	defer prometheus.TrackDBOperation(s.entity, "count")(time.Now())

	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&count).Error; err != nil {
		return false, s.mapError("exists", "", err)
	}
	return count > 0, nil
}

func (s *store[T]) mapError(op, id string, err error) error {
	return mapError(s.resource, op, id, err)
}

func mapError(resource, op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperror.NotFoundError{Resource: resource, ID: id}
	case isUniqueViolation(err):
		return &apperror.DuplicateError{
			Message: resource + " conflicts with an existing record",
			Err:     err,
		}
	}
	return &apperror.StorageError{Op: strings.ToLower(resource) + " " + op, Err: err}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// likePattern builds a case insensitive substring pattern for LOWER(col) LIKE ?
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
