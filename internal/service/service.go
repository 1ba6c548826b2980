// Package service implements the supplier, inventory, pricing and auth
// operations on top of the record store. Field validation always runs
// before any business rule and stops the operation on failure.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/cache"
	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/media"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/validation"
	"github.com/sergioamr/farm-management/pkg/logger"
	"github.com/sergioamr/farm-management/prometheus"
	"go.uber.org/zap"
)

// Entity labels used in metrics, events and cache keys
const (
	EntitySupplier  = "supplier"
	EntityInventory = "inventory"
	EntityPricing   = "pricing"
	EntityUser      = "user"
)

// statsReaders lists the overviews built from each entity's records.
// Pricing stats carry supplier names.
var statsReaders = map[string][]string{
	EntitySupplier:  {EntitySupplier, EntityPricing},
	EntityInventory: {EntityInventory},
	EntityPricing:   {EntityPricing},
}

// Deps are the collaborators shared by every service. Nil fields fall back
// to no-op implementations.
type Deps struct {
	Log       *zap.Logger
	Validator *validation.Validator
	Cache     cache.StatsCache
	Events    events.Publisher
	Media     media.Uploader
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Events == nil {
		d.Events = events.Noop{}
	}
	if d.Media == nil {
		d.Media = media.Disabled{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// ListResult is one page of a listing with the total match count
type ListResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

// Pages is the number of pages at the current limit
func (r ListResult[T]) Pages() int {
	if r.Limit <= 0 {
		return 1
	}
	return int((r.Total + int64(r.Limit) - 1) / int64(r.Limit))
}

func list[T any, F any](ctx context.Context, f F, p repository.Page,
	find func(context.Context, F, repository.Page) ([]T, error),
	count func(context.Context, F) (int64, error),
) (*ListResult[T], error) {
	items, err := find(ctx, f, p)
	if err != nil {
		return nil, err
	}
	total := int64(len(items))
	if p.Limit > 0 {
		if total, err = count(ctx, f); err != nil {
			return nil, err
		}
	}
	return &ListResult[T]{Items: items, Total: total, Page: max(p.Number, 1), Limit: p.Limit}, nil
}

func (d Deps) log(ctx context.Context) *zap.Logger {
	return logger.FromGoContext(ctx, d.Log)
}

// reject records a refused write and hands the error back
func (d Deps) reject(ctx context.Context, entity string, err error) error {
	kind := apperror.Kind(err)
	prometheus.RecordRejection(entity, kind)
	d.log(ctx).Warn("Write rejected",
		zap.String("entity", entity),
		zap.String("kind", kind),
		zap.Error(err))
	return err
}

// failed logs a storage failure and hands the error back
func (d Deps) failed(ctx context.Context, entity, op string, err error) error {
	if kind := apperror.Kind(err); kind != "storage" && kind != "unknown" {
		return d.reject(ctx, entity, err)
	}
	d.log(ctx).Error("Storage operation failed",
		zap.String("entity", entity),
		zap.String("operation", op),
		zap.Error(err))
	return err
}

// committed runs the side effects of a successful write. None of them can
// fail the write: errors are logged and counted.
func (d Deps) committed(ctx context.Context, entity, action, id string, payload interface{}) {
	prometheus.RecordOperation(entity, action)
	log := d.log(ctx)

	for _, key := range statsReaders[entity] {
		if err := d.Cache.Invalidate(ctx, key); err != nil {
			log.Warn("Failed to invalidate stats cache", zap.String("entity", key), zap.Error(err))
		}
	}

	d.publish(ctx, events.NewEvent(entity, action, id, payload))
}

func (d Deps) publish(ctx context.Context, event events.DomainEvent) {
	if err := d.Events.Publish(ctx, event); err != nil {
		prometheus.RecordEventFailure(event.Entity)
		d.log(ctx).Error("Failed to publish domain event",
			zap.String("type", event.Type),
			zap.String("id", event.ID),
			zap.Error(err))
	}
}

// cachedStats serves an overview from the cache, loading and storing it on a miss
func cachedStats[T any](ctx context.Context, d Deps, entity string, load func(context.Context) (*T, error)) (*T, error) {
	log := d.log(ctx)

	var cached T
	ok, err := d.Cache.Get(ctx, entity, &cached)
	if err != nil {
		log.Warn("Stats cache read failed", zap.String("entity", entity), zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	stats, err := load(ctx)
	if err != nil {
		return nil, d.failed(ctx, entity, "stats", err)
	}
	if err := d.Cache.Set(ctx, entity, stats); err != nil {
		log.Warn("Stats cache write failed", zap.String("entity", entity), zap.Error(err))
	}
	return stats, nil
}

func trimAll(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

// trimSet trims the optional fields that were sent
func trimSet(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}

// setString overwrites dst when the optional value was sent
func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// trimList drops blank entries. A nil list stays nil so updates can tell
// an omitted list from an emptied one.
func trimList(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
