package repository

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/prometheus"
	"gorm.io/gorm"
)

// UserRepository stores back office users
type UserRepository struct {
	store[model.User]
}

// NewUserRepository creates a UserRepository on db
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store[model.User]{db: db, entity: "user", resource: "User"}}
}

// FindByEmail looks a user up by login email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation(r.entity, "query")(time.Now())

	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, r.mapError("find", email, err)
	}
	return &user, nil
}

// Taken reports whether the email or the username is already registered
func (r *UserRepository) Taken(ctx context.Context, email, username string) (bool, error) {
	return r.exists(ctx, "email = ? OR username = ?", email, username)
}
