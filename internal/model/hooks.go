package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

// BeforeCreate generates a UUID before creating a new supplier
func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

// BeforeCreate generates a UUID before creating a new inventory item
func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

// BeforeCreate generates a UUID before creating a new pricing agreement
func (p *Pricing) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}
