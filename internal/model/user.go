package model

import "time"

// User is an operator of the back office
type User struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username  string     `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email     string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string     `json:"-" gorm:"type:varchar(100);not null"`
	FirstName string     `json:"firstName" gorm:"type:varchar(50)"`
	LastName  string     `json:"lastName" gorm:"type:varchar(50)"`
	Role      Role       `json:"role" gorm:"type:varchar(10);not null"`
	IsActive  bool       `json:"isActive" gorm:"not null"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// All returns every model managed by migrations
func All() []interface{} {
	return []interface{}{&User{}, &Supplier{}, &Inventory{}, &Pricing{}}
}
