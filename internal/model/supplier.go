package model

import (
	"fmt"
	"time"
)

// Address is the postal address of a supplier
type Address struct {
	Street  string `json:"street" gorm:"type:varchar(200)"`
	City    string `json:"city" gorm:"type:varchar(100)"`
	State   string `json:"state" gorm:"type:varchar(100)"`
	ZipCode string `json:"zipCode" gorm:"type:varchar(10)"`
	Country string `json:"country" gorm:"type:varchar(100)"`
}

// Full renders the address on one line
func (a Address) Full() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.Street, a.City, a.State, a.ZipCode, a.Country)
}

// Supplier represents a vendor of farm supplies
type Supplier struct {
	ID             string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name           string       `json:"name" gorm:"type:varchar(100);index;not null"`
	ContactPerson  string       `json:"contactPerson" gorm:"type:varchar(100);not null"`
	Email          string       `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone          string       `json:"phone" gorm:"type:varchar(20);not null"`
	Address        Address      `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	BusinessType   BusinessType `json:"businessType" gorm:"type:varchar(50);index;not null"`
	TaxID          string       `json:"taxId" gorm:"type:varchar(20)"`
	PaymentTerms   PaymentTerms `json:"paymentTerms" gorm:"type:varchar(30)"`
	CreditLimit    float64      `json:"creditLimit"`
	CurrentBalance float64      `json:"currentBalance"`
	Rating         int          `json:"rating"`
	Notes          string       `json:"notes" gorm:"type:varchar(500)"`
	IsActive       bool         `json:"isActive" gorm:"index;not null"`
	Tags           StringList   `json:"tags"`
	Documents      Attachments  `json:"documents"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}
