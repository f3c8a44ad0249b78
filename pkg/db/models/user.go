package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coexhq/coex-backend/pkg/enums"
)

// User represents a pharmacy, distributor, or admin account. The password
// hash never leaves the process: it is excluded from every JSON payload.
type User struct {
	ID           uint             `gorm:"column:id;primaryKey" json:"id"`
	Username     string           `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string           `gorm:"column:password_hash;not null" json:"-"`
	Name         string           `gorm:"column:name" json:"name"`
	Email        string           `gorm:"column:email;not null" json:"email"`
	PhoneNumber  string           `gorm:"column:phone_number" json:"phoneNumber"`
	Role         enums.Role       `gorm:"column:role;not null" json:"role"`
	BusinessName string           `gorm:"column:business_name" json:"businessName"`
	Address      string           `gorm:"column:address" json:"address,omitempty"`
	CreditLimit  *decimal.Decimal `gorm:"column:credit_limit;type:decimal(12,2)" json:"creditLimit,omitempty"`
	BusinessType string           `gorm:"column:business_type" json:"businessType,omitempty"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
