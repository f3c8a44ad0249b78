package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coexhq/coex-backend/pkg/enums"
)

// Payment records a check submitted by a pharmacy to a distributor,
// optionally tied to an order.
type Payment struct {
	ID              uint                `gorm:"column:id;primaryKey" json:"id"`
	PharmacyID      uint                `gorm:"column:pharmacy_id;not null;index" json:"pharmacyId"`
	PharmacyName    string              `gorm:"column:pharmacy_name;not null" json:"pharmacyName"`
	DistributorID   uint                `gorm:"column:distributor_id;not null;index" json:"distributorId"`
	DistributorName string              `gorm:"column:distributor_name;not null" json:"distributorName"`
	OrderID         *uint               `gorm:"column:order_id" json:"orderId,omitempty"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	Status          enums.PaymentStatus `gorm:"column:status;not null" json:"status"`
	CheckImagePath  string              `gorm:"column:check_image_path" json:"checkImagePath,omitempty"`
	DueDate         *time.Time          `gorm:"column:due_date" json:"dueDate,omitempty"`
	Notes           string              `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
