package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coexhq/coex-backend/pkg/enums"
)

// Order is placed by a pharmacy against a single distributor. Business
// names are snapshotted at creation time so later renames never rewrite
// order history.
type Order struct {
	ID              uint              `gorm:"column:id;primaryKey" json:"id"`
	PharmacyID      uint              `gorm:"column:pharmacy_id;not null;index" json:"pharmacyId"`
	PharmacyName    string            `gorm:"column:pharmacy_name;not null" json:"pharmacyName"`
	DistributorID   uint              `gorm:"column:distributor_id;not null;index" json:"distributorId"`
	DistributorName string            `gorm:"column:distributor_name;not null" json:"distributorName"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:decimal(12,2);not null" json:"totalAmount"`
	Status          enums.OrderStatus `gorm:"column:status;not null" json:"status"`
	Notes           string            `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// OrderItem is a single line with the product name and unit price frozen
// at order time.
type OrderItem struct {
	ID        uint            `gorm:"column:id;primaryKey" json:"-"`
	OrderID   uint            `gorm:"column:order_id;not null;index" json:"-"`
	ProductID uint            `gorm:"column:product_id;not null" json:"productId"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Total     decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
}
