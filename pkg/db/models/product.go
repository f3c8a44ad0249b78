package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog listing owned by a distributor. Prices are in
// Jordanian Dinar.
type Product struct {
	ID            uint            `gorm:"column:id;primaryKey" json:"id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	Description   string          `gorm:"column:description" json:"description"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Category      string          `gorm:"column:category" json:"category"`
	Manufacturer  string          `gorm:"column:manufacturer" json:"manufacturer"`
	SKU           string          `gorm:"column:sku" json:"sku"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0" json:"stockQuantity"`
	DistributorID uint            `gorm:"column:distributor_id;not null;index" json:"distributorId"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
