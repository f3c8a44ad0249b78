package products

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	Category      string          `json:"category"`
	Manufacturer  string          `json:"manufacturer"`
	SKU           string          `json:"sku"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
}

// UpdateProductRequest carries only the fields callers are allowed to
// change. Pointer fields distinguish "omitted" from zero values.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	Category      *string          `json:"category"`
	Manufacturer  *string          `json:"manufacturer"`
	SKU           *string          `json:"sku"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
}
