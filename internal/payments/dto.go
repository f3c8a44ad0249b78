package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is parsed from a multipart form; the check image
// arrives as a separate file part.
type CreatePaymentRequest struct {
	DistributorID uint            `json:"distributorId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	OrderID       *uint           `json:"orderId"`
	DueDate       *time.Time      `json:"dueDate"`
	Notes         string          `json:"notes"`
}

type UpdatePaymentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows role-scoped payment listings.
type ListFilter struct {
	Status string
}
