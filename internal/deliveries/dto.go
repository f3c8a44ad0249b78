package deliveries

import "time"

type CreateDeliveryRequest struct {
	OrderID       uint       `json:"orderId" validate:"required"`
	DeliveryType  string     `json:"deliveryType" validate:"required"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	Notes         string     `json:"notes"`
}

// ConfirmDeliveryRequest is parsed from a multipart form; the optional
// confirmation image arrives as a separate file part.
type ConfirmDeliveryRequest struct {
	ConfirmationType string `json:"confirmationType" validate:"required"`
	OTPCode          string `json:"otpCode"`
	Notes            string `json:"notes"`
}

// ListFilter narrows role-scoped delivery listings.
type ListFilter struct {
	Status string
}
