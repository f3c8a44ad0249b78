package models

import (
	"time"

	"github.com/coexhq/coex-backend/pkg/enums"
)

// Delivery is created by the distributor once an order is ready to ship.
// The OTP code is issued at creation and checked when the pharmacy
// confirms receipt; it is never serialized back to clients.
type Delivery struct {
	ID              uint                 `gorm:"column:id;primaryKey" json:"id"`
	OrderID         uint                 `gorm:"column:order_id;not null;index" json:"orderId"`
	PharmacyID      uint                 `gorm:"column:pharmacy_id;not null;index" json:"pharmacyId"`
	PharmacyName    string               `gorm:"column:pharmacy_name;not null" json:"pharmacyName"`
	DistributorID   uint                 `gorm:"column:distributor_id;not null;index" json:"distributorId"`
	DistributorName string               `gorm:"column:distributor_name;not null" json:"distributorName"`
	DeliveryType    enums.DeliveryType   `gorm:"column:delivery_type;not null" json:"deliveryType"`
	Status          enums.DeliveryStatus `gorm:"column:status;not null" json:"status"`
	ScheduledDate   *time.Time           `gorm:"column:scheduled_date" json:"scheduledDate,omitempty"`
	Notes           string               `gorm:"column:notes" json:"notes,omitempty"`
	OTPCode         string               `gorm:"column:otp_code" json:"-"`

	ConfirmationType      *enums.ConfirmationType `gorm:"column:confirmation_type" json:"confirmationType,omitempty"`
	ConfirmedAt           *time.Time              `gorm:"column:confirmed_at" json:"confirmedAt,omitempty"`
	ConfirmationNotes     string                  `gorm:"column:confirmation_notes" json:"confirmationNotes,omitempty"`
	ConfirmationImagePath string                  `gorm:"column:confirmation_image_path" json:"confirmationImagePath,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
