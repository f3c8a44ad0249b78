package enums

import "fmt"

// DeliveryStatus tracks a shipment from scheduling to receipt.
type DeliveryStatus string

const (
	DeliveryStatusScheduled DeliveryStatus = "scheduled"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusScheduled,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
}

var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusScheduled: {DeliveryStatusInTransit, DeliveryStatusDelivered},
	DeliveryStatusInTransit: {DeliveryStatusDelivered},
}

func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle graph allows moving to next.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range deliveryTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// DeliveryType selects how an order reaches the pharmacy.
type DeliveryType string

const (
	DeliveryTypePickup     DeliveryType = "pickup"
	DeliveryTypeScheduled  DeliveryType = "scheduled"
	DeliveryTypeThirdParty DeliveryType = "third-party"
)

var validDeliveryTypes = []DeliveryType{
	DeliveryTypePickup,
	DeliveryTypeScheduled,
	DeliveryTypeThirdParty,
}

func (d DeliveryType) IsValid() bool {
	for _, candidate := range validDeliveryTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryType converts raw strings into DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	for _, candidate := range validDeliveryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery type %q", value)
}

// ConfirmationType selects how the pharmacy proves receipt.
type ConfirmationType string

const (
	ConfirmationTypeSignature ConfirmationType = "signature"
	ConfirmationTypeImage     ConfirmationType = "image"
	ConfirmationTypeOTP       ConfirmationType = "otp"
)

var validConfirmationTypes = []ConfirmationType{
	ConfirmationTypeSignature,
	ConfirmationTypeImage,
	ConfirmationTypeOTP,
}

func (c ConfirmationType) IsValid() bool {
	for _, candidate := range validConfirmationTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConfirmationType converts raw strings into ConfirmationType.
func ParseConfirmationType(value string) (ConfirmationType, error) {
	for _, candidate := range validConfirmationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid confirmation type %q", value)
}
