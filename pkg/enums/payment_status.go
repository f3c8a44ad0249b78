package enums

import "fmt"

// PaymentStatus tracks a check payment from submission to clearance.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusProcessed PaymentStatus = "processed"
	PaymentStatusCleared   PaymentStatus = "cleared"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusBounced   PaymentStatus = "bounced"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusProcessed,
	PaymentStatusCleared,
	PaymentStatusRejected,
	PaymentStatusBounced,
}

// A check can be rejected before banking, and bounce only after it was
// processed. Cleared, rejected and bounced are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusProcessed, PaymentStatusRejected},
	PaymentStatusProcessed: {PaymentStatusCleared, PaymentStatusBounced},
}

func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle graph allows moving to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, candidate := range paymentTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw strings into PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
