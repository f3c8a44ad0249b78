package enums

// NotificationType tags the event that produced an in-app notification.
type NotificationType string

const (
	NotificationTypeNewOrder            NotificationType = "new_order"
	NotificationTypeOrderStatusUpdate   NotificationType = "order_status_update"
	NotificationTypeNewPayment          NotificationType = "new_payment"
	NotificationTypePaymentStatusUpdate NotificationType = "payment_status_update"
	NotificationTypePaymentReminder     NotificationType = "payment_reminder"
	NotificationTypeNewDelivery         NotificationType = "new_delivery"
	NotificationTypeDeliveryConfirmed   NotificationType = "delivery_confirmed"
)
