package orders

// OrderItemRequest references a live product listing; price and name are
// snapshotted by the server, never taken from the client.
type OrderItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	DistributorID uint               `json:"distributorId" validate:"required"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes         string             `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows role-scoped order listings.
type ListFilter struct {
	Status string
}
