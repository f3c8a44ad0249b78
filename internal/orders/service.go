package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/internal/notifications"
	"github.com/coexhq/coex-backend/internal/payments"
	"github.com/coexhq/coex-backend/internal/products"
	"github.com/coexhq/coex-backend/internal/users"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

// Service manages pharmacy orders against distributor catalogs.
type Service interface {
	Create(ctx context.Context, actor *models.User, input CreateOrderRequest) (*models.Order, error)
	List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Order, error)
	Get(ctx context.Context, actor *models.User, id uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor *models.User, orderID uint, status string) (*models.Order, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	users    users.Repository
	products products.Repository
	payments payments.Repository
	notifier notifications.Notifier
	now      func() time.Time
}

// NewService wires orders dependencies.
func NewService(client *db.Client, repo Repository, userRepo users.Repository, productRepo products.Repository, paymentRepo payments.Repository, notifier notifications.Notifier) (Service, error) {
	if client == nil || repo == nil || userRepo == nil || productRepo == nil || paymentRepo == nil || notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders dependencies required")
	}
	return &service{
		client:   client,
		repo:     repo,
		users:    userRepo,
		products: productRepo,
		payments: paymentRepo,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

// Create places an order for the calling pharmacy. The credit check, price
// snapshot and insert run inside one transaction so a concurrent payment
// cannot slip between the check and the write. Prices come from the live
// catalog, never from the client.
func (s *service) Create(ctx context.Context, actor *models.User, input CreateOrderRequest) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	distributor, err := s.users.FindByID(ctx, input.DistributorID)
	if err != nil || distributor.Role != enums.RoleDistributor {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid distributor")
	}

	order := &models.Order{
		PharmacyID:      actor.ID,
		PharmacyName:    actor.BusinessName,
		DistributorID:   distributor.ID,
		DistributorName: distributor.BusinessName,
		Status:          enums.OrderStatusPending,
		Notes:           input.Notes,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		exceeded, err := s.exceedsCreditLimit(ctx, s.payments.WithTx(tx), actor)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check credit limit")
		}
		if exceeded {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot place order due to exceeded credit limit")
		}

		txProducts := s.products.WithTx(tx)
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			if item.ProductID == 0 || item.Quantity <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "each item must have productId and quantity")
			}
			product, err := txProducts.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation,
						fmt.Sprintf("product with ID %d not found", item.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
				Total:     lineTotal,
			})
		}

		order.Items = items
		order.TotalAmount = total
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  distributor.ID,
		Title:   "New Order Received",
		Message: fmt.Sprintf("New order #%d received from %s", order.ID, order.PharmacyName),
		Type:    enums.NotificationTypeNewOrder,
		Metadata: map[string]any{
			"orderId": order.ID,
		},
	}); err != nil {
		return nil, err
	}

	return order, nil
}

// exceedsCreditLimit sums the pharmacy's pending payments against its
// credit limit. Non-pharmacy accounts always exceed: they cannot order.
func (s *service) exceedsCreditLimit(ctx context.Context, paymentRepo payments.Repository, actor *models.User) (bool, error) {
	if actor == nil || actor.Role != enums.RolePharmacy {
		return true, nil
	}
	pending, err := paymentRepo.SumPendingByPharmacy(ctx, actor.ID)
	if err != nil {
		return false, err
	}
	limit := decimal.Zero
	if actor.CreditLimit != nil {
		limit = *actor.CreditLimit
	}
	return pending.GreaterThan(limit), nil
}

// List returns orders visible to the actor: pharmacies see their own,
// distributors orders placed with them, admins everything.
func (s *service) List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Order, error) {
	if filter.Status != "" {
		if _, err := enums.ParseOrderStatus(filter.Status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}

	var (
		rows []models.Order
		err  error
	)
	switch actor.Role {
	case enums.RolePharmacy:
		rows, err = s.repo.ListByPharmacy(ctx, actor.ID, filter)
	case enums.RoleDistributor:
		rows, err = s.repo.ListByDistributor(ctx, actor.ID, filter)
	default:
		rows, err = s.repo.ListAll(ctx, filter)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, actor *models.User, id uint) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	if actor.Role == enums.RolePharmacy && order.PharmacyID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	if actor.Role == enums.RoleDistributor && order.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	return order, nil
}

// UpdateStatus moves an order along its lifecycle. Only the receiving
// distributor may update it, and only along allowed transitions.
func (s *service) UpdateStatus(ctx context.Context, actor *models.User, orderID uint, status string) (*models.Order, error) {
	next, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	if order.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to update this order")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	order.Status = next
	order.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.PharmacyID,
		Title:   "Order Status Updated",
		Message: fmt.Sprintf("Your order #%d has been updated to: %s", order.ID, next),
		Type:    enums.NotificationTypeOrderStatusUpdate,
		Metadata: map[string]any{
			"orderId": order.ID,
			"status":  string(next),
		},
	}); err != nil {
		return nil, err
	}

	return order, nil
}
