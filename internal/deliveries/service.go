package deliveries

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/internal/notifications"
	"github.com/coexhq/coex-backend/internal/orders"
	"github.com/coexhq/coex-backend/internal/uploads"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

// Service manages deliveries from scheduling to confirmed receipt.
type Service interface {
	Create(ctx context.Context, actor *models.User, input CreateDeliveryRequest) (*models.Delivery, error)
	List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Delivery, error)
	Get(ctx context.Context, actor *models.User, id uint) (*models.Delivery, error)
	Confirm(ctx context.Context, actor *models.User, deliveryID uint, input ConfirmDeliveryRequest, image *ConfirmationImage) (*models.Delivery, error)
}

// ConfirmationImage is an optional proof-of-receipt photo.
type ConfirmationImage struct {
	Filename string
	Reader   io.Reader
}

type service struct {
	client   *db.Client
	repo     Repository
	orders   orders.Repository
	storage  uploads.Storage
	notifier notifications.Notifier
	now      func() time.Time
	newOTP   func() (string, error)
}

// NewService wires deliveries dependencies.
func NewService(client *db.Client, repo Repository, orderRepo orders.Repository, storage uploads.Storage, notifier notifications.Notifier) (Service, error) {
	if client == nil || repo == nil || orderRepo == nil || storage == nil || notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "deliveries dependencies required")
	}
	return &service{
		client:   client,
		repo:     repo,
		orders:   orderRepo,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
		newOTP:   generateOTP,
	}, nil
}

// generateOTP returns a 6-digit one-time code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Create schedules a delivery for an order that is ready to ship. The OTP
// issued here reaches the pharmacy through its notification, never through
// the delivery payload.
func (s *service) Create(ctx context.Context, actor *models.User, input CreateDeliveryRequest) (*models.Delivery, error) {
	if input.OrderID == 0 || input.DeliveryType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and delivery type are required")
	}
	deliveryType, err := enums.ParseDeliveryType(input.DeliveryType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery type, must be pickup, scheduled, or third-party")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	if order.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to create delivery for this order")
	}

	switch order.Status {
	case enums.OrderStatusAccepted, enums.OrderStatusProcessing, enums.OrderStatusShipped:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			"order must be accepted, processing, or shipped to create delivery")
	}

	otp, err := s.newOTP()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	delivery := &models.Delivery{
		OrderID:         order.ID,
		PharmacyID:      order.PharmacyID,
		PharmacyName:    order.PharmacyName,
		DistributorID:   actor.ID,
		DistributorName: actor.BusinessName,
		DeliveryType:    deliveryType,
		Status:          enums.DeliveryStatusScheduled,
		ScheduledDate:   input.ScheduledDate,
		Notes:           input.Notes,
		OTPCode:         otp,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create delivery")
		}
		if order.Status != enums.OrderStatusShipped {
			order.Status = enums.OrderStatusShipped
			order.UpdatedAt = s.now().UTC()
			if err := s.orders.WithTx(tx).UpdateStatus(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order shipped")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.PharmacyID,
		Title:   "Delivery Scheduled",
		Message: fmt.Sprintf("Delivery for order #%d has been scheduled as %s", order.ID, deliveryType),
		Type:    enums.NotificationTypeNewDelivery,
		Metadata: map[string]any{
			"deliveryId": delivery.ID,
			"orderId":    order.ID,
			"otpCode":    otp,
		},
	}); err != nil {
		return nil, err
	}

	return delivery, nil
}

// List returns deliveries visible to the actor: pharmacies see inbound
// deliveries, distributors outbound ones, admins everything.
func (s *service) List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Delivery, error) {
	if filter.Status != "" {
		if !enums.DeliveryStatus(filter.Status).IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}

	var (
		rows []models.Delivery
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list deliveries")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, actor *models.User, id uint) (*models.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find delivery")
	}

	if actor.Role == enums.RolePharmacy && delivery.PharmacyID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this delivery")
	}
	if actor.Role == enums.RoleDistributor && delivery.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this delivery")
	}
	return delivery, nil
}

// Confirm records receipt by the owning pharmacy. OTP confirmations must
// present the code issued at creation. The delivery and its parent order
// land on delivered atomically.
func (s *service) Confirm(ctx context.Context, actor *models.User, deliveryID uint, input ConfirmDeliveryRequest, image *ConfirmationImage) (*models.Delivery, error) {
	confirmationType, err := enums.ParseConfirmationType(input.ConfirmationType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid confirmation type is required (signature, image, or otp)")
	}
	if confirmationType == enums.ConfirmationTypeOTP && input.OTPCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "OTP code is required for OTP confirmation")
	}

	delivery, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find delivery")
	}
	if delivery.PharmacyID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to confirm this delivery")
	}
	if !delivery.Status.CanTransitionTo(enums.DeliveryStatusDelivered) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot confirm delivery in status %s", delivery.Status))
	}
	if confirmationType == enums.ConfirmationTypeOTP && input.OTPCode != delivery.OTPCode {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid OTP code")
	}

	var imagePath string
	if image != nil {
		imagePath, err = s.storage.SaveImage(ctx, image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
	}

	confirmedAt := s.now().UTC()
	delivery.Status = enums.DeliveryStatusDelivered
	delivery.ConfirmationType = &confirmationType
	delivery.ConfirmedAt = &confirmedAt
	delivery.ConfirmationNotes = input.Notes
	delivery.ConfirmationImagePath = imagePath
	delivery.UpdatedAt = confirmedAt

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update delivery")
		}

		order, err := s.orders.WithTx(tx).FindByID(ctx, delivery.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
		}
		if order.Status.CanTransitionTo(enums.OrderStatusDelivered) {
			order.Status = enums.OrderStatusDelivered
			order.UpdatedAt = confirmedAt
			if err := s.orders.WithTx(tx).UpdateStatus(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order delivered")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  delivery.DistributorID,
		Title:   "Delivery Confirmed",
		Message: fmt.Sprintf("Delivery for order #%d has been confirmed by %s", delivery.OrderID, delivery.PharmacyName),
		Type:    enums.NotificationTypeDeliveryConfirmed,
		Metadata: map[string]any{
			"deliveryId": delivery.ID,
			"orderId":    delivery.OrderID,
		},
	}); err != nil {
		return nil, err
	}

	return delivery, nil
}
