package payments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/internal/notifications"
	"github.com/coexhq/coex-backend/internal/uploads"
	"github.com/coexhq/coex-backend/internal/users"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

// Service manages check payments from submission to clearance.
type Service interface {
	Create(ctx context.Context, actor *models.User, input CreatePaymentRequest, image *CheckImage) (*models.Payment, error)
	List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Payment, error)
	Get(ctx context.Context, actor *models.User, id uint) (*models.Payment, error)
	UpdateStatus(ctx context.Context, actor *models.User, paymentID uint, status string) (*models.Payment, error)
}

// CheckImage is an optional scanned check attached to a payment.
type CheckImage struct {
	Filename string
	Reader   io.Reader
}

type service struct {
	repo     Repository
	users    users.Repository
	storage  uploads.Storage
	notifier notifications.Notifier
	now      func() time.Time
}

// NewService wires payments dependencies.
func NewService(repo Repository, userRepo users.Repository, storage uploads.Storage, notifier notifications.Notifier) (Service, error) {
	if repo == nil || userRepo == nil || storage == nil || notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments dependencies required")
	}
	return &service{repo: repo, users: userRepo, storage: storage, notifier: notifier, now: time.Now}, nil
}

// Create records a pending payment from the calling pharmacy and notifies
// the receiving distributor.
func (s *service) Create(ctx context.Context, actor *models.User, input CreatePaymentRequest, image *CheckImage) (*models.Payment, error) {
	if input.DistributorID == 0 || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount and distributor id are required")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	distributor, err := s.users.FindByID(ctx, input.DistributorID)
	if err != nil || distributor.Role != enums.RoleDistributor {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid distributor")
	}

	var imagePath string
	if image != nil {
		imagePath, err = s.storage.SaveImage(ctx, image.Filename, image.Reader)
		if err != nil {
			return nil, err
		}
	}

	payment := &models.Payment{
		PharmacyID:      actor.ID,
		PharmacyName:    actor.BusinessName,
		DistributorID:   distributor.ID,
		DistributorName: distributor.BusinessName,
		OrderID:         input.OrderID,
		Amount:          input.Amount,
		Status:          enums.PaymentStatusPending,
		CheckImagePath:  imagePath,
		DueDate:         input.DueDate,
		Notes:           input.Notes,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  distributor.ID,
		Title:   "New Payment Received",
		Message: fmt.Sprintf("New payment of %s JD received from %s", payment.Amount, payment.PharmacyName),
		Type:    enums.NotificationTypeNewPayment,
		Metadata: map[string]any{
			"paymentId": payment.ID,
		},
	}); err != nil {
		return nil, err
	}

	return payment, nil
}

// List returns payments visible to the actor: pharmacies see checks they
// wrote, distributors checks written to them, admins everything.
func (s *service) List(ctx context.Context, actor *models.User, filter ListFilter) ([]models.Payment, error) {
	if filter.Status != "" {
		if _, err := enums.ParsePaymentStatus(filter.Status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
	}

	var (
		rows []models.Payment
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, actor *models.User, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}

	if actor.Role == enums.RolePharmacy && payment.PharmacyID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this payment")
	}
	if actor.Role == enums.RoleDistributor && payment.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this payment")
	}
	return payment, nil
}

// UpdateStatus moves a check along its lifecycle. Only the receiving
// distributor may update it, and only along allowed transitions.
func (s *service) UpdateStatus(ctx context.Context, actor *models.User, paymentID uint, status string) (*models.Payment, error) {
	next, err := enums.ParsePaymentStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}

	if payment.DistributorID != actor.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to update this payment")
	}
	if !payment.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move payment from %s to %s", payment.Status, next))
	}

	payment.Status = next
	payment.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}

	if _, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  payment.PharmacyID,
		Title:   "Payment Status Updated",
		Message: fmt.Sprintf("Your payment of %s JD has been updated to: %s", payment.Amount, next),
		Type:    enums.NotificationTypePaymentStatusUpdate,
		Metadata: map[string]any{
			"paymentId": payment.ID,
			"status":    string(next),
		},
	}); err != nil {
		return nil, err
	}

	return payment, nil
}
