package notifications

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db/models"
	dbtypes "github.com/coexhq/coex-backend/pkg/db/types"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

// dedupWindow suppresses repeated identical notifications to the same user.
const dedupWindow = 5 * time.Minute

// Service defines the notification inbox plus the side-channel other
// services use to emit notifications.
type Service interface {
	Notify(ctx context.Context, input NotifyInput) (*models.Notification, error)
	List(ctx context.Context, userID uint) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	ClearAll(ctx context.Context, userID uint) (int64, error)
}

// Notifier is the narrow emit surface consumed by other services.
type Notifier interface {
	Notify(ctx context.Context, input NotifyInput) (*models.Notification, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NotifyInput carries one notification to record.
type NotifyInput struct {
	UserID   uint
	Title    string
	Message  string
	Type     enums.NotificationType
	Metadata map[string]any
}

// ListResult wraps a user's inbox with its unread count.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Notify records a notification unless an identical one was created within
// the dedup window; suppressed notifications return (nil, nil).
func (s *service) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if input.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification user id required")
	}

	now := s.now().UTC()
	key := DuplicateKey{
		UserID:  input.UserID,
		Title:   input.Title,
		Message: input.Message,
		Type:    input.Type,
	}
	count, err := s.repo.CountRecentDuplicates(ctx, key, now.Add(-dedupWindow))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check duplicate notifications")
	}
	if count > 0 {
		return nil, nil
	}

	notification := &models.Notification{
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Metadata:  dbtypes.JSONMap(input.Metadata),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create notification")
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, userID uint) (*ListResult, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	unread := 0
	for _, n := range rows {
		if !n.Read {
			unread++
		}
	}
	return &ListResult{Notifications: rows, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	if userID == 0 || notificationID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	notification, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	return notification, nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) ClearAll(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.ClearAll(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear notifications")
	}
	return count, nil
}
