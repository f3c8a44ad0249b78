package deliveries

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/internal/notifications"
	"github.com/coexhq/coex-backend/internal/orders"
	"github.com/coexhq/coex-backend/internal/uploads"
	"github.com/coexhq/coex-backend/internal/users"
	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

type testEnv struct {
	conn          *gorm.DB
	svc           *service
	orders        orders.Repository
	notifications notifications.Service
	pharmacy      *models.User
	distributor   *models.User
	admin         *models.User
}

func openTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return client
}

func seedUser(t *testing.T, conn *gorm.DB, role enums.Role, businessName string) *models.User {
	t.Helper()
	email := fmt.Sprintf("%s@%s.jo", role, strings.ToLower(strings.ReplaceAll(businessName, " ", "")))
	user := &models.User{
		Username:     email,
		PasswordHash: "x",
		Name:         businessName + " Owner",
		Email:        email,
		Role:         role,
		BusinessName: businessName,
	}
	if err := users.NewRepository(conn).Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client := openTestClient(t)
	conn := client.DB()

	notifSvc, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	storage, err := uploads.NewDiskStorage(config.UploadsConfig{Dir: t.TempDir(), MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	orderRepo := orders.NewRepository(conn)
	svc, err := NewService(client, NewRepository(conn), orderRepo, storage, notifSvc)
	if err != nil {
		t.Fatalf("deliveries service: %v", err)
	}
	impl := svc.(*service)
	impl.newOTP = func() (string, error) { return "123456", nil }

	return &testEnv{
		conn:          conn,
		svc:           impl,
		orders:        orderRepo,
		notifications: notifSvc,
		pharmacy:      seedUser(t, conn, enums.RolePharmacy, "Al-Shifa Pharmacy"),
		distributor:   seedUser(t, conn, enums.RoleDistributor, "MedPharm Distribution"),
		admin:         seedUser(t, conn, enums.RoleAdmin, "COEx Admin"),
	}
}

func seedOrder(t *testing.T, env *testEnv, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		PharmacyID:      env.pharmacy.ID,
		PharmacyName:    env.pharmacy.BusinessName,
		DistributorID:   env.distributor.ID,
		DistributorName: env.distributor.BusinessName,
		TotalAmount:     decimal.NewFromInt(100),
		Status:          status,
		Items: []models.OrderItem{
			{ProductID: 1, Name: "Amoxicillin 500mg", Price: decimal.NewFromInt(10), Quantity: 10, Total: decimal.NewFromInt(100)},
		},
	}
	if err := env.orders.Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func scheduleDelivery(t *testing.T, env *testEnv, orderID uint) *models.Delivery {
	t.Helper()
	delivery, err := env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{
		OrderID:      orderID,
		DeliveryType: "scheduled",
	})
	if err != nil {
		t.Fatalf("schedule delivery: %v", err)
	}
	return delivery
}

func TestCreateSchedulesDeliveryAndShipsOrder(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusAccepted)

	delivery, err := env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{
		OrderID:      order.ID,
		DeliveryType: "pickup",
		Notes:        "gate 3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivery.Status != enums.DeliveryStatusScheduled {
		t.Fatalf("expected scheduled status, got %s", delivery.Status)
	}
	if delivery.OTPCode != "123456" {
		t.Fatalf("expected issued OTP, got %q", delivery.OTPCode)
	}
	if delivery.PharmacyName != order.PharmacyName {
		t.Fatalf("expected snapshotted pharmacy name, got %q", delivery.PharmacyName)
	}

	shipped, err := env.orders.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shipped.Status != enums.OrderStatusShipped {
		t.Fatalf("expected order forced to shipped, got %s", shipped.Status)
	}

	inbox, _ := env.notifications.List(context.Background(), env.pharmacy.ID)
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Type != enums.NotificationTypeNewDelivery {
		t.Fatalf("expected new delivery notification, got %+v", inbox.Notifications)
	}
	if otp, ok := inbox.Notifications[0].Metadata["otpCode"].(string); !ok || otp != "123456" {
		t.Fatalf("expected OTP in notification metadata, got %v", inbox.Notifications[0].Metadata)
	}
}

func TestCreateKeepsShippedOrdersShipped(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusShipped)

	if _, err := env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{
		OrderID:      order.ID,
		DeliveryType: "third-party",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, _ := env.orders.FindByID(context.Background(), order.ID)
	if reloaded.Status != enums.OrderStatusShipped {
		t.Fatalf("expected order to stay shipped, got %s", reloaded.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusAccepted)

	_, err := env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{DeliveryType: "pickup"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing order, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{OrderID: order.ID, DeliveryType: "drone"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{OrderID: 999, DeliveryType: "pickup"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing order, got %v", err)
	}

	foreign := &models.User{ID: 999, Role: enums.RoleDistributor, BusinessName: "Other Dist"}
	_, err = env.svc.Create(context.Background(), foreign, CreateDeliveryRequest{OrderID: order.ID, DeliveryType: "pickup"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign distributor, got %v", err)
	}
}

func TestCreateRequiresShippableOrderState(t *testing.T) {
	env := newTestEnv(t)

	for _, status := range []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusRejected, enums.OrderStatusDelivered, enums.OrderStatusCancelled} {
		order := seedOrder(t, env, status)
		_, err := env.svc.Create(context.Background(), env.distributor, CreateDeliveryRequest{
			OrderID:      order.ID,
			DeliveryType: "pickup",
		})
		if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("status %s: expected state conflict, got %v", status, err)
		}
	}
}

func TestListScopesByRoleAndFiltersStatus(t *testing.T) {
	env := newTestEnv(t)
	first := seedOrder(t, env, enums.OrderStatusAccepted)
	second := seedOrder(t, env, enums.OrderStatusAccepted)
	delivery := scheduleDelivery(t, env, first.ID)
	scheduleDelivery(t, env, second.ID)

	if _, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{
		ConfirmationType: "signature",
	}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mine, err := env.svc.List(context.Background(), env.pharmacy, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 pharmacy deliveries, got %d", len(mine))
	}

	pendingOnly, err := env.svc.List(context.Background(), env.distributor, ListFilter{Status: "scheduled"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pendingOnly) != 1 {
		t.Fatalf("expected 1 scheduled delivery, got %d", len(pendingOnly))
	}

	all, err := env.svc.List(context.Background(), env.admin, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 deliveries for admin, got %d", len(all))
	}

	if _, err := env.svc.List(context.Background(), env.admin, ListFilter{Status: "lost"}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad filter, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusAccepted)
	delivery := scheduleDelivery(t, env, order.ID)

	foreignPharmacy := &models.User{ID: 999, Role: enums.RolePharmacy}
	if _, err := env.svc.Get(context.Background(), foreignPharmacy, delivery.ID); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := env.svc.Get(context.Background(), env.pharmacy, delivery.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Get(context.Background(), env.admin, 999); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfirmWithOTP(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusProcessing)
	delivery := scheduleDelivery(t, env, order.ID)

	// Wrong code first.
	_, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{
		ConfirmationType: "otp",
		OTPCode:          "000000",
	}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for wrong OTP, got %v", err)
	}

	confirmed, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{
		ConfirmationType: "otp",
		OTPCode:          "123456",
		Notes:            "received in good condition",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("expected delivered, got %s", confirmed.Status)
	}
	if confirmed.ConfirmationType == nil || *confirmed.ConfirmationType != enums.ConfirmationTypeOTP {
		t.Fatalf("expected otp confirmation type, got %v", confirmed.ConfirmationType)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatal("expected confirmation timestamp")
	}

	reloaded, _ := env.orders.FindByID(context.Background(), order.ID)
	if reloaded.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected order delivered, got %s", reloaded.Status)
	}

	inbox, _ := env.notifications.List(context.Background(), env.distributor.ID)
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Type != enums.NotificationTypeDeliveryConfirmed {
		t.Fatalf("expected delivery confirmed notification, got %+v", inbox.Notifications)
	}
}

func TestConfirmWithImageStoresProof(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusAccepted)
	delivery := scheduleDelivery(t, env, order.ID)

	confirmed, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{
		ConfirmationType: "image",
	}, &ConfirmationImage{Filename: "door.png", Reader: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmed.ConfirmationImagePath == "" {
		t.Fatal("expected stored confirmation image path")
	}
}

func TestConfirmValidationAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	order := seedOrder(t, env, enums.OrderStatusAccepted)
	delivery := scheduleDelivery(t, env, order.ID)

	_, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{ConfirmationType: "telepathy"}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}

	_, err = env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{ConfirmationType: "otp"}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing OTP, got %v", err)
	}

	foreign := &models.User{ID: 999, Role: enums.RolePharmacy}
	_, err = env.svc.Confirm(context.Background(), foreign, delivery.ID, ConfirmDeliveryRequest{ConfirmationType: "signature"}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = env.svc.Confirm(context.Background(), env.pharmacy, 999, ConfirmDeliveryRequest{ConfirmationType: "signature"}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// Confirming twice conflicts with the lifecycle.
	if _, err := env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{ConfirmationType: "signature"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = env.svc.Confirm(context.Background(), env.pharmacy, delivery.ID, ConfirmDeliveryRequest{ConfirmationType: "signature"}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on double confirm, got %v", err)
	}
}
