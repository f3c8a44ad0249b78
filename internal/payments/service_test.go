package payments

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/internal/notifications"
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
	svc           Service
	notifications notifications.Service
	pharmacy      *models.User
	distributor   *models.User
	admin         *models.User
}

func openTestDB(t *testing.T) *gorm.DB {
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
	return client.DB()
}

func seedUser(t *testing.T, conn *gorm.DB, role enums.Role, businessName string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     fmt.Sprintf("%s@%s.jo", role, strings.ToLower(strings.ReplaceAll(businessName, " ", ""))),
		PasswordHash: "x",
		Name:         businessName + " Owner",
		Email:        fmt.Sprintf("%s@%s.jo", role, strings.ToLower(strings.ReplaceAll(businessName, " ", ""))),
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
	conn := openTestDB(t)

	notifSvc, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		t.Fatalf("notifications service: %v", err)
	}
	storage, err := uploads.NewDiskStorage(config.UploadsConfig{Dir: t.TempDir(), MaxUploadMB: 1})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn), storage, notifSvc)
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}

	return &testEnv{
		svc:           svc,
		notifications: notifSvc,
		pharmacy:      seedUser(t, conn, enums.RolePharmacy, "Al-Shifa Pharmacy"),
		distributor:   seedUser(t, conn, enums.RoleDistributor, "MedPharm Distribution"),
		admin:         seedUser(t, conn, enums.RoleAdmin, "COEx Admin"),
	}
}

func createPayment(t *testing.T, env *testEnv, amount int64) *models.Payment {
	t.Helper()
	payment, err := env.svc.Create(context.Background(), env.pharmacy, CreatePaymentRequest{
		DistributorID: env.distributor.ID,
		Amount:        decimal.NewFromInt(amount),
	}, nil)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return payment
}

func TestCreatePaymentNotifiesDistributor(t *testing.T) {
	env := newTestEnv(t)

	payment, err := env.svc.Create(context.Background(), env.pharmacy, CreatePaymentRequest{
		DistributorID: env.distributor.ID,
		Amount:        decimal.NewFromFloat(250.50),
		Notes:         "check for last month",
	}, &CheckImage{Filename: "check.png", Reader: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending status, got %s", payment.Status)
	}
	if payment.PharmacyName != "Al-Shifa Pharmacy" || payment.DistributorName != "MedPharm Distribution" {
		t.Fatalf("expected snapshotted business names, got %q / %q", payment.PharmacyName, payment.DistributorName)
	}
	if payment.CheckImagePath == "" {
		t.Fatal("expected stored check image path")
	}

	inbox, err := env.notifications.List(context.Background(), env.distributor.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(inbox.Notifications))
	}
	if inbox.Notifications[0].Type != enums.NotificationTypeNewPayment {
		t.Fatalf("unexpected notification type %s", inbox.Notifications[0].Type)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.pharmacy, CreatePaymentRequest{
		Amount: decimal.NewFromInt(100),
	}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing distributor, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), env.pharmacy, CreatePaymentRequest{
		DistributorID: env.pharmacy.ID,
		Amount:        decimal.NewFromInt(100),
	}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for non-distributor target, got %v", err)
	}

	_, err = env.svc.Create(context.Background(), env.pharmacy, CreatePaymentRequest{
		DistributorID: env.distributor.ID,
		Amount:        decimal.NewFromInt(-10),
	}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}
}

func TestListScopesByRole(t *testing.T) {
	env := newTestEnv(t)
	createPayment(t, env, 100)
	createPayment(t, env, 200)

	mine, err := env.svc.List(context.Background(), env.pharmacy, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 pharmacy payments, got %d", len(mine))
	}

	received, err := env.svc.List(context.Background(), env.distributor, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("expected 2 distributor payments, got %d", len(received))
	}

	all, err := env.svc.List(context.Background(), env.admin, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 payments for admin, got %d", len(all))
	}
}

func TestListStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	first := createPayment(t, env, 100)
	createPayment(t, env, 200)

	if _, err := env.svc.UpdateStatus(context.Background(), env.distributor, first.ID, "processed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := env.svc.List(context.Background(), env.admin, ListFilter{Status: "pending"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending payment, got %d", len(pending))
	}

	if _, err := env.svc.List(context.Background(), env.admin, ListFilter{Status: "explodes"}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad filter, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	payment := createPayment(t, env, 100)

	foreignPharmacy := &models.User{ID: 999, Role: enums.RolePharmacy, BusinessName: "Other Pharmacy"}

	if _, err := env.svc.Get(context.Background(), foreignPharmacy, payment.ID); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign pharmacy, got %v", err)
	}

	got, err := env.svc.Get(context.Background(), env.pharmacy, payment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != payment.ID {
		t.Fatalf("expected payment %d, got %d", payment.ID, got.ID)
	}

	if _, err := env.svc.Get(context.Background(), env.admin, payment.ID); err != nil {
		t.Fatalf("admin should see any payment: %v", err)
	}

	if _, err := env.svc.Get(context.Background(), env.admin, 999); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	env := newTestEnv(t)
	payment := createPayment(t, env, 300)

	// pending -> cleared skips processed and is rejected.
	_, err := env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "cleared")
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	updated, err := env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "processed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.PaymentStatusProcessed {
		t.Fatalf("expected processed, got %s", updated.Status)
	}

	updated, err = env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "cleared")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.PaymentStatusCleared {
		t.Fatalf("expected cleared, got %s", updated.Status)
	}

	// cleared is terminal.
	if _, err := env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "bounced"); pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on terminal status, got %v", err)
	}
}

func TestUpdateStatusEnforcesOwnershipAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	payment := createPayment(t, env, 150)

	foreignDistributor := &models.User{ID: 999, Role: enums.RoleDistributor, BusinessName: "Other Dist"}
	if _, err := env.svc.UpdateStatus(context.Background(), foreignDistributor, payment.ID, "processed"); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign distributor, got %v", err)
	}

	if _, err := env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "processed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inbox, err := env.notifications.List(context.Background(), env.pharmacy.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Notifications) != 1 {
		t.Fatalf("expected 1 notification for pharmacy, got %d", len(inbox.Notifications))
	}
	if inbox.Notifications[0].Type != enums.NotificationTypePaymentStatusUpdate {
		t.Fatalf("unexpected notification type %s", inbox.Notifications[0].Type)
	}

	if _, err := env.svc.UpdateStatus(context.Background(), env.distributor, payment.ID, "nonsense"); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}
