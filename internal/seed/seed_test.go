package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/coexhq/coex-backend/internal/users"
	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	"github.com/coexhq/coex-backend/pkg/security"
)

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

func TestRunPopulatesDemoDataset(t *testing.T) {
	client := openTestClient(t)

	if err := Run(context.Background(), client, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[string]int64{}
	for name, model := range map[string]any{
		"users":         &models.User{},
		"products":      &models.Product{},
		"orders":        &models.Order{},
		"order items":   &models.OrderItem{},
		"payments":      &models.Payment{},
		"deliveries":    &models.Delivery{},
		"notifications": &models.Notification{},
	} {
		var count int64
		if err := client.DB().Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		counts[name] = count
	}

	want := map[string]int64{
		"users": 7, "products": 12, "orders": 5, "order items": 10,
		"payments": 3, "deliveries": 3, "notifications": 4,
	}
	for name, expected := range want {
		if counts[name] != expected {
			t.Fatalf("expected %d %s, got %d", expected, name, counts[name])
		}
	}
}

func TestSeededCredentialsWork(t *testing.T) {
	client := openTestClient(t)

	if err := Run(context.Background(), client, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := users.NewRepository(client.DB())
	for username, password := range map[string]string{
		"admin":  "admin123",
		"dist1":  "dist123",
		"pharm1": "pharm123",
	} {
		user, err := repo.FindByUsername(context.Background(), username)
		if err != nil {
			t.Fatalf("find %s: %v", username, err)
		}
		ok, err := security.VerifyPassword(password, user.PasswordHash)
		if err != nil || !ok {
			t.Fatalf("password check for %s failed: ok=%v err=%v", username, ok, err)
		}
	}

	admin, _ := repo.FindByID(context.Background(), 1)
	if admin.Role != enums.RoleAdmin {
		t.Fatalf("expected user 1 to be admin, got %s", admin.Role)
	}
	pharm, _ := repo.FindByID(context.Background(), 5)
	if pharm.Role != enums.RolePharmacy || pharm.CreditLimit == nil {
		t.Fatalf("expected pharmacy with credit limit, got %+v", pharm)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	client := openTestClient(t)

	if err := Run(context.Background(), client, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Run(context.Background(), client, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 users after second run, got %d", count)
	}
}
