package db

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	"gorm.io/gorm"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := New(context.Background(), config.DBConfig{DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return client
}

func TestClientPing(t *testing.T) {
	client := openTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestClientMigrateAndCreate(t *testing.T) {
	client := openTestClient(t)

	user := &models.User{
		Username:     "dist1@jopharma.com",
		PasswordHash: "x",
		Email:        "dist1@jopharma.com",
		Role:         enums.RoleDistributor,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected auto-assigned id")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := openTestClient(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{
			Username:     "ghost@coex.com",
			PasswordHash: "x",
			Email:        "ghost@coex.com",
			Role:         enums.RolePharmacy,
		}).Error; err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	if err == nil {
		t.Fatal("expected error from tx fn")
	}

	var count int64
	if err := client.DB().Model(&models.User{}).Where("username = ?", "ghost@coex.com").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}
