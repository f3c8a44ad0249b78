package products

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
)

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

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func createProduct(t *testing.T, svc Service, distributorID uint, name string) uint {
	t.Helper()
	product, err := svc.Create(context.Background(), distributorID, CreateProductRequest{
		Name:          name,
		Price:         decimal.NewFromFloat(12.50),
		Category:      "Antibiotics",
		SKU:           "SKU-" + name,
		StockQuantity: 100,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product.ID
}

func TestCreateRequiresNameAndPositivePrice(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), 2, CreateProductRequest{
		Price: decimal.NewFromInt(5),
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}

	_, err = svc.Create(context.Background(), 2, CreateProductRequest{
		Name:  "Amoxicillin 500mg",
		Price: decimal.Zero,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}
}

func TestCreateAssignsOwningDistributor(t *testing.T) {
	svc := newTestService(t)

	product, err := svc.Create(context.Background(), 2, CreateProductRequest{
		Name:          "Amoxicillin 500mg",
		Price:         decimal.NewFromFloat(8.50),
		StockQuantity: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.DistributorID != 2 {
		t.Fatalf("expected distributor 2, got %d", product.DistributorID)
	}
	if product.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestListAndGet(t *testing.T) {
	svc := newTestService(t)
	first := createProduct(t, svc, 2, "Paracetamol 500mg")
	createProduct(t, svc, 3, "Ibuprofen 400mg")

	rows, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 products, got %d", len(rows))
	}

	product, err := svc.Get(context.Background(), first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Name != "Paracetamol 500mg" {
		t.Fatalf("unexpected product %q", product.Name)
	}

	if _, err := svc.Get(context.Background(), 999); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	svc := newTestService(t)
	id := createProduct(t, svc, 2, "Omeprazole 20mg")
	newName := "Omeprazole 40mg"

	_, err := svc.Update(context.Background(), 3, enums.RoleDistributor, id, UpdateProductRequest{Name: &newName})
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign distributor, got %v", err)
	}

	updated, err := svc.Update(context.Background(), 2, enums.RoleDistributor, id, UpdateProductRequest{Name: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("expected renamed product, got %q", updated.Name)
	}
}

func TestUpdateAllowsAdmin(t *testing.T) {
	svc := newTestService(t)
	id := createProduct(t, svc, 2, "Metformin 850mg")
	price := decimal.NewFromFloat(6.75)
	stock := 250

	updated, err := svc.Update(context.Background(), 1, enums.RoleAdmin, id, UpdateProductRequest{
		Price:         &price,
		StockQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Price.Equal(price) {
		t.Fatalf("expected price %s, got %s", price, updated.Price)
	}
	if updated.StockQuantity != stock {
		t.Fatalf("expected stock %d, got %d", stock, updated.StockQuantity)
	}
	if updated.DistributorID != 2 {
		t.Fatal("ownership must not change on update")
	}
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	svc := newTestService(t)
	id := createProduct(t, svc, 2, "Insulin Glargine")

	empty := "  "
	if _, err := svc.Update(context.Background(), 2, enums.RoleDistributor, id, UpdateProductRequest{Name: &empty}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	negative := decimal.NewFromInt(-1)
	if _, err := svc.Update(context.Background(), 2, enums.RoleDistributor, id, UpdateProductRequest{Price: &negative}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	badStock := -5
	if _, err := svc.Update(context.Background(), 2, enums.RoleDistributor, id, UpdateProductRequest{StockQuantity: &badStock}); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative stock, got %v", err)
	}
}
