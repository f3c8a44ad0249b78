package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db/models"
)

// Repository persists orders with their line items.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Order, error)
	ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Order, error)
	ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
	WithTx(tx *gorm.DB) Repository
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	return r.list(r.db.WithContext(ctx), filter)
}

func (r *repositoryImpl) ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Order, error) {
	return r.list(r.db.WithContext(ctx).Where("pharmacy_id = ?", pharmacyID), filter)
}

func (r *repositoryImpl) ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Order, error) {
	return r.list(r.db.WithContext(ctx).Where("distributor_id = ?", distributorID), filter)
}

func (r *repositoryImpl) list(query *gorm.DB, filter ListFilter) ([]models.Order, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.Order
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus persists status and timestamp changes only; items are
// immutable once the order exists.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		}).Error
}
