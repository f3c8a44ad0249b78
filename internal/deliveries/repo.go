package deliveries

import (
	"context"

	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db/models"
)

// Repository persists deliveries.
type Repository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	FindByID(ctx context.Context, id uint) (*models.Delivery, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Delivery, error)
	ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Delivery, error)
	ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Delivery, error)
	Update(ctx context.Context, delivery *models.Delivery) error
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

func (r *repositoryImpl) Create(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, filter ListFilter) ([]models.Delivery, error) {
	return r.list(r.db.WithContext(ctx), filter)
}

func (r *repositoryImpl) ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Delivery, error) {
	return r.list(r.db.WithContext(ctx).Where("pharmacy_id = ?", pharmacyID), filter)
}

func (r *repositoryImpl) ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Delivery, error) {
	return r.list(r.db.WithContext(ctx).Where("distributor_id = ?", distributorID), filter)
}

func (r *repositoryImpl) list(query *gorm.DB, filter ListFilter) ([]models.Delivery, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.Delivery
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, delivery *models.Delivery) error {
	return r.db.WithContext(ctx).Save(delivery).Error
}
