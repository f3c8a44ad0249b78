package payments

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
)

// Repository persists check payments.
type Repository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Payment, error)
	ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Payment, error)
	ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	SumPendingByPharmacy(ctx context.Context, pharmacyID uint) (decimal.Decimal, error)
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

func (r *repositoryImpl) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, filter ListFilter) ([]models.Payment, error) {
	return r.list(ctx, r.db.WithContext(ctx), filter)
}

func (r *repositoryImpl) ListByPharmacy(ctx context.Context, pharmacyID uint, filter ListFilter) ([]models.Payment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("pharmacy_id = ?", pharmacyID), filter)
}

func (r *repositoryImpl) ListByDistributor(ctx context.Context, distributorID uint, filter ListFilter) ([]models.Payment, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("distributor_id = ?", distributorID), filter)
}

func (r *repositoryImpl) list(_ context.Context, query *gorm.DB, filter ListFilter) ([]models.Payment, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var rows []models.Payment
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SumPendingByPharmacy totals the pharmacy's outstanding (pending) checks.
func (r *repositoryImpl) SumPendingByPharmacy(ctx context.Context, pharmacyID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("pharmacy_id = ? AND status = ?", pharmacyID, enums.PaymentStatusPending).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
