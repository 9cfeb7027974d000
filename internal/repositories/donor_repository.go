package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colabora/internal/models/db_models"
)

type DonorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Donor, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Donor, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*db_models.Donor, error)
	// Insert fails with utils.ErrStoreConflict when the email already exists.
	Insert(ctx context.Context, donor *db_models.Donor) error
	Update(ctx context.Context, id uuid.UUID, patch db_models.DonorPatch) error
	List(ctx context.Context, page, pageSize int) ([]db_models.Donor, int64, error)
}

type donorRepository struct {
	db *gorm.DB
}

func NewDonorRepository(db *gorm.DB) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Donor, error) {
	return r.first(ctx, "find donor by id", "id = ?", id)
}

func (r *donorRepository) FindByEmail(ctx context.Context, email string) (*db_models.Donor, error) {
	return r.first(ctx, "find donor by email", "email = ?", email)
}

func (r *donorRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*db_models.Donor, error) {
	return r.first(ctx, "find donor by subscription", "provider_subscription_id = ?", subscriptionID)
}

func (r *donorRepository) first(ctx context.Context, op string, query string, args ...interface{}) (*db_models.Donor, error) {
	var donor db_models.Donor
	err := r.db.WithContext(ctx).Where(query, args...).First(&donor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(op, err)
	}

	return &donor, nil
}

func (r *donorRepository) Insert(ctx context.Context, donor *db_models.Donor) error {
	return classify("insert donor", r.db.WithContext(ctx).Create(donor).Error)
}

func (r *donorRepository) Update(ctx context.Context, id uuid.UUID, patch db_models.DonorPatch) error {
	if patch.Empty() {
		return nil
	}

	updates := map[string]interface{}{}
	if patch.Periodicity != nil {
		updates["periodicity"] = *patch.Periodicity
	}
	if patch.ClearSubscription {
		updates["provider_subscription_id"] = nil
	} else if patch.ProviderSubscriptionID != nil {
		updates["provider_subscription_id"] = *patch.ProviderSubscriptionID
	}
	if patch.Note != nil {
		updates["note"] = *patch.Note
	}

	err := r.db.WithContext(ctx).
		Model(&db_models.Donor{BaseModel: db_models.BaseModel{ID: id}}).
		Updates(updates).Error
	return classify("update donor", err)
}

func (r *donorRepository) List(ctx context.Context, page, pageSize int) ([]db_models.Donor, int64, error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&db_models.Donor{}).Count(&total).Error; err != nil {
		return nil, 0, classify("count donors", err)
	}

	var donors []db_models.Donor
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donors).Error
	if err != nil {
		return nil, 0, classify("list donors", err)
	}

	return donors, total, nil
}
