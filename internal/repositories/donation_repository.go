package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"colabora/internal/models/db_models"
)

type DonationRepository interface {
	FindByReference(ctx context.Context, reference string) (*db_models.Donation, error)
	// Insert fails with utils.ErrStoreConflict when the payment reference already exists.
	Insert(ctx context.Context, donation *db_models.Donation) error
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]db_models.Donation, error)
	List(ctx context.Context, page, pageSize int) ([]db_models.Donation, int64, error)
}

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (d *donationRepository) FindByReference(ctx context.Context, reference string) (*db_models.Donation, error) {
	var donation db_models.Donation
	err := d.db.WithContext(ctx).First(&donation, "provider_payment_reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify("find donation by reference", err)
	}

	return &donation, nil
}

func (d *donationRepository) Insert(ctx context.Context, donation *db_models.Donation) error {
	return classify("insert donation", d.db.WithContext(ctx).Create(donation).Error)
}

func (d *donationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]db_models.Donation, error) {
	var donations []db_models.Donation
	err := d.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, classify("list donations by donor", err)
	}

	return donations, nil
}

func (d *donationRepository) List(ctx context.Context, page, pageSize int) ([]db_models.Donation, int64, error) {
	if err := validatePage(page, pageSize); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&db_models.Donation{}).Count(&total).Error; err != nil {
		return nil, 0, classify("count donations", err)
	}

	var donations []db_models.Donation
	err := d.db.WithContext(ctx).
		Preload("Donor").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donations).Error
	if err != nil {
		return nil, 0, classify("list donations", err)
	}

	return donations, total, nil
}
