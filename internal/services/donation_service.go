package services

import (
	"context"

	"github.com/google/uuid"

	"colabora/internal/models/db_models"
	"colabora/internal/models/response_models"
	"colabora/internal/repositories"
	"colabora/pkg/utils"
)

// DonationService backs the read-only admin views. Writes go through the reconciler.
type DonationService interface {
	ListDonors(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donor], error)
	GetDonor(ctx context.Context, id uuid.UUID) (*response_models.DonorDetailResponse, error)
	ListDonations(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donation], error)
}

type donationService struct {
	donors    repositories.DonorRepository
	donations repositories.DonationRepository
}

func NewDonationService(donors repositories.DonorRepository, donations repositories.DonationRepository) DonationService {
	return &donationService{donors: donors, donations: donations}
}

func (s *donationService) ListDonors(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donor], error) {
	donors, total, err := s.donors.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	if donors == nil {
		donors = []db_models.Donor{}
	}
	return &response_models.Page[db_models.Donor]{Items: donors, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *donationService) GetDonor(ctx context.Context, id uuid.UUID) (*response_models.DonorDetailResponse, error) {
	donor, err := s.donors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, utils.ErrDonorNotFound
	}

	donations, err := s.donations.ListByDonor(ctx, id)
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []db_models.Donation{}
	}
	return &response_models.DonorDetailResponse{Donor: *donor, Donations: donations}, nil
}

func (s *donationService) ListDonations(ctx context.Context, page, pageSize int) (*response_models.Page[db_models.Donation], error) {
	donations, total, err := s.donations.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []db_models.Donation{}
	}
	return &response_models.Page[db_models.Donation]{Items: donations, Page: page, PageSize: pageSize, Total: total}, nil
}
