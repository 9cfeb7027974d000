package response_models

import "colabora/internal/models/db_models"

type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type DonorDetailResponse struct {
	Donor     db_models.Donor      `json:"donor"`
	Donations []db_models.Donation `json:"donations"`
}
