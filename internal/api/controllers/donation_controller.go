package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"colabora/internal/models/request_models"
	"colabora/internal/services"
	"colabora/pkg/utils"
)

type DonationController struct {
	donationService services.DonationService
}

func NewDonationController(donationService services.DonationService) *DonationController {
	return &DonationController{
		donationService: donationService,
	}
}

// ListDonors godoc
// @Summary List donors
// @Tags Admin
// @Produce json
// @Param page      query int false "Page (default 1)"
// @Param page_size query int false "Page size, 1-100 (default 20)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/donors [get]
func (d *DonationController) ListDonors(c *gin.Context) {
	var q request_models.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := d.donationService.ListDonors(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, page, "Donors fetched successfully")
}

// GetDonorDonations godoc
// @Summary Get a donor with their donations
// @Tags Admin
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/donors/{id}/donations [get]
func (d *DonationController) GetDonorDonations(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid donor id")
		return
	}

	detail, err := d.donationService.GetDonor(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, detail, "Donor fetched successfully")
}

// ListDonations godoc
// @Summary List the donation ledger
// @Tags Admin
// @Produce json
// @Param page      query int false "Page (default 1)"
// @Param page_size query int false "Page size, 1-100 (default 20)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/admin/donations [get]
func (d *DonationController) ListDonations(c *gin.Context) {
	var q request_models.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	page, err := d.donationService.ListDonations(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, page, "Donations fetched successfully")
}
