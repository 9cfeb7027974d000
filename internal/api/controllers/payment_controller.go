package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"colabora/internal/models/request_models"
	"colabora/internal/services"
	"colabora/pkg/utils"
)

const webhookBodyLimit = 1 << 20 // 1MiB

type PaymentController struct {
	paymentService services.PaymentService
}

func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// CreatePaymentIntent godoc
// @Summary Start a one-off donation
// @Description Create a payment intent carrying the donor details; the client confirms it with the returned secret
// @Tags Donations
// @Accept json
// @Produce json
// @Param request body request_models.CreatePaymentIntentRequest true "One-off donation"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /api/donations/payment-intent [post]
func (p *PaymentController) CreatePaymentIntent(c *gin.Context) {
	var request request_models.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := p.paymentService.CreatePaymentIntent(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "Payment intent created successfully")
}

// CreateCheckoutSession godoc
// @Summary Start a recurring donation
// @Description Create a subscription checkout session (monthly, quarterly, semiannual or annual)
// @Tags Donations
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutSessionRequest true "Recurring donation"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /api/donations/checkout-session [post]
func (p *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var request request_models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := p.paymentService.CreateCheckoutSession(c.Request.Context(), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "Checkout session created successfully")
}

// Confirm godoc
// @Summary Confirm a donation
// @Description Reconcile a payment intent (pi_) or checkout session (cs_) the client reports as finished
// @Tags Donations
// @Accept json
// @Produce json
// @Param request body request_models.ConfirmPaymentRequest true "Payment reference"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /api/donations/confirm [post]
func (p *PaymentController) Confirm(c *gin.Context) {
	var request request_models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := p.paymentService.Confirm(c.Request.Context(), request.Reference)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "Payment status resolved")
}

// HandleWebhook receives provider events. 4xx tells the provider the delivery
// is unusable, 5xx asks it to retry later.
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(c, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		utils.RespondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	ack, err := p.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ack, "Webhook processed")
}
