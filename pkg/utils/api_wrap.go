package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// HandleServiceError maps service errors onto HTTP statuses. Webhook callers
// rely on 4xx for deliveries that must not be retried as-is and 5xx for
// deliveries the provider should retry later. The error is attached to the
// gin context so the request logger records it.
func HandleServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, ErrInvalidEvent):
		RespondError(c, http.StatusBadRequest, "Invalid payment event")
	case errors.Is(err, ErrInvalidPage):
		RespondError(c, http.StatusBadRequest, "Page must be greater than 0")
	case errors.Is(err, ErrInvalidPageSize):
		RespondError(c, http.StatusBadRequest, "Page size must be between 1 and 100")
	case errors.Is(err, ErrInvalidPeriodicity):
		RespondError(c, http.StatusBadRequest, "Unsupported periodicity")
	case errors.Is(err, ErrInvalidAmount):
		RespondError(c, http.StatusBadRequest, "Amount must be greater than 0")
	case errors.Is(err, ErrDonorNotFound):
		RespondError(c, http.StatusNotFound, "Donor not found")
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already exists")
	case errors.Is(err, ErrStoreUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "Temporarily unavailable, retry later")
	case errors.Is(err, ErrPaymentProvider):
		RespondError(c, http.StatusBadGateway, "Payment provider error")
	default:
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
