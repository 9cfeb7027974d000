package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colabora/internal/models/request_models"
	"colabora/internal/models/response_models"
	"colabora/pkg/utils"
)

type fakePaymentService struct {
	webhookErr    error
	confirmErr    error
	gotSignature  string
	gotPayload    []byte
	gotReference  string
	confirmResult *response_models.ConfirmPaymentResponse
}

func (f *fakePaymentService) CreatePaymentIntent(ctx context.Context, req request_models.CreatePaymentIntentRequest) (*response_models.PaymentIntentResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}
	return &response_models.PaymentIntentResponse{Reference: "pi_1", ClientSecret: "secret"}, nil
}

func (f *fakePaymentService) CreateCheckoutSession(ctx context.Context, req request_models.CreateCheckoutSessionRequest) (*response_models.CheckoutSessionResponse, error) {
	return &response_models.CheckoutSessionResponse{Reference: "cs_1", CheckoutURL: "https://checkout"}, nil
}

func (f *fakePaymentService) Confirm(ctx context.Context, reference string) (*response_models.ConfirmPaymentResponse, error) {
	f.gotReference = reference
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.confirmResult, nil
}

func (f *fakePaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*response_models.WebhookAck, error) {
	f.gotPayload = payload
	f.gotSignature = signature
	if f.webhookErr != nil {
		return nil, f.webhookErr
	}
	return &response_models.WebhookAck{Received: true, Outcome: "applied"}, nil
}

func newPaymentRouter(svc *fakePaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewPaymentController(svc)
	r.POST("/api/donations/payment-intent", ctrl.CreatePaymentIntent)
	r.POST("/api/donations/checkout-session", ctrl.CreateCheckoutSession)
	r.POST("/api/donations/confirm", ctrl.Confirm)
	r.POST("/api/webhooks/stripe", ctrl.HandleWebhook)
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleWebhookStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"applied", nil, http.StatusOK},
		{"bad signature", fmt.Errorf("verify webhook: %w", utils.ErrInvalidEvent), http.StatusBadRequest},
		{"store down", fmt.Errorf("find donation: %w", utils.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePaymentService{webhookErr: tt.err}
			r := newPaymentRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "t=1,v1=abc", svc.gotSignature)
			assert.JSONEq(t, `{"id":"evt_1"}`, string(svc.gotPayload))
		})
	}
}

func TestHandleWebhookRejectsOversizedBody(t *testing.T) {
	svc := &fakePaymentService{}
	r := newPaymentRouter(svc)

	body := bytes.Repeat([]byte("a"), webhookBodyLimit+1)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Nil(t, svc.gotPayload)
}

func TestConfirm(t *testing.T) {
	svc := &fakePaymentService{confirmResult: &response_models.ConfirmPaymentResponse{Success: true, Status: "completed"}}
	r := newPaymentRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/donations/confirm", strings.NewReader(`{"reference":"pi_1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pi_1", svc.gotReference)
	resp := decodeResponse(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, map[string]interface{}{"success": true, "status": "completed"}, resp.Data)
}

func TestConfirmErrors(t *testing.T) {
	r := newPaymentRouter(&fakePaymentService{})
	req := httptest.NewRequest(http.MethodPost, "/api/donations/confirm", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = newPaymentRouter(&fakePaymentService{confirmErr: fmt.Errorf("get payment intent: %w", utils.ErrPaymentProvider)})
	req = httptest.NewRequest(http.MethodPost, "/api/donations/confirm", strings.NewReader(`{"reference":"pi_1"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCreatePaymentIntentEndpoint(t *testing.T) {
	r := newPaymentRouter(&fakePaymentService{})

	body := `{"donor":{"email":"a@x.com","name":"Ana"},"amount":"25.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/payment-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"reference": "pi_1", "client_secret": "secret"}, decodeResponse(t, w).Data)

	body = `{"donor":{"email":"not-an-email","name":"Ana"},"amount":"25.00"}`
	req = httptest.NewRequest(http.MethodPost, "/api/donations/payment-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = `{"donor":{"email":"a@x.com","name":"Ana"},"amount":"0"}`
	req = httptest.NewRequest(http.MethodPost, "/api/donations/payment-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckoutSessionRejectsUnknownPeriodicity(t *testing.T) {
	r := newPaymentRouter(&fakePaymentService{})

	body := `{"donor":{"email":"a@x.com","name":"Ana"},"amount":"10","periodicity":"weekly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/donations/checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
