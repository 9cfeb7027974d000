package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"colabora/internal/models/db_models"
	"colabora/internal/models/request_models"
	"colabora/internal/models/response_models"
	"colabora/pkg/logger"
	mem "colabora/pkg/memcache"
	"colabora/pkg/utils"
)

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, req request_models.CreatePaymentIntentRequest) (*response_models.PaymentIntentResponse, error)
	CreateCheckoutSession(ctx context.Context, req request_models.CreateCheckoutSessionRequest) (*response_models.CheckoutSessionResponse, error)
	Confirm(ctx context.Context, reference string) (*response_models.ConfirmPaymentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*response_models.WebhookAck, error)
}

type paymentService struct {
	provider   PaymentProvider
	normalizer EventNormalizer
	reconciler ReconcilerService
	outcomes   mem.OutcomeStore
	confirmTTL time.Duration
	logger     *logger.Logger
}

func NewPaymentService(
	provider PaymentProvider,
	normalizer EventNormalizer,
	reconciler ReconcilerService,
	outcomes mem.OutcomeStore,
	confirmTTL time.Duration,
	log *logger.Logger,
) PaymentService {
	return &paymentService{
		provider:   provider,
		normalizer: normalizer,
		reconciler: reconciler,
		outcomes:   outcomes,
		confirmTTL: confirmTTL,
		logger:     log.With("component", "payments"),
	}
}

func (p *paymentService) CreatePaymentIntent(ctx context.Context, req request_models.CreatePaymentIntentRequest) (*response_models.PaymentIntentResponse, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	pi, err := p.provider.CreatePaymentIntent(ctx, OneOffCheckout{
		Donor:  donorInfo(req.Donor),
		Amount: req.Amount,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("payment intent created", "reference", pi.ID, "amount", req.Amount.StringFixed(2))
	return &response_models.PaymentIntentResponse{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (p *paymentService) CreateCheckoutSession(ctx context.Context, req request_models.CreateCheckoutSessionRequest) (*response_models.CheckoutSessionResponse, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	periodicity := db_models.Periodicity(req.Periodicity)
	if !periodicity.Recurring() {
		return nil, utils.ErrInvalidPeriodicity
	}

	cs, err := p.provider.CreateSubscriptionCheckout(ctx, RecurringCheckout{
		Donor:       donorInfo(req.Donor),
		Amount:      req.Amount,
		Periodicity: periodicity,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("checkout session created",
		"reference", cs.ID,
		"amount", req.Amount.StringFixed(2),
		"periodicity", periodicity)
	return &response_models.CheckoutSessionResponse{
		Reference:   cs.ID,
		CheckoutURL: cs.URL,
	}, nil
}

// Confirm is the client-driven path: it asks the provider for the current
// state of the reference and reconciles it like a webhook would. Completed
// references are answered from memory for confirmTTL.
func (p *paymentService) Confirm(ctx context.Context, reference string) (*response_models.ConfirmPaymentResponse, error) {
	reference = strings.TrimSpace(reference)
	if status, ok := p.outcomes.Get(reference); ok {
		return &response_models.ConfirmPaymentResponse{Success: true, Status: status}, nil
	}

	event, err := p.normalizer.NormalizeConfirmation(ctx, reference)
	if err != nil {
		return nil, err
	}

	result, err := p.reconciler.Apply(ctx, event)
	if err != nil {
		return nil, err
	}

	p.logger.Info("payment confirmed", "reference", reference, "kind", event.Kind(), "outcome", result.Outcome)
	resp := confirmResponse(result.Outcome)
	// Failed intents can still be retried with another card, so only
	// successes are final.
	if resp.Success {
		p.outcomes.Set(reference, resp.Status, p.confirmTTL)
	}
	return resp, nil
}

func (p *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*response_models.WebhookAck, error) {
	event, err := p.normalizer.NormalizeWebhook(payload, signature)
	if err != nil {
		p.logger.Warn("webhook rejected", "error", err)
		return nil, err
	}

	result, err := p.reconciler.Apply(ctx, event)
	if err != nil {
		p.logger.Error("webhook not reconciled", "kind", event.Kind(), "error", err)
		return nil, err
	}

	return &response_models.WebhookAck{Received: true, Outcome: string(result.Outcome)}, nil
}

func confirmResponse(outcome Outcome) *response_models.ConfirmPaymentResponse {
	switch outcome {
	case OutcomeApplied, OutcomeAlreadyApplied:
		return &response_models.ConfirmPaymentResponse{Success: true, Status: "completed"}
	case OutcomeObserved:
		return &response_models.ConfirmPaymentResponse{Success: false, Status: "failed"}
	case OutcomeNotFound:
		return &response_models.ConfirmPaymentResponse{Success: false, Status: "not_found"}
	default:
		return &response_models.ConfirmPaymentResponse{Success: false, Status: "pending"}
	}
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return utils.ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount %s has more than two decimals: %w", amount, utils.ErrInvalidAmount)
	}
	return nil
}

func donorInfo(d request_models.DonorDetails) DonorInfo {
	return DonorInfo{
		Email:   d.Email,
		Name:    d.Name,
		Surname: d.Surname,
		Phone:   d.Phone,
		Address: d.Address,
		Note:    d.Note,
	}
}
