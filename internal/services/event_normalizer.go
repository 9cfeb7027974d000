package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82/webhook"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
	"colabora/pkg/utils"
)

// EventNormalizer turns provider input from either delivery path into a
// PaymentEvent. Anything that cannot be trusted or decoded is ErrInvalidEvent.
type EventNormalizer interface {
	NormalizeWebhook(payload []byte, signature string) (PaymentEvent, error)
	NormalizeConfirmation(ctx context.Context, ref string) (PaymentEvent, error)
}

type eventNormalizer struct {
	provider      PaymentProvider
	webhookSecret string
	logger        *logger.Logger
}

func NewEventNormalizer(provider PaymentProvider, webhookSecret string, log *logger.Logger) EventNormalizer {
	return &eventNormalizer{
		provider:      provider,
		webhookSecret: webhookSecret,
		logger:        log.With("component", "normalizer"),
	}
}

func (n *eventNormalizer) NormalizeWebhook(payload []byte, signature string) (PaymentEvent, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, fmt.Errorf("missing signature: %w", utils.ErrInvalidEvent)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, n.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w: %v", utils.ErrInvalidEvent, err)
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("webhook %s without data: %w", event.ID, utils.ErrInvalidEvent)
	}

	eventType := string(event.Type)
	n.logger.Debug("webhook verified", "event_id", event.ID, "type", eventType)

	switch eventType {
	case "payment_intent.succeeded":
		var pi ProviderIntent
		if err := decode(event.Data.Raw, &pi, "payment_intent"); err != nil {
			return nil, err
		}
		return succeededIntentEvent(pi, eventType)

	case "payment_intent.payment_failed":
		var pi ProviderIntent
		if err := decode(event.Data.Raw, &pi, "payment_intent"); err != nil {
			return nil, err
		}
		return failedIntentEvent(pi)

	case "checkout.session.completed":
		var cs ProviderSession
		if err := decode(event.Data.Raw, &cs, "checkout.session"); err != nil {
			return nil, err
		}
		return completedSessionEvent(cs, eventType)

	case "invoice.paid", "invoice.payment_succeeded":
		var inv ProviderInvoice
		if err := decode(event.Data.Raw, &inv, "invoice"); err != nil {
			return nil, err
		}
		return paidInvoiceEvent(inv, eventType)

	case "customer.subscription.deleted":
		var sub ProviderSubscription
		if err := decode(event.Data.Raw, &sub, "subscription"); err != nil {
			return nil, err
		}
		if sub.ID == "" {
			return nil, fmt.Errorf("subscription without id: %w", utils.ErrInvalidEvent)
		}
		return SubscriptionCanceled{SubscriptionRef: sub.ID}, nil

	default:
		return Unhandled{Type: eventType}, nil
	}
}

// NormalizeConfirmation fetches the current provider state for a reference
// the client reports as paid. Non-final states map to Unhandled.
func (n *eventNormalizer) NormalizeConfirmation(ctx context.Context, ref string) (PaymentEvent, error) {
	ref = strings.TrimSpace(ref)

	switch {
	case strings.HasPrefix(ref, "pi_"):
		pi, err := n.provider.GetPaymentIntent(ctx, ref)
		if err != nil {
			return nil, err
		}
		switch pi.Status {
		case "succeeded":
			return succeededIntentEvent(*pi, "payment_intent.succeeded")
		case "canceled":
			return failedIntentEvent(*pi)
		case "requires_payment_method":
			if pi.LastPaymentError != nil {
				return failedIntentEvent(*pi)
			}
		}
		return Unhandled{Type: "payment_intent." + pi.Status}, nil

	case strings.HasPrefix(ref, "cs_"):
		cs, err := n.provider.GetCheckoutSession(ctx, ref)
		if err != nil {
			return nil, err
		}
		return completedSessionEvent(*cs, "checkout.session."+cs.Status)

	default:
		return nil, fmt.Errorf("unknown payment reference %q: %w", ref, utils.ErrInvalidEvent)
	}
}

func decode(raw json.RawMessage, dst interface{}, object string) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w: %v", object, utils.ErrInvalidEvent, err)
	}
	return nil
}

// Intents created for subscription invoices carry no one-off marker; the
// invoice path records those charges.
func succeededIntentEvent(pi ProviderIntent, eventType string) (PaymentEvent, error) {
	if pi.Metadata[metaDonationType] != donationTypeOneOff {
		return Unhandled{Type: eventType}, nil
	}
	if pi.ID == "" {
		return nil, fmt.Errorf("payment intent without id: %w", utils.ErrInvalidEvent)
	}

	donor := donorFromMetadata(pi.Metadata, pi.ReceiptEmail)
	if donor.Email == "" {
		return nil, fmt.Errorf("payment intent %s without donor email: %w", pi.ID, utils.ErrInvalidEvent)
	}

	minor := pi.AmountReceived
	if minor <= 0 {
		minor = pi.Amount
	}
	if minor <= 0 {
		return nil, fmt.Errorf("payment intent %s without amount: %w", pi.ID, utils.ErrInvalidEvent)
	}

	method := "card"
	if len(pi.PaymentMethodTypes) > 0 && pi.PaymentMethodTypes[0] != "" {
		method = pi.PaymentMethodTypes[0]
	}

	return OneOffSucceeded{
		PaymentRef:    pi.ID,
		Amount:        minorToAmount(minor),
		PaymentMethod: method,
		Donor:         donor,
	}, nil
}

func failedIntentEvent(pi ProviderIntent) (PaymentEvent, error) {
	if pi.ID == "" {
		return nil, fmt.Errorf("payment intent without id: %w", utils.ErrInvalidEvent)
	}
	reason := pi.CancellationReason
	if pi.LastPaymentError != nil && pi.LastPaymentError.Message != "" {
		reason = pi.LastPaymentError.Message
	}
	if reason == "" {
		reason = pi.Status
	}
	return PaymentFailed{PaymentRef: pi.ID, Reason: reason}, nil
}

func completedSessionEvent(cs ProviderSession, eventType string) (PaymentEvent, error) {
	if cs.Mode != "subscription" || cs.Status != "complete" {
		return Unhandled{Type: eventType}, nil
	}
	if cs.ID == "" || cs.Subscription == "" {
		return nil, fmt.Errorf("checkout session %q without subscription: %w", cs.ID, utils.ErrInvalidEvent)
	}

	periodicity := db_models.Periodicity(cs.Metadata[metaPeriodicity])
	if !periodicity.Recurring() {
		return nil, fmt.Errorf("checkout session %s periodicity %q: %w", cs.ID, periodicity, utils.ErrInvalidEvent)
	}

	fallback := cs.CustomerEmail
	if cs.CustomerDetails != nil && cs.CustomerDetails.Email != "" {
		fallback = cs.CustomerDetails.Email
	}
	donor := donorFromMetadata(cs.Metadata, fallback)
	if donor.Email == "" {
		return nil, fmt.Errorf("checkout session %s without donor email: %w", cs.ID, utils.ErrInvalidEvent)
	}
	if cs.AmountTotal <= 0 {
		return nil, fmt.Errorf("checkout session %s without amount: %w", cs.ID, utils.ErrInvalidEvent)
	}

	return CheckoutCompleted{
		SessionRef:      cs.ID,
		SubscriptionRef: cs.Subscription,
		Periodicity:     periodicity,
		Amount:          minorToAmount(cs.AmountTotal),
		Donor:           donor,
	}, nil
}

// The first invoice of a subscription is the checkout charge itself, already
// recorded under the session reference.
func paidInvoiceEvent(inv ProviderInvoice, eventType string) (PaymentEvent, error) {
	subscriptionID := inv.subscriptionID()
	if subscriptionID == "" || inv.BillingReason == "subscription_create" || inv.AmountPaid <= 0 {
		return Unhandled{Type: eventType}, nil
	}
	if inv.ID == "" {
		return nil, fmt.Errorf("invoice without id: %w", utils.ErrInvalidEvent)
	}

	return RecurringInvoicePaid{
		SubscriptionRef: subscriptionID,
		InvoiceRef:      inv.ID,
		AmountPaid:      minorToAmount(inv.AmountPaid),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(inv.CustomerEmail)),
	}, nil
}
