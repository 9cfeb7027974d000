package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"colabora/internal/models/db_models"
	"colabora/pkg/utils"
)

// PaymentProvider is the slice of the payment processor the service uses.
// Reads return the same minimal views the webhook payloads decode into.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, req OneOffCheckout) (*ProviderIntent, error)
	CreateSubscriptionCheckout(ctx context.Context, req RecurringCheckout) (*ProviderSession, error)
	GetPaymentIntent(ctx context.Context, ref string) (*ProviderIntent, error)
	GetCheckoutSession(ctx context.Context, ref string) (*ProviderSession, error)
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type OneOffCheckout struct {
	Donor  DonorInfo
	Amount decimal.Decimal
}

type RecurringCheckout struct {
	Donor       DonorInfo
	Amount      decimal.Decimal
	Periodicity db_models.Periodicity
}

// Metadata keys written at checkout and read back by the normalizer.
const (
	metaDonationType = "donation_type"
	metaPeriodicity  = "periodicity"
	metaEmail        = "donor_email"
	metaName         = "donor_name"
	metaSurname      = "donor_surname"
	metaPhone        = "donor_phone"
	metaAddress      = "donor_address"
	metaNote         = "donor_note"

	donationTypeOneOff    = "one_off"
	donationTypeRecurring = "recurring"

	// Stripe rejects metadata values longer than this.
	maxMetadataValue = 500
)

// ------------------- Provider views -------------------

type ProviderIntent struct {
	ID                 string                `json:"id"`
	Status             string                `json:"status"`
	Amount             int64                 `json:"amount"`
	AmountReceived     int64                 `json:"amount_received"`
	Currency           string                `json:"currency"`
	ClientSecret       string                `json:"client_secret"`
	ReceiptEmail       string                `json:"receipt_email"`
	PaymentMethodTypes []string              `json:"payment_method_types"`
	Metadata           map[string]string     `json:"metadata"`
	LastPaymentError   *ProviderPaymentError `json:"last_payment_error"`
	CancellationReason string                `json:"cancellation_reason"`
}

type ProviderPaymentError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ProviderSession struct {
	ID              string                   `json:"id"`
	URL             string                   `json:"url"`
	Mode            string                   `json:"mode"`
	Status          string                   `json:"status"`
	PaymentStatus   string                   `json:"payment_status"`
	AmountTotal     int64                    `json:"amount_total"`
	Currency        string                   `json:"currency"`
	Subscription    string                   `json:"subscription"`
	CustomerEmail   string                   `json:"customer_email"`
	CustomerDetails *ProviderCustomerDetails `json:"customer_details"`
	Metadata        map[string]string        `json:"metadata"`
}

type ProviderCustomerDetails struct {
	Email string `json:"email"`
}

type ProviderInvoice struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	BillingReason string `json:"billing_reason"`
	AmountPaid    int64  `json:"amount_paid"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	Subscription  string `json:"subscription"`
	Parent        *struct {
		SubscriptionDetails *struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// subscriptionID covers both invoice layouts: the legacy top-level field and
// parent.subscription_details introduced with newer API versions.
func (i ProviderInvoice) subscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Subscription
	}
	return ""
}

type ProviderSubscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ------------------- Stripe adapter -------------------

type stripeProvider struct {
	sc  *client.API
	cfg StripeConfig
}

func NewStripeProvider(cfg StripeConfig) PaymentProvider {
	return &stripeProvider{
		sc:  client.New(cfg.SecretKey, nil),
		cfg: cfg,
	}
}

func (s *stripeProvider) CreatePaymentIntent(ctx context.Context, req OneOffCheckout) (*ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(amountToMinor(req.Amount)),
		Currency:     stripe.String(s.cfg.Currency),
		ReceiptEmail: stripe.String(req.Donor.normalizedEmail()),
		Description:  stripe.String("Donación puntual"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range donorMetadata(req.Donor, db_models.PeriodicityOneOff, donationTypeOneOff) {
		params.AddMetadata(k, v)
	}

	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, providerError("create payment intent", err)
	}
	return intentView(pi), nil
}

func (s *stripeProvider) CreateSubscriptionCheckout(ctx context.Context, req RecurringCheckout) (*ProviderSession, error) {
	metadata := donorMetadata(req.Donor, req.Periodicity, donationTypeRecurring)

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:    stripe.String(withSessionPlaceholder(s.cfg.SuccessURL)),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		CustomerEmail: stripe.String(req.Donor.normalizedEmail()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(amountToMinor(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Donación %s", periodicityLabels[req.Periodicity])),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval:      stripe.String(string(stripe.PriceRecurringIntervalMonth)),
						IntervalCount: stripe.Int64(req.Periodicity.IntervalMonths()),
					},
				},
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cs, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerError("create checkout session", err)
	}
	return sessionView(cs), nil
}

func (s *stripeProvider) GetPaymentIntent(ctx context.Context, ref string) (*ProviderIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.sc.PaymentIntents.Get(ref, params)
	if err != nil {
		return nil, providerError("get payment intent", err)
	}
	return intentView(pi), nil
}

func (s *stripeProvider) GetCheckoutSession(ctx context.Context, ref string) (*ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := s.sc.CheckoutSessions.Get(ref, params)
	if err != nil {
		return nil, providerError("get checkout session", err)
	}
	return sessionView(cs), nil
}

func intentView(pi *stripe.PaymentIntent) *ProviderIntent {
	view := &ProviderIntent{
		ID:                 pi.ID,
		Status:             string(pi.Status),
		Amount:             pi.Amount,
		AmountReceived:     pi.AmountReceived,
		Currency:           string(pi.Currency),
		ClientSecret:       pi.ClientSecret,
		ReceiptEmail:       pi.ReceiptEmail,
		PaymentMethodTypes: pi.PaymentMethodTypes,
		Metadata:           pi.Metadata,
		CancellationReason: string(pi.CancellationReason),
	}
	if pi.LastPaymentError != nil {
		view.LastPaymentError = &ProviderPaymentError{
			Message: pi.LastPaymentError.Msg,
			Code:    string(pi.LastPaymentError.Code),
		}
	}
	return view
}

func sessionView(cs *stripe.CheckoutSession) *ProviderSession {
	view := &ProviderSession{
		ID:            cs.ID,
		URL:           cs.URL,
		Mode:          string(cs.Mode),
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		CustomerEmail: cs.CustomerEmail,
		Metadata:      cs.Metadata,
	}
	if cs.Subscription != nil {
		view.Subscription = cs.Subscription.ID
	}
	if cs.CustomerDetails != nil {
		view.CustomerDetails = &ProviderCustomerDetails{Email: cs.CustomerDetails.Email}
	}
	return view
}

// providerError keeps "no such object" apart from transport failures: the
// first is the caller's fault, the second is worth retrying.
func providerError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %v", op, utils.ErrInvalidEvent, err)
	}
	return fmt.Errorf("%s: %w: %v", op, utils.ErrPaymentProvider, err)
}

func withSessionPlaceholder(successURL string) string {
	sep := "?"
	if strings.Contains(successURL, "?") {
		sep = "&"
	}
	return successURL + sep + "session_id={CHECKOUT_SESSION_ID}"
}

// ------------------- Metadata -------------------

func donorMetadata(d DonorInfo, periodicity db_models.Periodicity, donationType string) map[string]string {
	md := map[string]string{
		metaDonationType: donationType,
		metaPeriodicity:  string(periodicity),
		metaEmail:        d.normalizedEmail(),
	}
	optional := map[string]string{
		metaName:    d.Name,
		metaSurname: d.Surname,
		metaPhone:   d.Phone,
		metaAddress: d.Address,
		metaNote:    d.Note,
	}
	for k, v := range optional {
		if v = strings.TrimSpace(v); v != "" {
			md[k] = truncate(v, maxMetadataValue)
		}
	}
	return md
}

// donorFromMetadata rebuilds DonorInfo; fallbackEmail covers sessions and
// intents where only the provider-side email is known.
func donorFromMetadata(md map[string]string, fallbackEmail string) DonorInfo {
	email := md[metaEmail]
	if strings.TrimSpace(email) == "" {
		email = fallbackEmail
	}
	return DonorInfo{
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Name:    md[metaName],
		Surname: md[metaSurname],
		Phone:   md[metaPhone],
		Address: md[metaAddress],
		Note:    md[metaNote],
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
