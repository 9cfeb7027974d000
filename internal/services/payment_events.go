package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"colabora/internal/models/db_models"
)

// PaymentEvent is the normalized view of anything the payment provider tells
// us, from either the webhook or the client confirmation call. The set of
// implementations is closed.
type PaymentEvent interface {
	Kind() string
	paymentEvent()
}

// DonorInfo is the donor data embedded in provider metadata at checkout time.
type DonorInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

func (d DonorInfo) normalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(d.Email))
}

type OneOffSucceeded struct {
	PaymentRef    string          `json:"payment_ref"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Donor         DonorInfo       `json:"donor"`
}

// CheckoutCompleted is only produced for subscription-mode sessions.
type CheckoutCompleted struct {
	SessionRef      string                `json:"session_ref"`
	SubscriptionRef string                `json:"subscription_ref"`
	Periodicity     db_models.Periodicity `json:"periodicity"`
	Amount          decimal.Decimal       `json:"amount"`
	Donor           DonorInfo             `json:"donor"`
}

type RecurringInvoicePaid struct {
	SubscriptionRef string          `json:"subscription_ref"`
	InvoiceRef      string          `json:"invoice_ref"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	// CustomerEmail is used when no donor carries the subscription yet.
	CustomerEmail string `json:"customer_email"`
}

type SubscriptionCanceled struct {
	SubscriptionRef string `json:"subscription_ref"`
}

type PaymentFailed struct {
	PaymentRef string `json:"payment_ref"`
	Reason     string `json:"reason"`
}

// Unhandled is acknowledged but never mutates the stores.
type Unhandled struct {
	Type string `json:"type"`
}

func (OneOffSucceeded) Kind() string      { return "one_off_succeeded" }
func (CheckoutCompleted) Kind() string    { return "checkout_completed" }
func (RecurringInvoicePaid) Kind() string { return "recurring_invoice_paid" }
func (SubscriptionCanceled) Kind() string { return "subscription_canceled" }
func (PaymentFailed) Kind() string        { return "payment_failed" }
func (Unhandled) Kind() string            { return "unhandled" }

func (OneOffSucceeded) paymentEvent()      {}
func (CheckoutCompleted) paymentEvent()    {}
func (RecurringInvoicePaid) paymentEvent() {}
func (SubscriptionCanceled) paymentEvent() {}
func (PaymentFailed) paymentEvent()        {}
func (Unhandled) paymentEvent()            {}

type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeAlreadyApplied Outcome = "already_applied"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeObserved       Outcome = "observed"
	OutcomeIgnored        Outcome = "ignored"
)

type ReconcileResult struct {
	Outcome  Outcome
	Donation *db_models.Donation
	Donor    *db_models.Donor
}

// minorToAmount converts provider minor units (cents) to a two-decimal amount.
func minorToAmount(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func amountToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
