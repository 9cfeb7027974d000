package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"colabora/internal/models/db_models"
	"colabora/internal/repositories"
	"colabora/pkg/logger"
	"colabora/pkg/utils"
)

// ReconcilerService applies normalized payment events to the donor store and
// the donation ledger. Applying the same event twice leaves the same state as
// applying it once.
type ReconcilerService interface {
	Apply(ctx context.Context, event PaymentEvent) (ReconcileResult, error)
}

type ReconcilerConfig struct {
	Currency string
	Timeout  time.Duration
}

type reconcilerService struct {
	donors    repositories.DonorRepository
	donations repositories.DonationRepository
	notifier  Notifier
	cfg       ReconcilerConfig
	logger    *logger.Logger
	now       func() time.Time
}

func NewReconcilerService(
	donors repositories.DonorRepository,
	donations repositories.DonationRepository,
	notifier Notifier,
	cfg ReconcilerConfig,
	log *logger.Logger,
) ReconcilerService {
	return &reconcilerService{
		donors:    donors,
		donations: donations,
		notifier:  notifier,
		cfg:       cfg,
		logger:    log.With("component", "reconciler"),
		now:       time.Now,
	}
}

// charge is what every money-moving event boils down to.
type charge struct {
	reference    string
	amount       decimal.Decimal
	method       string
	periodicity  db_models.Periodicity
	subscription *string
	event        PaymentEvent
}

func (r *reconcilerService) Apply(ctx context.Context, event PaymentEvent) (ReconcileResult, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	switch e := event.(type) {
	case OneOffSucceeded:
		return r.applyOneOff(ctx, e)
	case CheckoutCompleted:
		return r.applyCheckout(ctx, e)
	case RecurringInvoicePaid:
		return r.applyInvoice(ctx, e)
	case SubscriptionCanceled:
		return r.applyCancellation(ctx, e)
	case PaymentFailed:
		r.logger.Warn("payment failed", "reference", e.PaymentRef, "reason", e.Reason)
		return ReconcileResult{Outcome: OutcomeObserved}, nil
	case Unhandled:
		r.logger.Debug("event ignored", "type", e.Type)
		return ReconcileResult{Outcome: OutcomeIgnored}, nil
	default:
		return ReconcileResult{}, fmt.Errorf("unsupported payment event %T: %w", event, utils.ErrInvalidEvent)
	}
}

func (r *reconcilerService) applyOneOff(ctx context.Context, e OneOffSucceeded) (ReconcileResult, error) {
	c := charge{
		reference:   e.PaymentRef,
		amount:      e.Amount,
		method:      e.PaymentMethod,
		periodicity: db_models.PeriodicityOneOff,
		event:       e,
	}
	if done, err := r.alreadyApplied(ctx, c.reference); err != nil {
		return ReconcileResult{}, err
	} else if done {
		return ReconcileResult{Outcome: OutcomeAlreadyApplied}, nil
	}

	// A one-off gift never downgrades a donor who also gives periodically.
	donor, err := r.donorByEmail(ctx, e.Donor, db_models.DonorPatch{})
	if err != nil {
		return ReconcileResult{}, err
	}
	return r.record(ctx, donor, c)
}

func (r *reconcilerService) applyCheckout(ctx context.Context, e CheckoutCompleted) (ReconcileResult, error) {
	subscription := e.SubscriptionRef
	c := charge{
		reference:    e.SessionRef,
		amount:       e.Amount,
		method:       "card",
		periodicity:  e.Periodicity,
		subscription: &subscription,
		event:        e,
	}
	if done, err := r.alreadyApplied(ctx, c.reference); err != nil {
		return ReconcileResult{}, err
	} else if done {
		return ReconcileResult{Outcome: OutcomeAlreadyApplied}, nil
	}

	periodicity := e.Periodicity
	donor, err := r.donorByEmail(ctx, e.Donor, db_models.DonorPatch{
		Periodicity:            &periodicity,
		ProviderSubscriptionID: &subscription,
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return r.record(ctx, donor, c)
}

func (r *reconcilerService) applyInvoice(ctx context.Context, e RecurringInvoicePaid) (ReconcileResult, error) {
	if done, err := r.alreadyApplied(ctx, e.InvoiceRef); err != nil {
		return ReconcileResult{}, err
	} else if done {
		return ReconcileResult{Outcome: OutcomeAlreadyApplied}, nil
	}

	donor, err := r.donors.FindBySubscriptionID(ctx, e.SubscriptionRef)
	if err != nil {
		return ReconcileResult{}, err
	}
	if donor == nil && e.CustomerEmail != "" {
		// Either the checkout webhook has not arrived yet or the subscription
		// was already canceled. The email still owns the charge, but only
		// CheckoutCompleted attaches a subscription to the donor.
		donor, err = r.donors.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(e.CustomerEmail)))
		if err != nil {
			return ReconcileResult{}, err
		}
	}
	if donor == nil {
		r.logger.Warn("invoice for unknown subscription",
			"invoice", e.InvoiceRef,
			"subscription", e.SubscriptionRef)
		return ReconcileResult{Outcome: OutcomeNotFound}, nil
	}

	subscription := e.SubscriptionRef
	periodicity := donor.Periodicity
	if !periodicity.Recurring() {
		periodicity = db_models.PeriodicityMonthly
	}
	return r.record(ctx, donor, charge{
		reference:    e.InvoiceRef,
		amount:       e.AmountPaid,
		method:       "card",
		periodicity:  periodicity,
		subscription: &subscription,
		event:        e,
	})
}

func (r *reconcilerService) applyCancellation(ctx context.Context, e SubscriptionCanceled) (ReconcileResult, error) {
	donor, err := r.donors.FindBySubscriptionID(ctx, e.SubscriptionRef)
	if err != nil {
		return ReconcileResult{}, err
	}
	if donor == nil {
		r.logger.Info("cancellation for unknown subscription", "subscription", e.SubscriptionRef)
		return ReconcileResult{Outcome: OutcomeNotFound}, nil
	}

	note := appendNote(donor.Note, fmt.Sprintf("[suscripción %s cancelada el %s]",
		e.SubscriptionRef, utils.FormatOrgDate(r.now())))
	err = r.patchDonor(ctx, donor, db_models.DonorPatch{ClearSubscription: true, Note: &note})
	if err != nil {
		return ReconcileResult{}, err
	}

	r.logger.Info("subscription canceled", "donor_id", donor.ID, "subscription", e.SubscriptionRef)
	return ReconcileResult{Outcome: OutcomeApplied, Donor: donor}, nil
}

func (r *reconcilerService) alreadyApplied(ctx context.Context, reference string) (bool, error) {
	existing, err := r.donations.FindByReference(ctx, reference)
	if err != nil {
		return false, err
	}
	if existing != nil {
		r.logger.Debug("donation already recorded", "reference", reference)
		return true, nil
	}
	return false, nil
}

// donorByEmail finds or creates the donor for an email and applies the patch
// to whichever row ends up owning it.
func (r *reconcilerService) donorByEmail(ctx context.Context, info DonorInfo, patch db_models.DonorPatch) (*db_models.Donor, error) {
	email := info.normalizedEmail()
	if email == "" {
		return nil, fmt.Errorf("donor without email: %w", utils.ErrInvalidEvent)
	}

	donor, err := r.donors.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if donor == nil {
		candidate := &db_models.Donor{
			Email:       email,
			Name:        strings.TrimSpace(info.Name),
			Surname:     strings.TrimSpace(info.Surname),
			Phone:       strings.TrimSpace(info.Phone),
			Address:     strings.TrimSpace(info.Address),
			Note:        strings.TrimSpace(info.Note),
			Periodicity: db_models.PeriodicityOneOff,
		}
		patch.Apply(candidate)

		err = r.donors.Insert(ctx, candidate)
		switch {
		case err == nil:
			r.logger.Info("donor created", "donor_id", candidate.ID, "email", email)
			return candidate, nil
		case errors.Is(err, utils.ErrStoreConflict):
			// Another request created the donor first; use its row.
			donor, err = r.donors.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if donor == nil {
				return nil, fmt.Errorf("donor %s missing after conflict: %w", email, utils.ErrStoreUnavailable)
			}
		default:
			return nil, err
		}
	}

	if err := r.patchDonor(ctx, donor, patch); err != nil {
		return nil, err
	}
	return donor, nil
}

// patchDonor drops fields that already hold the target value, then writes the rest.
func (r *reconcilerService) patchDonor(ctx context.Context, donor *db_models.Donor, patch db_models.DonorPatch) error {
	if patch.Periodicity != nil && *patch.Periodicity == donor.Periodicity {
		patch.Periodicity = nil
	}
	if patch.ProviderSubscriptionID != nil && donor.ProviderSubscriptionID != nil &&
		*patch.ProviderSubscriptionID == *donor.ProviderSubscriptionID {
		patch.ProviderSubscriptionID = nil
	}
	if patch.Empty() {
		return nil
	}

	if err := r.donors.Update(ctx, donor.ID, patch); err != nil {
		return err
	}
	patch.Apply(donor)
	return nil
}

func (r *reconcilerService) record(ctx context.Context, donor *db_models.Donor, c charge) (ReconcileResult, error) {
	if !c.amount.IsPositive() {
		return ReconcileResult{}, fmt.Errorf("charge %s amount %s: %w", c.reference, c.amount, utils.ErrInvalidEvent)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"kind":  c.event.Kind(),
		"event": c.event,
	})
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("snapshot event %s: %w", c.reference, err)
	}

	donation := &db_models.Donation{
		DonorID:                  donor.ID,
		ProviderPaymentReference: c.reference,
		Amount:                   c.amount,
		Currency:                 strings.ToUpper(r.cfg.Currency),
		PaymentMethod:            c.method,
		ProviderSubscriptionID:   c.subscription,
		Periodicity:              c.periodicity,
		Status:                   db_models.DonationStatusCompleted,
		ProviderPayload:          payload,
	}

	if err := r.donations.Insert(ctx, donation); err != nil {
		if errors.Is(err, utils.ErrStoreConflict) {
			r.logger.Info("donation recorded concurrently", "reference", c.reference)
			return ReconcileResult{Outcome: OutcomeAlreadyApplied}, nil
		}
		return ReconcileResult{}, err
	}

	r.logger.Info("donation applied",
		"reference", c.reference,
		"donor_id", donor.ID,
		"amount", c.amount.StringFixed(2),
		"periodicity", c.periodicity)

	r.notifier.Notify(*donor, *donation)

	return ReconcileResult{Outcome: OutcomeApplied, Donation: donation, Donor: donor}, nil
}

func appendNote(note, marker string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return marker
	}
	return note + "\n" + marker
}
