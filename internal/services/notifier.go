package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
	"colabora/pkg/utils"
)

// Notifier hands donation confirmations to the mail service. Notify must
// never block the caller and never report failure back to it.
type Notifier interface {
	Notify(donor db_models.Donor, donation db_models.Donation)
}

type notification struct {
	to              string
	donation        db_models.Donation
	subscriptionRef *string
}

// AsyncNotifier is a bounded queue drained by a fixed set of workers.
type AsyncNotifier struct {
	mail    IMailService
	logger  *logger.Logger
	queue   chan notification
	workers int

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewAsyncNotifier(mail IMailService, log *logger.Logger, queueSize, workers int) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &AsyncNotifier{
		mail:    mail,
		logger:  log.With("component", "notifier"),
		queue:   make(chan notification, queueSize),
		workers: workers,
	}
}

func (n *AsyncNotifier) Start(ctx context.Context) error {
	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.run()
	}
	n.logger.Info("notifier started", "workers", n.workers, "queue_size", cap(n.queue))
	return nil
}

// Stop closes the queue and waits for pending sends, or for ctx to expire.
func (n *AsyncNotifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return nil
	}
	n.stopped = true
	close(n.queue)
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		n.logger.Info("notifier stopped")
		return nil
	case <-ctx.Done():
		n.logger.Warn("notifier stop timed out", "pending", len(n.queue))
		return ctx.Err()
	}
}

func (n *AsyncNotifier) Notify(donor db_models.Donor, donation db_models.Donation) {
	job := notification{
		to:              donor.Email,
		donation:        donation,
		subscriptionRef: donation.ProviderSubscriptionID,
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		n.logger.Warn("notifier stopped, dropping confirmation", "reference", donation.ProviderPaymentReference)
		return
	}

	select {
	case n.queue <- job:
	default:
		n.logger.Warn("notification queue full, dropping confirmation",
			"reference", donation.ProviderPaymentReference,
			"to", donor.Email)
	}
}

func (n *AsyncNotifier) run() {
	defer n.wg.Done()
	for job := range n.queue {
		n.safeCall(func() { n.send(job) }, job.donation.ProviderPaymentReference)
	}
}

func (n *AsyncNotifier) send(job notification) {
	err := n.mail.SendDonationConfirmation(job.to, job.donation.Amount, job.donation.Periodicity, job.subscriptionRef)
	if err != nil {
		err = fmt.Errorf("%w: %v", utils.ErrNotificationFailed, err)
		n.logger.Error("donation confirmation not sent",
			"reference", job.donation.ProviderPaymentReference,
			"to", job.to,
			"error", err)
		return
	}
	n.logger.Debug("donation confirmation sent", "reference", job.donation.ProviderPaymentReference)
}

// safeCall runs fn with panic recovery so a broken mailer cannot take a worker down.
func (n *AsyncNotifier) safeCall(fn func(), reference string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notification panicked",
				"reference", reference,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
