package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"colabora/internal/models/db_models"
	"colabora/pkg/logger"
)

func testDonation(ref string) db_models.Donation {
	return db_models.Donation{
		ProviderPaymentReference: ref,
		Amount:                   decimal.RequireFromString("10.00"),
		Periodicity:              db_models.PeriodicityOneOff,
	}
}

func TestAsyncNotifierDeliversAndDrainsOnStop(t *testing.T) {
	mail := &mockMailService{}
	mail.On("SendDonationConfirmation", "a@x.com", mock.Anything, db_models.PeriodicityOneOff, mock.Anything).Return(nil)

	n := NewAsyncNotifier(mail, logger.NewNop(), 8, 2)
	require.NoError(t, n.Start(context.Background()))

	for _, ref := range []string{"pi_1", "pi_2", "pi_3"} {
		n.Notify(db_models.Donor{Email: "a@x.com"}, testDonation(ref))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, n.Stop(ctx))

	mail.AssertNumberOfCalls(t, "SendDonationConfirmation", 3)
}

func TestAsyncNotifierDropsWhenQueueFull(t *testing.T) {
	release := make(chan struct{})
	mail := &mockMailService{}
	mail.On("SendDonationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	n := NewAsyncNotifier(mail, logger.NewNop(), 1, 1)

	// Not started yet: the first job fills the queue, the rest are dropped
	// without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			n.Notify(db_models.Donor{Email: "a@x.com"}, testDonation("pi_full"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	require.NoError(t, n.Start(context.Background()))
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, n.Stop(ctx))

	mail.AssertNumberOfCalls(t, "SendDonationConfirmation", 1)
}

func TestAsyncNotifierIgnoresNotifyAfterStop(t *testing.T) {
	mail := &mockMailService{}
	n := NewAsyncNotifier(mail, logger.NewNop(), 4, 1)
	require.NoError(t, n.Start(context.Background()))
	require.NoError(t, n.Stop(context.Background()))

	assert.NotPanics(t, func() {
		n.Notify(db_models.Donor{Email: "late@x.com"}, testDonation("pi_late"))
	})
	// A second Stop is a no-op.
	assert.NoError(t, n.Stop(context.Background()))
	mail.AssertNotCalled(t, "SendDonationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAsyncNotifierStopHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	mail := &mockMailService{}
	mail.On("SendDonationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-block }).
		Return(nil)

	n := NewAsyncNotifier(mail, logger.NewNop(), 1, 1)
	require.NoError(t, n.Start(context.Background()))
	n.Notify(db_models.Donor{Email: "slow@x.com"}, testDonation("pi_slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Stop(ctx), context.DeadlineExceeded)
}
