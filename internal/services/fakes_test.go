package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"colabora/internal/models/db_models"
	"colabora/pkg/utils"
)

// memDonors mimics the unique email index of the real table.
type memDonors struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]db_models.Donor
	updates int
	err     error
}

func newMemDonors() *memDonors {
	return &memDonors{rows: map[uuid.UUID]db_models.Donor{}}
}

func (m *memDonors) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.rows[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (m *memDonors) FindByEmail(ctx context.Context, email string) (*db_models.Donor, error) {
	return m.find(func(d db_models.Donor) bool { return d.Email == email })
}

func (m *memDonors) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*db_models.Donor, error) {
	return m.find(func(d db_models.Donor) bool {
		return d.ProviderSubscriptionID != nil && *d.ProviderSubscriptionID == subscriptionID
	})
}

func (m *memDonors) find(match func(db_models.Donor) bool) (*db_models.Donor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, d := range m.rows {
		if match(d) {
			return &d, nil
		}
	}
	return nil, nil
}

func (m *memDonors) Insert(ctx context.Context, donor *db_models.Donor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, d := range m.rows {
		if d.Email == donor.Email {
			return fmt.Errorf("insert donor: %w", utils.ErrStoreConflict)
		}
	}
	if donor.ID == uuid.Nil {
		donor.ID = uuid.New()
	}
	m.rows[donor.ID] = *donor
	return nil
}

func (m *memDonors) Update(ctx context.Context, id uuid.UUID, patch db_models.DonorPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	d, ok := m.rows[id]
	if !ok {
		return nil
	}
	patch.Apply(&d)
	m.rows[id] = d
	m.updates++
	return nil
}

func (m *memDonors) List(ctx context.Context, page, pageSize int) ([]db_models.Donor, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db_models.Donor, 0, len(m.rows))
	for _, d := range m.rows {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (m *memDonors) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memDonors) snapshot() []db_models.Donor {
	out, _, _ := m.List(context.Background(), 1, 100)
	return out
}

// memDonations mimics the unique payment-reference index.
type memDonations struct {
	mu   sync.Mutex
	rows map[string]db_models.Donation
	err  error
}

func newMemDonations() *memDonations {
	return &memDonations{rows: map[string]db_models.Donation{}}
}

func (m *memDonations) FindByReference(ctx context.Context, reference string) (*db_models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.rows[reference]; ok {
		return &d, nil
	}
	return nil, nil
}

func (m *memDonations) Insert(ctx context.Context, donation *db_models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[donation.ProviderPaymentReference]; ok {
		return fmt.Errorf("insert donation: %w", utils.ErrStoreConflict)
	}
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	m.rows[donation.ProviderPaymentReference] = *donation
	return nil
}

func (m *memDonations) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]db_models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db_models.Donation
	for _, d := range m.rows {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDonations) List(ctx context.Context, page, pageSize int) ([]db_models.Donation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]db_models.Donation, 0, len(m.rows))
	for _, d := range m.rows {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (m *memDonations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []db_models.Donation
}

func (r *recordingNotifier) Notify(donor db_models.Donor, donation db_models.Donation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, donation)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type mockMailService struct {
	mock.Mock
}

func (m *mockMailService) SendDonationConfirmation(to string, amount decimal.Decimal, periodicity db_models.Periodicity, subscriptionRef *string) error {
	args := m.Called(to, amount, periodicity, subscriptionRef)
	return args.Error(0)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) CreatePaymentIntent(ctx context.Context, req OneOffCheckout) (*ProviderIntent, error) {
	args := m.Called(ctx, req)
	pi, _ := args.Get(0).(*ProviderIntent)
	return pi, args.Error(1)
}

func (m *mockPaymentProvider) CreateSubscriptionCheckout(ctx context.Context, req RecurringCheckout) (*ProviderSession, error) {
	args := m.Called(ctx, req)
	cs, _ := args.Get(0).(*ProviderSession)
	return cs, args.Error(1)
}

func (m *mockPaymentProvider) GetPaymentIntent(ctx context.Context, ref string) (*ProviderIntent, error) {
	args := m.Called(ctx, ref)
	pi, _ := args.Get(0).(*ProviderIntent)
	return pi, args.Error(1)
}

func (m *mockPaymentProvider) GetCheckoutSession(ctx context.Context, ref string) (*ProviderSession, error) {
	args := m.Called(ctx, ref)
	cs, _ := args.Get(0).(*ProviderSession)
	return cs, args.Error(1)
}
