package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

// Donation is one completed charge: a one-off payment or one occurrence of a
// recurring charge. ProviderPaymentReference is unique across the ledger.
type Donation struct {
	BaseModel
	DonorID                  uuid.UUID       `gorm:"type:uuid;not null;index" json:"donor_id"`
	ProviderPaymentReference string          `gorm:"size:100;not null;uniqueIndex" json:"provider_payment_reference"`
	Amount                   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency                 string          `gorm:"size:3;not null" json:"currency"`
	PaymentMethod            string          `gorm:"size:40" json:"payment_method"`
	ProviderSubscriptionID   *string         `gorm:"size:100;index" json:"provider_subscription_id,omitempty"`
	Periodicity              Periodicity     `gorm:"size:20;not null" json:"periodicity"`
	Status                   DonationStatus  `gorm:"size:20;not null;index" json:"status"`
	Note                     string          `gorm:"type:text" json:"note"`

	// Snapshot of the normalized provider event, for traceability.
	ProviderPayload datatypes.JSON `json:"-"`

	Donor *Donor `gorm:"foreignKey:DonorID" json:"donor,omitempty"`
}
