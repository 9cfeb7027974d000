package db_models

// Donor is a person who has given money at least once ("colaborador").
// Email is the natural key shared by every payment path.
type Donor struct {
	BaseModel
	Email                  string      `gorm:"size:320;not null;uniqueIndex" json:"email"`
	Name                   string      `gorm:"size:120" json:"name"`
	Surname                string      `gorm:"size:160" json:"surname"`
	Phone                  string      `gorm:"size:40" json:"phone"`
	Address                string      `gorm:"size:255" json:"address"`
	Note                   string      `gorm:"type:text" json:"note"`
	Periodicity            Periodicity `gorm:"size:20;not null;default:'one_off'" json:"periodicity"`
	ProviderSubscriptionID *string     `gorm:"size:100;index" json:"provider_subscription_id,omitempty"`

	Donations []Donation `gorm:"foreignKey:DonorID" json:"-"`
}

// DonorPatch lists the donor fields the reconciler may change. Nil means untouched;
// ClearSubscription wins over ProviderSubscriptionID.
type DonorPatch struct {
	Periodicity            *Periodicity
	ProviderSubscriptionID *string
	ClearSubscription      bool
	Note                   *string
}

func (p DonorPatch) Empty() bool {
	return p.Periodicity == nil && p.ProviderSubscriptionID == nil && !p.ClearSubscription && p.Note == nil
}

// Apply mirrors the patch onto an in-memory donor.
func (p DonorPatch) Apply(d *Donor) {
	if p.Periodicity != nil {
		d.Periodicity = *p.Periodicity
	}
	if p.ClearSubscription {
		d.ProviderSubscriptionID = nil
	} else if p.ProviderSubscriptionID != nil {
		sub := *p.ProviderSubscriptionID
		d.ProviderSubscriptionID = &sub
	}
	if p.Note != nil {
		d.Note = *p.Note
	}
}
