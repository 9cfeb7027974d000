package response_models

import (
	"time"

	"github.com/shopspring/decimal"

	"colabora/internal/models/db_models"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalDonors     int64 `json:"total_donors"`
	NewDonors       int64 `json:"new_donors"`
	RecurringDonors int64 `json:"recurring_donors"`
	Donations       int64 `json:"donations"`

	Raised          decimal.Decimal `json:"raised"`
	AverageDonation decimal.Decimal `json:"average_donation"`
	// Recurring commitments normalized to one month / one year.
	MonthlyRecurring decimal.Decimal `json:"monthly_recurring"`
	AnnualRecurring  decimal.Decimal `json:"annual_recurring"`
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

type RevenueSeries struct {
	Currency string          `json:"currency"`
	Points   []SeriesPoint   `json:"points"`
	Total    decimal.Decimal `json:"total"`
}

type PeriodicityMixItem struct {
	Periodicity db_models.Periodicity `json:"periodicity"`
	Count       int64                 `json:"count"`
	Total       decimal.Decimal       `json:"total"`
	Percent     float64               `json:"percent"`
}

type DashboardReport struct {
	Range           TimeRange            `json:"range"`
	Currency        string               `json:"currency"`
	KPIs            KPIBlock             `json:"kpis"`
	Revenue         RevenueSeries        `json:"revenue"`
	PeriodicityMix  []PeriodicityMixItem `json:"periodicity_mix"`
	RecentDonations []db_models.Donation `json:"recent_donations"`
}
