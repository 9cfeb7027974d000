package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dbm "colabora/internal/models/db_models"
	resp "colabora/internal/models/response_models"
	"colabora/internal/repositories"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo     repositories.DashboardRepository
	currency string
}

func NewDashboardService(repo repositories.DashboardRepository, currency string) DashboardService {
	return &dashboardService{repo: repo, currency: strings.ToUpper(currency)}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func monthlyEquivalent(amount decimal.Decimal, p dbm.Periodicity) decimal.Decimal {
	months := p.IntervalMonths()
	if months == 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(months)).Round(2)
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	totalDonors, err := s.repo.CountDonors(ctx)
	if err != nil {
		return nil, err
	}
	newDonors, err := s.repo.CountNewDonors(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	recurringDonors, err := s.repo.CountRecurringDonors(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.DonationTotals(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	var average decimal.Decimal
	if totals.Count > 0 {
		average = totals.Sum.Div(decimal.NewFromInt(totals.Count)).Round(2)
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	revenuePoints := make([]resp.SeriesPoint, 0, len(revenueRows))
	revenueTotal := decimal.Zero
	for _, r := range revenueRows {
		revenuePoints = append(revenuePoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		revenueTotal = revenueTotal.Add(r.Sum)
	}

	// ---------- Recurring commitments ----------
	commitments, err := s.repo.RecurringCommitments(ctx)
	if err != nil {
		return nil, err
	}
	monthly := decimal.Zero
	for _, c := range commitments {
		monthly = monthly.Add(monthlyEquivalent(c.Amount, c.Periodicity))
	}

	// ---------- Periodicity mix ----------
	mixRows, err := s.repo.PeriodicityMix(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	var mixTotal int64
	for _, r := range mixRows {
		mixTotal += r.Count
	}
	mix := make([]resp.PeriodicityMixItem, 0, len(mixRows))
	for _, r := range mixRows {
		var pct float64
		if mixTotal > 0 {
			pct = float64(r.Count) * 100.0 / float64(mixTotal)
		}
		mix = append(mix, resp.PeriodicityMixItem{
			Periodicity: r.Periodicity,
			Count:       r.Count,
			Total:       r.Sum,
			Percent:     pct,
		})
	}

	// ---------- Recent donations ----------
	recent, err := s.repo.RecentDonations(ctx, 10)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []dbm.Donation{}
	}

	return &resp.DashboardReport{
		Range:    rng,
		Currency: s.currency,
		KPIs: resp.KPIBlock{
			TotalDonors:      totalDonors,
			NewDonors:        newDonors,
			RecurringDonors:  recurringDonors,
			Donations:        totals.Count,
			Raised:           totals.Sum,
			AverageDonation:  average,
			MonthlyRecurring: monthly,
			AnnualRecurring:  monthly.Mul(decimal.NewFromInt(12)),
		},
		Revenue: resp.RevenueSeries{
			Currency: s.currency,
			Points:   revenuePoints,
			Total:    revenueTotal,
		},
		PeriodicityMix:  mix,
		RecentDonations: recent,
	}, nil
}
