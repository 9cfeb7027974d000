package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "colabora/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountDonors(ctx context.Context) (int64, error)
	CountNewDonors(ctx context.Context, start, end time.Time) (int64, error)
	CountRecurringDonors(ctx context.Context) (int64, error)
	DonationTotals(ctx context.Context, start, end time.Time) (*TotalsRow, error)

	// Time series (postgres only: date_trunc)
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	// Active subscriptions with their charge amount
	RecurringCommitments(ctx context.Context) ([]CommitmentRow, error)

	PeriodicityMix(ctx context.Context, start, end time.Time) ([]PeriodicityRow, error)

	RecentDonations(ctx context.Context, limit int) ([]dbm.Donation, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time       `gorm:"column:bucket"`
	Sum    decimal.Decimal `gorm:"column:sum"`
}

type TotalsRow struct {
	Count int64           `gorm:"column:count"`
	Sum   decimal.Decimal `gorm:"column:sum"`
}

type CommitmentRow struct {
	DonorID     string          `gorm:"column:donor_id"`
	Periodicity dbm.Periodicity `gorm:"column:periodicity"`
	Amount      decimal.Decimal `gorm:"column:amount"`
}

type PeriodicityRow struct {
	Periodicity dbm.Periodicity `gorm:"column:periodicity"`
	Count       int64           `gorm:"column:count"`
	Sum         decimal.Decimal `gorm:"column:sum"`
}

// ---------- Helpers ----------
func dateTrunc(tz string, unixColumn string) string {
	// unixColumn holds UNIX seconds; convert to timestamptz before truncating.
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

// ---------- Counts ----------
func (r *dashboardRepository) CountDonors(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Donor{}).Count(&n).Error
	return n, classify("count donors", err)
}

func (r *dashboardRepository) CountNewDonors(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Donor{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, classify("count new donors", err)
}

func (r *dashboardRepository) CountRecurringDonors(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Donor{}).
		Where("provider_subscription_id IS NOT NULL").
		Count(&n).Error
	return n, classify("count recurring donors", err)
}

func (r *dashboardRepository) DonationTotals(ctx context.Context, start, end time.Time) (*TotalsRow, error) {
	var row TotalsRow
	err := r.db.WithContext(ctx).
		Model(&dbm.Donation{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum").
		Where("status = ?", dbm.DonationStatusCompleted).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Scan(&row).Error
	if err != nil {
		return nil, classify("donation totals", err)
	}
	return &row, nil
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	args := []interface{}{interval}
	if tz != "" {
		args = append(args, tz)
	}
	tx := r.db.WithContext(ctx).
		Table("donations").
		Select(dateTrunc(tz, "created_at")+" AS bucket, SUM(amount) AS sum", args...).
		Where("status = ?", dbm.DonationStatusCompleted).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, classify("revenue series", err)
}

// ---------- Recurring ----------
func (r *dashboardRepository) RecurringCommitments(ctx context.Context) ([]CommitmentRow, error) {
	var rows []CommitmentRow
	// One row per donor with an attached subscription; the charge amount is
	// fixed per subscription, MAX only collapses repeated invoices.
	err := r.db.WithContext(ctx).
		Table("donors d").
		Select("d.id AS donor_id, d.periodicity, MAX(dn.amount) AS amount").
		Joins("JOIN donations dn ON dn.donor_id = d.id AND dn.provider_subscription_id = d.provider_subscription_id").
		Where("d.provider_subscription_id IS NOT NULL").
		Group("d.id, d.periodicity").
		Find(&rows).Error
	return rows, classify("recurring commitments", err)
}

// ---------- Periodicity mix ----------
func (r *dashboardRepository) PeriodicityMix(ctx context.Context, start, end time.Time) ([]PeriodicityRow, error) {
	var rows []PeriodicityRow
	err := r.db.WithContext(ctx).
		Model(&dbm.Donation{}).
		Select("periodicity, COUNT(*) AS count, SUM(amount) AS sum").
		Where("status = ?", dbm.DonationStatusCompleted).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("periodicity").
		Order("count DESC").
		Find(&rows).Error
	return rows, classify("periodicity mix", err)
}

// ---------- Recent donations ----------
func (r *dashboardRepository) RecentDonations(ctx context.Context, limit int) ([]dbm.Donation, error) {
	var rows []dbm.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("status = ?", dbm.DonationStatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, classify("recent donations", err)
}
