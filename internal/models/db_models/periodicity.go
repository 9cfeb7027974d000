package db_models

type Periodicity string

const (
	PeriodicityOneOff     Periodicity = "one_off"
	PeriodicityMonthly    Periodicity = "monthly"
	PeriodicityQuarterly  Periodicity = "quarterly"
	PeriodicitySemiannual Periodicity = "semiannual"
	PeriodicityAnnual     Periodicity = "annual"
)

func (p Periodicity) Valid() bool {
	switch p {
	case PeriodicityOneOff, PeriodicityMonthly, PeriodicityQuarterly, PeriodicitySemiannual, PeriodicityAnnual:
		return true
	}
	return false
}

// Recurring reports whether the periodicity is billed through a subscription.
func (p Periodicity) Recurring() bool {
	return p.Valid() && p != PeriodicityOneOff
}

// IntervalMonths is the billing interval for recurring periodicities, 0 for one-off.
func (p Periodicity) IntervalMonths() int64 {
	switch p {
	case PeriodicityMonthly:
		return 1
	case PeriodicityQuarterly:
		return 3
	case PeriodicitySemiannual:
		return 6
	case PeriodicityAnnual:
		return 12
	}
	return 0
}
