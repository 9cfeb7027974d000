package utils

import "errors"

var (
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")

	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")

	ErrDonorNotFound      = errors.New("donor not found")
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrPaymentProvider    = errors.New("payment provider error")

	// Reconciliation taxonomy.
	ErrInvalidEvent       = errors.New("invalid payment event")
	ErrStoreConflict      = errors.New("store uniqueness conflict")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrNotificationFailed = errors.New("notification failed")
)
