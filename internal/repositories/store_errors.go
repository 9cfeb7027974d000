package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"colabora/pkg/utils"
)

// classify turns driver errors into the store taxonomy. The database must be
// opened with TranslateError so unique violations arrive as ErrDuplicatedKey;
// everything else (timeouts, lost connections) is retryable by the caller.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, utils.ErrStoreConflict)
	default:
		return fmt.Errorf("%s: %w: %v", op, utils.ErrStoreUnavailable, err)
	}
}

func validatePage(page, pageSize int) error {
	if page < 1 {
		return utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return utils.ErrInvalidPageSize
	}
	return nil
}
