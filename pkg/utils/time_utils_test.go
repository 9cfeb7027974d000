package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrgDateCrossesMidnight(t *testing.T) {
	// 23:30 UTC on a summer day is already the next day in Madrid.
	late := time.Date(2025, 7, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-02", FormatOrgDate(late))
	assert.Equal(t, "", FormatOrgDate(time.Time{}))
}
