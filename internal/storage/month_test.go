package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthRange(t *testing.T) {
	start, end := monthRange(2024, time.March)

	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPreviousMonthRange(t *testing.T) {
	start, end := previousMonthRange(2024, time.March)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPreviousMonthRangeJanuaryWrapsYear(t *testing.T) {
	start, end := previousMonthRange(2024, time.January)

	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}
