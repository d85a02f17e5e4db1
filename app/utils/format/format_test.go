package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "₹1,299.00", Price(decimal.NewFromInt(1299)))
	assert.Equal(t, "₹0.00", Price(decimal.Zero))
	assert.Equal(t, "₹399.99", Price(decimal.RequireFromString("399.994")))
	assert.Equal(t, "₹1,234,567.50", Price(decimal.RequireFromString("1234567.5")))
}

func TestLabels(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 23, 10, 0, 0, time.UTC)
	assert.Equal(t, "05/03/2026", DayLabel(ts))
	assert.Equal(t, "March 2026", MonthLabel(ts))
}

func TestParseMonthAndDay(t *testing.T) {
	m, err := ParseMonth("February 2026", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), m)

	d, err := ParseDay("2026-02-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Day())

	d, err = ParseDay("11/02/2026", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseMonth("13th month", time.UTC)
	assert.Error(t, err)
}
