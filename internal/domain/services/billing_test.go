package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
)

func standardRates() models.PlanRates {
	return models.PlanRates{
		MonthlyPrice:             decimal.NewFromInt(100),
		UploadPricePerTen:        decimal.NewFromInt(2),
		DownloadPricePerThousand: decimal.NewFromInt(3),
		SharePricePerThousand:    decimal.NewFromInt(5),
		UploadCount:              10,
		DownloadCount:            1000,
		ShareCount:               1000,
		BillingDuration:          1,
	}
}

func TestComputeBreakdown(t *testing.T) {
	usage := UsageCounters{Shared: 2000, Downloaded: 500, Uploaded: 50}

	breakdown := ComputeBreakdown(usage, standardRates())

	assert.True(t, breakdown.SharedAmount.Equal(decimal.NewFromInt(10)),
		"shared: got %s", breakdown.SharedAmount)
	assert.True(t, breakdown.DownloadAmount.Equal(decimal.NewFromFloat(1.5)),
		"download: got %s", breakdown.DownloadAmount)
	assert.True(t, breakdown.UploadAmount.Equal(decimal.NewFromInt(10)),
		"upload: got %s", breakdown.UploadAmount)
	assert.True(t, breakdown.Value.Equal(decimal.NewFromFloat(121.5)),
		"total: got %s", breakdown.Value)
}

func TestComputeBreakdownZeroUsage(t *testing.T) {
	breakdown := ComputeBreakdown(UsageCounters{}, standardRates())

	assert.True(t, breakdown.SharedAmount.IsZero())
	assert.True(t, breakdown.DownloadAmount.IsZero())
	assert.True(t, breakdown.UploadAmount.IsZero())
	assert.True(t, breakdown.Value.Equal(decimal.NewFromInt(100)))
}

func TestComputeBreakdownZeroDivisorDefaultsToOne(t *testing.T) {
	rates := standardRates()
	rates.ShareCount = 0

	breakdown := ComputeBreakdown(UsageCounters{Shared: 3}, rates)

	// 3 / 1 * 5
	assert.True(t, breakdown.SharedAmount.Equal(decimal.NewFromInt(15)),
		"shared: got %s", breakdown.SharedAmount)
}

func TestComputeBreakdownRounding(t *testing.T) {
	rates := standardRates()
	rates.DownloadPricePerThousand = decimal.NewFromInt(1)

	// 1 / 1000 * 1 = 0.001, survives at four decimal places
	breakdown := ComputeBreakdown(UsageCounters{Downloaded: 1}, rates)
	assert.True(t, breakdown.DownloadAmount.Equal(decimal.NewFromFloat(0.001)),
		"download: got %s", breakdown.DownloadAmount)

	// 1 / 3000 * 1 = 0.000333... rounds to 0.0003
	rates.DownloadCount = 3000
	breakdown = ComputeBreakdown(UsageCounters{Downloaded: 1}, rates)
	assert.True(t, breakdown.DownloadAmount.Equal(decimal.NewFromFloat(0.0003)),
		"download: got %s", breakdown.DownloadAmount)
}

func TestPeriodLabel(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "August 2026", PeriodLabel(now))

	assert.Equal(t, "January 2027", PeriodLabel(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthDiff(t *testing.T) {
	jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, monthDiff(jan, jan))
	assert.Equal(t, 1, monthDiff(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), jan))
	assert.Equal(t, 12, monthDiff(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), jan))
	assert.Equal(t, -2, monthDiff(time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC), jan))
}

func TestBillingDue(t *testing.T) {
	created := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)

	// Same month, not due yet
	assert.False(t, billingDue(time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC), created, 1))

	// Calendar month rolled over, due even if fewer than 30 days passed
	assert.True(t, billingDue(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), created, 1))

	// Quarterly duration
	assert.False(t, billingDue(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), created, 3))
	assert.True(t, billingDue(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), created, 3))

	// Zero duration behaves as monthly
	assert.True(t, billingDue(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), created, 0))
}
