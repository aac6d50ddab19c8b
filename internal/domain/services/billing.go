package services

import (
	"time"

	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/shopspring/decimal"
)

// billingScale is the decimal precision every component and total is
// rounded to. decimal.Round is half-away-from-zero.
const billingScale = 4

// round4 rounds to the billing scale.
func round4(d decimal.Decimal) decimal.Decimal {
	return d.Round(billingScale)
}

// prorate computes round4(usage / divisor * rate). A zero or negative
// divisor is treated as 1.
func prorate(usage int64, divisor int64, rate decimal.Decimal) decimal.Decimal {
	if divisor <= 0 {
		divisor = 1
	}
	amount := decimal.NewFromInt(usage).
		Div(decimal.NewFromInt(divisor)).
		Mul(rate)
	return round4(amount)
}

// UsageCounters is one snapshot of a payer's running counters.
type UsageCounters struct {
	Shared     int64
	Downloaded int64
	Uploaded   int64
}

// ComputeBreakdown prices one billing period from usage and plan rates.
func ComputeBreakdown(usage UsageCounters, rates models.PlanRates) models.InvoiceBreakdown {
	shared := prorate(usage.Shared, rates.ShareCount, rates.SharePricePerThousand)
	download := prorate(usage.Downloaded, rates.DownloadCount, rates.DownloadPricePerThousand)
	upload := prorate(usage.Uploaded, rates.UploadCount, rates.UploadPricePerTen)
	total := round4(rates.MonthlyPrice.Add(shared).Add(download).Add(upload))

	return models.InvoiceBreakdown{
		Value:          total,
		MonthlyAmount:  rates.MonthlyPrice,
		SharedAmount:   shared,
		DownloadAmount: download,
		UploadAmount:   upload,
	}
}

// PeriodLabel is the human-readable billing period key, e.g. "August 2026".
func PeriodLabel(now time.Time) string {
	return now.Format("January 2006")
}

// monthDiff counts whole calendar months between two times, ignoring the
// day component. Negative when from is after to.
func monthDiff(to, from time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// billingDue reports whether a payer is due for a new invoice given its
// last settlement (or creation) time and the plan's billing duration in
// months. A zero duration is treated as 1.
func billingDue(now, lastPaidOrCreated time.Time, duration int) bool {
	if duration <= 0 {
		duration = 1
	}
	return monthDiff(now, lastPaidOrCreated) >= duration
}
