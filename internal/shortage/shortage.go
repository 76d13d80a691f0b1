// Package shortage derives the cash shortfall a driver and conductor owe
// when trip sales do not cover the quota and the trip's expenses.
package shortage

import (
	"github.com/shopspring/decimal"

	"fleetops/internal/models"
	"fleetops/internal/quota"
)

var two = decimal.NewFromInt(2)

// Raw is Sales - quota - TripExpense, less PettyCash when the trip was paid
// from company cash. A negative value is money owed by the crew.
func Raw(trip models.BusTrip, quotaAmount decimal.Decimal) decimal.Decimal {
	raw := orZero(trip.Sales).Sub(quotaAmount).Sub(orZero(trip.TripExpense))
	if trip.PaymentMethod != nil && *trip.PaymentMethod == models.PaymentCompanyCash {
		raw = raw.Sub(orZero(trip.PettyCash))
	}
	return raw
}

// Compute returns the shortage charged to each of driver and conductor.
// It is never negative.
func Compute(trip models.BusTrip, quotaAmount decimal.Decimal) decimal.Decimal {
	raw := Raw(trip, quotaAmount)
	if !raw.IsNegative() {
		return decimal.Zero
	}
	return raw.Abs().Div(two)
}

// TripShortage is one trip's contribution to the shortage totals.
type TripShortage struct {
	BusTripID   string
	Quota       quota.Resolution
	Raw         decimal.Decimal
	PerEmployee decimal.Decimal
}

// ForTrip applies the policy active at the trip's dispatch time. It returns
// false for trips that must be skipped: no sales recorded, never
// dispatched, or no policy covering the dispatch time.
func ForTrip(trip models.BusTrip, policies []models.QuotaPolicy) (TripShortage, bool) {
	if !trip.Sales.Valid || trip.DispatchedAt == nil {
		return TripShortage{}, false
	}
	res := quota.Resolve(quota.FindActive(policies, *trip.DispatchedAt), trip.Sales.Decimal)
	if !res.Applies() {
		return TripShortage{}, false
	}
	return TripShortage{
		BusTripID:   trip.BusTripID,
		Quota:       res,
		Raw:         Raw(trip, res.Amount),
		PerEmployee: Compute(trip, res.Amount),
	}, true
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
