// Package quota resolves the revenue-sharing policy that applies to a trip
// and validates that an assignment's policy windows never overlap.
package quota

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fleetops/internal/apperr"
	"fleetops/internal/models"
)

// Kind is the reporting label of a resolved policy.
type Kind string

const (
	KindFixed      Kind = "Fixed"
	KindPercentage Kind = "Percentage"
	// KindNone marks a trip with no applicable policy. Reports label it
	// "Bus Rental".
	KindNone Kind = "Bus Rental"
)

// Window is a closed [Start, End] interval.
type Window struct {
	ID    string
	Start time.Time
	End   time.Time
}

// OverlapError reports two windows of one assignment that intersect.
type OverlapError struct {
	First, Second Window
}

func (e OverlapError) Error() string {
	return fmt.Sprintf("quota policy windows overlap: [%s, %s] and [%s, %s]",
		e.First.Start.Format(time.RFC3339), e.First.End.Format(time.RFC3339),
		e.Second.Start.Format(time.RFC3339), e.Second.End.Format(time.RFC3339))
}

// Unwrap classifies overlaps as validation failures.
func (e OverlapError) Unwrap() error {
	return apperr.ValidationError{Field: "QuotaPolicy", Msg: "windows overlap"}
}

// SortByStart orders policies by StartDate ascending, ties broken by ID so
// the order is stable across loads.
func SortByStart(policies []models.QuotaPolicy) {
	sort.SliceStable(policies, func(i, j int) bool {
		if policies[i].StartDate.Equal(policies[j].StartDate) {
			return policies[i].QuotaPolicyID < policies[j].QuotaPolicyID
		}
		return policies[i].StartDate.Before(policies[j].StartDate)
	})
}

// FindActive returns the policy whose window contains at. Policies are
// sorted by start first, so if overlapping rows ever reach the table the
// earliest-starting policy wins.
func FindActive(policies []models.QuotaPolicy, at time.Time) *models.QuotaPolicy {
	sorted := make([]models.QuotaPolicy, len(policies))
	copy(sorted, policies)
	SortByStart(sorted)
	for i := range sorted {
		p := sorted[i]
		if !at.Before(p.StartDate) && !at.After(p.EndDate) {
			return &p
		}
	}
	return nil
}

// ValidateNoOverlap sorts the windows by start and fails when any window
// ends after the next one starts. A window may end exactly where the next
// begins.
func ValidateNoOverlap(windows []Window) error {
	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i].End.After(sorted[i+1].Start) {
			return OverlapError{First: sorted[i], Second: sorted[i+1]}
		}
	}
	return nil
}

// ValidateWindow checks a single window is well formed.
func ValidateWindow(w Window) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return apperr.ValidationError{Field: "QuotaPolicy", Msg: "StartDate and EndDate are required"}
	}
	if !w.Start.Before(w.End) {
		return apperr.ValidationError{Field: "QuotaPolicy", Msg: "StartDate must be before EndDate"}
	}
	return nil
}

// WindowsOf converts policies to windows, skipping the one being replaced.
func WindowsOf(policies []models.QuotaPolicy, skipID string) []Window {
	out := make([]Window, 0, len(policies))
	for _, p := range policies {
		if p.QuotaPolicyID == skipID {
			continue
		}
		out = append(out, Window{ID: p.QuotaPolicyID, Start: p.StartDate, End: p.EndDate})
	}
	return out
}

// Resolution is the outcome of applying a policy to a trip's sales.
type Resolution struct {
	Kind  Kind
	Value decimal.Decimal // Fixed quota or percentage fraction.
	// Amount is what the company is owed for the trip.
	Amount decimal.Decimal
}

// Applies reports whether a real policy was found. A zero Amount with
// Applies() true is a genuine quota of zero.
func (r Resolution) Applies() bool {
	return r.Kind != KindNone
}

// Resolve computes the quota amount for sales under policy. A nil policy,
// or one carrying neither sub-type, resolves to KindNone with zero amount.
func Resolve(policy *models.QuotaPolicy, sales decimal.Decimal) Resolution {
	switch {
	case policy == nil:
		return Resolution{Kind: KindNone}
	case policy.Fixed != nil:
		return Resolution{Kind: KindFixed, Value: policy.Fixed.Quota, Amount: policy.Fixed.Quota}
	case policy.Percentage != nil:
		p := policy.Percentage.Percentage
		return Resolution{Kind: KindPercentage, Value: p, Amount: p.Mul(sales)}
	}
	return Resolution{Kind: KindNone}
}
