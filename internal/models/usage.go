// Package models defines data structures and domain types.
package models

import "time"

// OverageCostPerRequest is the empirically calibrated per-request cost used
// as a display fallback when usage exceeds the premium limit. It is not a
// published rate and may drift.
const OverageCostPerRequest = 0.04

// UsageSnapshot is the reconciled result of one refresh cycle. Every field
// is optional; nil means the value was not obtained this cycle. The
// reconciler never substitutes zero for a missing value.
type UsageSnapshot struct {
	PremiumRequestsUsed   *int     `json:"premiumRequestsUsed,omitempty"`
	PremiumRequestsLimit  *int     `json:"premiumRequestsLimit,omitempty"`
	FastRequestsUsed      *int     `json:"fastRequestsUsed,omitempty"`
	TotalRequestsEverUsed *int     `json:"totalRequestsEverUsed,omitempty"`
	CurrentSpend          *float64 `json:"currentSpend,omitempty"`
	SpendLimit            *float64 `json:"spendLimit,omitempty"`
	DaysUntilRefresh      *int     `json:"daysUntilRefresh,omitempty"`
}

// PremiumPercent returns the premium quota consumption as a percentage,
// or -1 when either counter is missing.
func (s *UsageSnapshot) PremiumPercent() float64 {
	if s == nil || s.PremiumRequestsUsed == nil || s.PremiumRequestsLimit == nil {
		return -1
	}
	if *s.PremiumRequestsLimit <= 0 {
		return -1
	}
	return float64(*s.PremiumRequestsUsed) / float64(*s.PremiumRequestsLimit) * 100
}

// OverLimit reports whether the account has exhausted its premium quota and
// the display should switch from used/limit mode to current-spend mode.
func (s *UsageSnapshot) OverLimit() bool {
	if s == nil || s.PremiumRequestsUsed == nil || s.PremiumRequestsLimit == nil {
		return false
	}
	return *s.PremiumRequestsUsed >= *s.PremiumRequestsLimit
}

// EstimatedOverageSpend returns (total - limit) * OverageCostPerRequest when
// lifetime usage exceeds the premium limit, or nil. It is a fallback display
// value and never replaces an invoice-sourced CurrentSpend.
func (s *UsageSnapshot) EstimatedOverageSpend() *float64 {
	if s == nil || s.TotalRequestsEverUsed == nil || s.PremiumRequestsLimit == nil {
		return nil
	}
	over := *s.TotalRequestsEverUsed - *s.PremiumRequestsLimit
	if over <= 0 {
		return nil
	}
	est := float64(over) * OverageCostPerRequest
	return &est
}

// SpendPercent returns spend relative to the hard limit as a percentage,
// or -1 when either value is missing.
func (s *UsageSnapshot) SpendPercent() float64 {
	if s == nil || s.CurrentSpend == nil || s.SpendLimit == nil || *s.SpendLimit <= 0 {
		return -1
	}
	return *s.CurrentSpend / *s.SpendLimit * 100
}

// Clone returns a deep copy of the snapshot.
func (s *UsageSnapshot) Clone() *UsageSnapshot {
	if s == nil {
		return nil
	}
	clone := &UsageSnapshot{}
	clone.PremiumRequestsUsed = copyInt(s.PremiumRequestsUsed)
	clone.PremiumRequestsLimit = copyInt(s.PremiumRequestsLimit)
	clone.FastRequestsUsed = copyInt(s.FastRequestsUsed)
	clone.TotalRequestsEverUsed = copyInt(s.TotalRequestsEverUsed)
	clone.CurrentSpend = copyFloat(s.CurrentSpend)
	clone.SpendLimit = copyFloat(s.SpendLimit)
	clone.DaysUntilRefresh = copyInt(s.DaysUntilRefresh)
	return clone
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// SubscriptionInfo is membership metadata fetched opportunistically. It is
// shown as a badge in the presentation layer and never feeds the snapshot's
// invariants.
type SubscriptionInfo struct {
	MembershipType       string `json:"membershipType,omitempty"`
	PaymentID            string `json:"paymentId,omitempty"`
	DaysRemainingOnTrial *int   `json:"daysRemainingOnTrial,omitempty"`
	SubscriptionStatus   string `json:"subscriptionStatus,omitempty"`
}

// IsTrial reports whether the subscription is in a trial period.
func (s *SubscriptionInfo) IsTrial() bool {
	return s != nil && s.DaysRemainingOnTrial != nil && *s.DaysRemainingOnTrial > 0
}

// TierLabel returns the membership type in display form, defaulting to
// "unknown" when the field was absent.
func (s *SubscriptionInfo) TierLabel() string {
	if s == nil || s.MembershipType == "" {
		return "unknown"
	}
	return s.MembershipType
}

// SnapshotPoint is one observed snapshot with its timestamp, used for the
// session-local chart series.
type SnapshotPoint struct {
	Time     time.Time
	Snapshot *UsageSnapshot
}
