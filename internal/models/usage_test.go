package models

import (
	"testing"
	"time"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestUsageSnapshot_PremiumPercent(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *UsageSnapshot
		want     float64
	}{
		{
			name:     "half used",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(250), PremiumRequestsLimit: intPtr(500)},
			want:     50,
		},
		{
			name:     "missing used",
			snapshot: &UsageSnapshot{PremiumRequestsLimit: intPtr(500)},
			want:     -1,
		},
		{
			name:     "missing limit",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(250)},
			want:     -1,
		},
		{
			name:     "zero limit",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(1), PremiumRequestsLimit: intPtr(0)},
			want:     -1,
		},
		{
			name:     "nil snapshot",
			snapshot: nil,
			want:     -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.PremiumPercent(); got != tt.want {
				t.Errorf("PremiumPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsageSnapshot_OverLimit(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *UsageSnapshot
		want     bool
	}{
		{
			name:     "under",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(320), PremiumRequestsLimit: intPtr(500)},
			want:     false,
		},
		{
			name:     "exactly at limit",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(500), PremiumRequestsLimit: intPtr(500)},
			want:     true,
		},
		{
			name:     "over",
			snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(520), PremiumRequestsLimit: intPtr(500)},
			want:     true,
		},
		{
			name:     "counters missing",
			snapshot: &UsageSnapshot{},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.OverLimit(); got != tt.want {
				t.Errorf("OverLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsageSnapshot_EstimatedOverageSpend(t *testing.T) {
	over := &UsageSnapshot{
		TotalRequestsEverUsed: intPtr(600),
		PremiumRequestsLimit:  intPtr(500),
	}
	got := over.EstimatedOverageSpend()
	if got == nil {
		t.Fatal("EstimatedOverageSpend() = nil, want estimate")
	}
	want := 100 * OverageCostPerRequest
	if *got != want {
		t.Errorf("EstimatedOverageSpend() = %v, want %v", *got, want)
	}

	under := &UsageSnapshot{
		TotalRequestsEverUsed: intPtr(400),
		PremiumRequestsLimit:  intPtr(500),
	}
	if under.EstimatedOverageSpend() != nil {
		t.Error("EstimatedOverageSpend() != nil for usage under the limit")
	}

	missing := &UsageSnapshot{PremiumRequestsLimit: intPtr(500)}
	if missing.EstimatedOverageSpend() != nil {
		t.Error("EstimatedOverageSpend() != nil with missing total")
	}
}

func TestUsageSnapshot_SpendPercent(t *testing.T) {
	s := &UsageSnapshot{CurrentSpend: floatPtr(40), SpendLimit: floatPtr(50)}
	if got := s.SpendPercent(); got != 80 {
		t.Errorf("SpendPercent() = %v, want 80", got)
	}

	noLimit := &UsageSnapshot{CurrentSpend: floatPtr(40)}
	if got := noLimit.SpendPercent(); got != -1 {
		t.Errorf("SpendPercent() without limit = %v, want -1", got)
	}
}

func TestUsageSnapshot_CloneIsIndependent(t *testing.T) {
	original := &UsageSnapshot{
		PremiumRequestsUsed:  intPtr(10),
		PremiumRequestsLimit: intPtr(500),
		CurrentSpend:         floatPtr(1.5),
	}

	clone := original.Clone()
	*clone.PremiumRequestsUsed = 99
	*clone.CurrentSpend = 42

	if *original.PremiumRequestsUsed != 10 {
		t.Errorf("original mutated through clone: used = %d", *original.PremiumRequestsUsed)
	}
	if *original.CurrentSpend != 1.5 {
		t.Errorf("original mutated through clone: spend = %v", *original.CurrentSpend)
	}

	var nilSnapshot *UsageSnapshot
	if nilSnapshot.Clone() != nil {
		t.Error("Clone() of nil snapshot should be nil")
	}
}

func TestSubscriptionInfo(t *testing.T) {
	trial := &SubscriptionInfo{MembershipType: "pro", DaysRemainingOnTrial: intPtr(7)}
	if !trial.IsTrial() {
		t.Error("IsTrial() = false with 7 trial days remaining")
	}
	if trial.TierLabel() != "pro" {
		t.Errorf("TierLabel() = %q, want %q", trial.TierLabel(), "pro")
	}

	var unknown *SubscriptionInfo
	if unknown.IsTrial() {
		t.Error("IsTrial() = true for nil info")
	}
	if unknown.TierLabel() != "unknown" {
		t.Errorf("TierLabel() = %q, want %q", unknown.TierLabel(), "unknown")
	}
}

func TestSessionHistory_BoundedEviction(t *testing.T) {
	h := NewSessionHistory(3)

	for i := 0; i < 5; i++ {
		h.Add(SnapshotPoint{
			Time:     time.Now(),
			Snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(i)},
		})
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	series := h.PremiumSeries()
	want := []float64{2, 3, 4}
	for i, v := range want {
		if series[i] != v {
			t.Errorf("PremiumSeries()[%d] = %v, want %v", i, series[i], v)
		}
	}
}

func TestSessionHistory_SkipsMissingValues(t *testing.T) {
	h := NewSessionHistory(0)

	h.Add(SnapshotPoint{Snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(1)}})
	h.Add(SnapshotPoint{Snapshot: &UsageSnapshot{}})
	h.Add(SnapshotPoint{Snapshot: &UsageSnapshot{PremiumRequestsUsed: intPtr(3), CurrentSpend: floatPtr(2)}})

	if got := len(h.PremiumSeries()); got != 2 {
		t.Errorf("PremiumSeries() length = %d, want 2", got)
	}
	if got := len(h.SpendSeries()); got != 1 {
		t.Errorf("SpendSeries() length = %d, want 1", got)
	}
}
