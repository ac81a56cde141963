package models

import "sync"

// SessionHistory keeps a bounded in-memory series of snapshots observed
// during this process lifetime. Nothing is persisted; the series exists only
// to drive the dashboard charts.
type SessionHistory struct {
	mu     sync.RWMutex
	points []SnapshotPoint
	limit  int
}

// DefaultHistoryLimit bounds the session series. At the default 30 minute
// poll interval this covers roughly five days of uptime.
const DefaultHistoryLimit = 240

// NewSessionHistory creates a history ring with the given capacity.
// A non-positive limit falls back to DefaultHistoryLimit.
func NewSessionHistory(limit int) *SessionHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &SessionHistory{limit: limit}
}

// Add appends a point, evicting the oldest when over capacity.
func (h *SessionHistory) Add(point SnapshotPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.points = append(h.points, point)
	if len(h.points) > h.limit {
		h.points = h.points[len(h.points)-h.limit:]
	}
}

// Len returns the number of stored points.
func (h *SessionHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// Points returns a copy of the stored points in insertion order.
func (h *SessionHistory) Points() []SnapshotPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]SnapshotPoint, len(h.points))
	copy(out, h.points)
	return out
}

// PremiumSeries returns the premium-requests-used values of points that
// carried the counter, oldest first.
func (h *SessionHistory) PremiumSeries() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var series []float64
	for _, p := range h.points {
		if p.Snapshot != nil && p.Snapshot.PremiumRequestsUsed != nil {
			series = append(series, float64(*p.Snapshot.PremiumRequestsUsed))
		}
	}
	return series
}

// SpendSeries returns the current-spend values of points that carried one,
// oldest first.
func (h *SessionHistory) SpendSeries() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var series []float64
	for _, p := range h.points {
		if p.Snapshot != nil && p.Snapshot.CurrentSpend != nil {
			series = append(series, *p.Snapshot.CurrentSpend)
		}
	}
	return series
}
