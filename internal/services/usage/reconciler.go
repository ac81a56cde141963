package usage

import (
	"context"

	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
	"github.com/j-veylop/cursor-dashboard-tui/internal/services/api"
)

// refreshResult carries the outcome of one reconcile pass back to the
// service state under a single lock acquisition.
type refreshResult struct {
	snapshot     *models.UsageSnapshot
	subscription *models.SubscriptionInfo
	displayName  string
	warnings     []string
}

// reconcile runs the fixed endpoint sequence and folds the responses into
// one snapshot. The call order and the error policy are deliberate:
// identity and usage counters are load-bearing and abort the cycle, the
// remaining endpoints only enrich the snapshot.
func (s *Service) reconcile(ctx context.Context, prior *models.UsageSnapshot) (*refreshResult, error) {
	if s.creds.Token() == "" {
		return nil, &api.Error{Kind: api.KindConfiguration, Message: "no session token configured"}
	}

	identity, err := s.client.CheckIdentity(ctx)
	if err != nil {
		return nil, err
	}

	counters, err := s.client.FetchUsage(ctx)
	if err != nil {
		return nil, err
	}

	result := &refreshResult{
		snapshot:    &models.UsageSnapshot{},
		displayName: identity.Email,
	}

	used := counters.PremiumRequestsUsed
	result.snapshot.PremiumRequestsUsed = &used
	result.snapshot.PremiumRequestsLimit = counters.PremiumRequestsLimit
	fast := counters.FastRequestsUsed
	result.snapshot.FastRequestsUsed = &fast
	total := counters.TotalRequests
	result.snapshot.TotalRequestsEverUsed = &total

	if !counters.StartOfMonth.IsZero() {
		days := api.DaysUntilRenewal(counters.StartOfMonth, s.now())
		result.snapshot.DaysUntilRefresh = &days
	}

	subscription, err := s.client.FetchSubscription(ctx)
	if err != nil {
		logger.Warn("failed to fetch subscription info", "error", err)
	} else {
		result.subscription = subscription
	}

	hardLimit, err := s.client.FetchHardLimit(ctx)
	if err != nil {
		logger.Warn("failed to fetch hard limit", "error", err)
		result.warnings = append(result.warnings, "spend limit unavailable")
	} else {
		result.snapshot.SpendLimit = hardLimit
	}

	month, year := api.PreviousBillingMonth(s.now())
	spend, err := s.client.FetchMonthlyInvoice(ctx, month, year)
	switch {
	case err != nil:
		logger.Warn("failed to fetch monthly invoice", "error", err)
		result.warnings = append(result.warnings, "current spend unavailable")
		result.snapshot.CurrentSpend = priorSpend(prior)
	case spend != nil:
		result.snapshot.CurrentSpend = spend
	default:
		// Invoice has no items yet, keep what we knew
		result.snapshot.CurrentSpend = priorSpend(prior)
	}

	return result, nil
}

func priorSpend(prior *models.UsageSnapshot) *float64 {
	if prior == nil || prior.CurrentSpend == nil {
		return nil
	}
	v := *prior.CurrentSpend
	return &v
}
