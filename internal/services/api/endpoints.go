package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
)

const (
	pathIdentity       = "/api/auth/me"
	pathUsage          = "/api/usage"
	pathSubscription   = "/api/auth/stripe"
	pathHardLimit      = "/api/dashboard/get-hard-limit"
	pathMonthlyInvoice = "/api/dashboard/get-monthly-invoice"
)

// billingCycleDays is the length of a usage period. The usage endpoint only
// reports the cycle start, so renewal is start + 30 days.
const billingCycleDays = 30

// Identity is the authenticated account as reported by the identity endpoint.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Sub   string `json:"sub"`
}

// UsageCounters is the parsed usage endpoint payload. PremiumLimit is nil
// when the account has no request cap (usage-based pricing only).
type UsageCounters struct {
	PremiumRequestsUsed  int
	PremiumRequestsLimit *int
	TotalRequests        int
	FastRequestsUsed     int
	StartOfMonth         time.Time
}

// CheckIdentity verifies the session token against the identity endpoint and
// returns the account it belongs to. Any failure here means the credential
// is unusable.
func (c *Client) CheckIdentity(ctx context.Context) (*Identity, error) {
	status, raw, err := c.do(ctx, http.MethodGet, pathIdentity, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(KindAuth, fmt.Sprintf("identity check returned status %d", status))
	}

	var identity Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, wrapError(KindAuth, "failed to parse identity response", err)
	}
	if identity.Email == "" {
		return nil, newError(KindAuth, "identity response has no email")
	}

	return &identity, nil
}

// usageResponse mirrors the usage endpoint's per-model sub-objects.
type usageResponse struct {
	Premium struct {
		NumRequests      int  `json:"numRequests"`
		NumRequestsTotal int  `json:"numRequestsTotal"`
		MaxRequestUsage  *int `json:"maxRequestUsage"`
	} `json:"gpt-4"`
	Fast struct {
		NumRequests int `json:"numRequests"`
	} `json:"gpt-3.5-turbo"`
	StartOfMonth string `json:"startOfMonth"`
}

// FetchUsage retrieves the request counters for the current billing cycle.
func (c *Client) FetchUsage(ctx context.Context) (*UsageCounters, error) {
	status, raw, err := c.do(ctx, http.MethodGet, pathUsage, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(KindAPI, fmt.Sprintf("usage endpoint returned status %d", status))
	}

	var resp usageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, wrapError(KindParsing, "failed to parse usage response", err)
	}

	counters := &UsageCounters{
		PremiumRequestsUsed:  resp.Premium.NumRequests,
		PremiumRequestsLimit: resp.Premium.MaxRequestUsage,
		TotalRequests:        resp.Premium.NumRequestsTotal,
		FastRequestsUsed:     resp.Fast.NumRequests,
	}

	// A missing or unreadable cycle start only costs the renewal countdown,
	// the counters are still good.
	if resp.StartOfMonth != "" {
		start, err := parseStartOfMonth(resp.StartOfMonth)
		if err != nil {
			logger.Warn("ignoring unparseable startOfMonth", "value", resp.StartOfMonth, "error", err)
		} else {
			counters.StartOfMonth = start
		}
	}

	return counters, nil
}

// FetchSubscription retrieves membership metadata. Failures here are
// tolerated by the refresh cycle.
func (c *Client) FetchSubscription(ctx context.Context) (*models.SubscriptionInfo, error) {
	status, raw, err := c.do(ctx, http.MethodGet, pathSubscription, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(KindAPI, fmt.Sprintf("subscription endpoint returned status %d", status))
	}

	var info models.SubscriptionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, wrapError(KindParsing, "failed to parse subscription response", err)
	}

	return &info, nil
}

// FetchHardLimit retrieves the configured monthly spend cap. The endpoint
// serializes the limit as either an integer or a float; both normalize to
// float64. A 200 response without the field is malformed.
func (c *Client) FetchHardLimit(ctx context.Context) (*float64, error) {
	status, raw, err := c.do(ctx, http.MethodPost, pathHardLimit, []byte("{}"))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(KindAPI, fmt.Sprintf("hard limit endpoint returned status %d", status))
	}

	var resp struct {
		HardLimit *float64 `json:"hardLimit"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, wrapError(KindParsing, "failed to parse hard limit response", err)
	}
	if resp.HardLimit == nil {
		return nil, newError(KindParsing, "hard limit response has no hardLimit field")
	}

	return resp.HardLimit, nil
}

// FetchMonthlyInvoice retrieves the invoice for the given calendar month and
// returns the summed line items in whole currency units. A response without
// an items array means the invoice is not available yet; that is reported as
// (nil, nil) so the caller keeps its prior value.
func (c *Client) FetchMonthlyInvoice(ctx context.Context, month, year int) (*float64, error) {
	body, err := json.Marshal(map[string]any{
		"month":              month,
		"year":               year,
		"includeUsageEvents": true,
	})
	if err != nil {
		return nil, wrapError(KindParsing, "failed to encode invoice request", err)
	}

	status, raw, err := c.do(ctx, http.MethodPost, pathMonthlyInvoice, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newError(KindAPI, fmt.Sprintf("invoice endpoint returned status %d", status))
	}

	var resp struct {
		Items []struct {
			Cents       int    `json:"cents"`
			Description string `json:"description"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, wrapError(KindParsing, "failed to parse invoice response", err)
	}

	if resp.Items == nil {
		return nil, nil
	}

	totalCents := 0
	for _, item := range resp.Items {
		totalCents += item.Cents
	}
	total := float64(totalCents) / 100
	return &total, nil
}

// parseStartOfMonth accepts the cycle start timestamp with or without
// fractional seconds.
func parseStartOfMonth(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// DaysUntilRenewal returns whole days from now until the billing cycle
// renews, clamped at zero.
func DaysUntilRenewal(startOfMonth, now time.Time) int {
	renewal := startOfMonth.AddDate(0, 0, billingCycleDays)
	days := int(renewal.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PreviousBillingMonth returns the calendar month before now, rolling the
// year back across January.
func PreviousBillingMonth(now time.Time) (month, year int) {
	month = int(now.Month()) - 1
	year = now.Year()
	if month < 1 {
		month = 12
		year--
	}
	return month, year
}
