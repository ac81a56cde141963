package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-dashboard-tui/internal/models"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if !m.state.HasCredential() {
		return m.renderNoCredential()
	}

	snapshot := m.state.GetSnapshot()
	if snapshot == nil {
		if err := m.state.GetLastError(); err != nil {
			return m.renderError(err)
		}
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderAccountCard(snapshot))
	sections = append(sections, m.renderUsageCard(snapshot))
	sections = append(sections, m.renderSpendCard(snapshot))
	sections = append(sections, m.renderTrendCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderNoCredential() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("No session token configured"),
		"",
		styles.HelpStyle.Render("Open the Settings tab (2) and paste your"),
		styles.HelpStyle.Render("WorkosCursorSessionToken browser cookie."),
	)
	return styles.CenterBoth(content, m.width, m.height)
}

func (m *Model) renderError(err error) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.ErrorTextStyle.Render("Refresh failed"),
		"",
		styles.HelpStyle.Render(err.Error()),
		"",
		styles.HelpStyle.Render("Press r to retry"),
	)
	return styles.CenterBoth(content, m.width, m.height)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Cursor Dashboard")
	subtitle := styles.HelpStyle.Render("Premium request and spend monitor")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	w := m.width - 6
	if w < 44 {
		w = 44
	}
	if w > 84 {
		w = 84
	}
	return w
}

func (m *Model) renderAccountCard(snapshot *models.UsageSnapshot) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Account"))
	rows = append(rows, "")

	email := m.state.GetDisplayName()
	if email == "" {
		email = "unknown"
	}
	rows = append(rows, renderRow("Email", lipgloss.NewStyle().Bold(true).Render(email)))

	sub := m.state.GetSubscription()
	tier := sub.TierLabel()
	tierBadge := styles.GetTierStyle(tier).Render(tier)
	if sub.IsTrial() {
		tierBadge += styles.WarningTextStyle.Render(
			fmt.Sprintf("  trial, %d days left", *sub.DaysRemainingOnTrial))
	}
	rows = append(rows, renderRow("Plan", tierBadge))

	if snapshot.DaysUntilRefresh != nil {
		rows = append(rows, renderRow("Cycle renews in",
			fmt.Sprintf("%d days", *snapshot.DaysUntilRefresh)))
	}

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, renderRow("Last updated", humanizeSince(m.state.TimeSinceUpdate())))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderUsageCard(snapshot *models.UsageSnapshot) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Requests"))
	rows = append(rows, "")

	barWidth := m.cardWidth() - 6

	if snapshot.PremiumRequestsUsed != nil && snapshot.PremiumRequestsLimit != nil {
		percent := snapshot.PremiumPercent()
		rows = append(rows, m.usageBar.View(percent, "Premium", barWidth))
		counts := fmt.Sprintf("%d / %d requests", *snapshot.PremiumRequestsUsed, *snapshot.PremiumRequestsLimit)
		if snapshot.OverLimit() {
			counts += "  " + styles.UsageExhaustedStyle.Render("quota exhausted")
		}
		rows = append(rows, "  "+styles.HelpStyle.Render(counts))
	} else {
		rows = append(rows, m.usageBar.ViewUnknown("Premium", barWidth))
	}

	rows = append(rows, "")

	if snapshot.FastRequestsUsed != nil {
		rows = append(rows, renderRow("Fast requests", fmt.Sprintf("%d", *snapshot.FastRequestsUsed)))
	}
	if snapshot.TotalRequestsEverUsed != nil {
		rows = append(rows, renderRow("Lifetime total", fmt.Sprintf("%d", *snapshot.TotalRequestsEverUsed)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSpendCard shows spend against the hard limit. Once the premium quota
// is exhausted this card is the primary display.
func (m *Model) renderSpendCard(snapshot *models.UsageSnapshot) string {
	var rows []string

	title := "Spend"
	if snapshot.OverLimit() {
		title = "Spend (usage-based billing active)"
	}
	rows = append(rows, styles.CardTitleStyle.Render(title))
	rows = append(rows, "")

	barWidth := m.cardWidth() - 6

	switch {
	case snapshot.CurrentSpend != nil && snapshot.SpendLimit != nil:
		rows = append(rows, m.spendBar.View(snapshot.SpendPercent(), "This month", barWidth))
		rows = append(rows, "  "+styles.HelpStyle.Render(
			fmt.Sprintf("$%.2f of $%.2f hard limit", *snapshot.CurrentSpend, *snapshot.SpendLimit)))

	case snapshot.CurrentSpend != nil:
		rows = append(rows, renderRow("This month", fmt.Sprintf("$%.2f", *snapshot.CurrentSpend)))
		rows = append(rows, "  "+styles.HelpStyle.Render("no hard limit configured"))

	case snapshot.SpendLimit != nil:
		rows = append(rows, renderRow("Hard limit", fmt.Sprintf("$%.2f", *snapshot.SpendLimit)))
		rows = append(rows, "  "+styles.HelpStyle.Render("current spend not available yet"))

	default:
		rows = append(rows, styles.HelpStyle.Render("Spend data not available"))
	}

	if est := snapshot.EstimatedOverageSpend(); est != nil && snapshot.CurrentSpend == nil {
		rows = append(rows, "")
		rows = append(rows, renderRow("Estimated overage", fmt.Sprintf("~$%.2f", *est)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderTrendCard plots the session-local series. The data only lives for
// this process lifetime, there is no persisted history.
func (m *Model) renderTrendCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("This Session"))
	rows = append(rows, "")

	chartWidth := m.cardWidth() - 14
	rows = append(rows, components.RenderLineChart(
		m.history.PremiumSeries(), chartWidth, 5, "premium requests used"))

	if spend := m.history.SpendSeries(); len(spend) >= 2 {
		rows = append(rows, "")
		rows = append(rows, components.RenderSpendChart(
			spend, chartWidth, 5, "spend ($)"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	return labelStyle.Render(label+":") + " " + value
}

func humanizeSince(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%.1f h ago", d.Hours())
	}
}
