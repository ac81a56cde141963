// Package components provides reusable UI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/styles"
)

// UsageBar renders a consumption progress bar with label and percentage.
// Unlike a remaining-quota bar the gradient runs green to red: full is bad.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar with gradient colors.
func NewUsageBar(width int) UsageBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return UsageBar{progress: p}
}

// Update handles progress bar animation messages.
func (b UsageBar) Update(msg tea.Msg) (UsageBar, tea.Cmd) {
	model, cmd := b.progress.Update(msg)
	b.progress = model.(progress.Model)
	return b, cmd
}

// SetWidth sets the progress bar width.
func (b *UsageBar) SetWidth(width int) {
	b.progress.Width = width
}

// View renders the bar with a left label and right-aligned percentage.
func (b UsageBar) View(percent float64, label string, width int) string {
	barWidth := width - 30
	if barWidth < 10 {
		barWidth = 10
	}
	b.progress.Width = barWidth

	shown := percent
	if shown > 100 {
		shown = 100
	}
	if shown < 0 {
		shown = 0
	}
	bar := b.progress.ViewAs(shown / 100)

	percentStyle := styles.GetUsageStyle(percent, percent >= 100)
	percentStr := percentStyle.Width(6).Align(lipgloss.Right).Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(18).
		Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewUnknown renders the bar when the underlying counters are missing.
func (b UsageBar) ViewUnknown(label string, width int) string {
	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(18).
		Render(label)

	placeholder := styles.HelpStyle.Render("no data")
	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, placeholder)
}
