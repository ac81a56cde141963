package settings

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/styles"
)

// View renders the settings tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTokenCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Settings")
	subtitle := styles.HelpStyle.Render("Session token management")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTokenCard() string {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 90 {
		cardWidth = 90
	}

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Session Token"))
	rows = append(rows, "")

	if m.state.HasCredential() {
		rows = append(rows, styles.SuccessTextStyle.Render("● token saved"))
	} else {
		rows = append(rows, styles.WarningTextStyle.Render("○ no token saved"))
	}
	rows = append(rows, "")

	switch {
	case m.verifying:
		rows = append(rows, m.spinner.ViewWithLabel())

	case m.editing:
		rows = append(rows, styles.FocusedBorderStyle.Render(m.input.View()))
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("enter verify & save · esc cancel"))

	default:
		rows = append(rows, styles.HelpStyle.Render("Press e to paste a new token, d to clear the saved one."))
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("The token is the WorkosCursorSessionToken cookie from a"))
		rows = append(rows, styles.HelpStyle.Render("logged-in cursor.com browser session. It is verified against"))
		rows = append(rows, styles.HelpStyle.Render("the identity endpoint before it is saved."))
	}

	if m.status != "" {
		rows = append(rows, "")
		if m.statusErr {
			rows = append(rows, styles.ErrorTextStyle.Render(m.status))
		} else {
			rows = append(rows, styles.SuccessTextStyle.Render(m.status))
		}
	}

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
