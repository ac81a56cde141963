package components

import (
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/cursor-dashboard-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) < 2 {
		return styles.HelpStyle.Render("Not enough data yet, keep the dashboard running")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderSpendChart plots the spend series on its own scale.
func RenderSpendChart(spend []float64, width, height int, caption string) string {
	if len(spend) < 2 {
		return styles.HelpStyle.Render("Not enough data yet, keep the dashboard running")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(spend,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red),
	)
}
