package tui

import (
	"fmt"
	"strings"

	"github.com/geopython/geousage/internal/model"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
)

const (
	chartHeight  = 8
	maxChartBars = 12
)

// barPalette cycles across resource bars.
var barPalette = []string{"39", "42", "208", "201", "220", "196", "93", "45"}

// renderResourceChart draws the top resources as a bar chart with a
// legend alongside. Resources beyond maxChartBars are omitted from the
// chart (they remain in the text report).
func renderResourceChart(resources []model.KeyCount, width int) string {
	if len(resources) == 0 {
		return dimStyle.Render("  no resources requested")
	}

	bars := resources
	if len(bars) > maxChartBars {
		bars = bars[:maxChartBars]
	}

	legendWidth := 28
	chartWidth := width - legendWidth - 2
	if chartWidth < 20 {
		chartWidth = 20
	}

	bc := barchart.New(chartWidth, chartHeight,
		barchart.WithBarGap(1),
		barchart.WithNoAxis(),
	)

	var legend []string
	for i, r := range bars {
		color := barPalette[i%len(barPalette)]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(lipgloss.Color(color))

		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: r.Key, Value: float64(r.Count), Style: style},
			},
		})

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
		legend = append(legend, fmt.Sprintf("%s %s (%d)", swatch, truncate(r.Key, legendWidth-8), r.Count))
	}

	bc.Draw()

	return lipgloss.JoinHorizontal(lipgloss.Top,
		"  "+strings.ReplaceAll(bc.View(), "\n", "\n  "),
		"  "+strings.Join(legend, "\n  "),
	)
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
