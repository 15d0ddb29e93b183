// Package tui renders an analysis report as a single-page terminal
// viewer: a summary header, a bar chart of the top resources, and a
// scrollable client list.
package tui

import (
	"fmt"
	"strings"

	"github.com/geopython/geousage/internal/analyze"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	borderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// ReportModel is the Bubble Tea model for one finished analysis.
type ReportModel struct {
	report  analyze.Report
	service string
	files   []string

	keys     KeyMap
	clients  viewport.Model
	width    int
	height   int
	ready    bool
}

// NewReportModel creates a viewer for the given report.
func NewReportModel(report analyze.Report, service string, files []string) *ReportModel {
	return &ReportModel{
		report:  report,
		service: service,
		files:   files,
		keys:    DefaultKeyMap(),
	}
}

func (m *ReportModel) Init() tea.Cmd {
	return nil
}

func (m *ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutClients()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.clients.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.clients.ScrollDown(1)
		case key.Matches(msg, m.keys.PageUp):
			m.clients.HalfPageUp()
		case key.Matches(msg, m.keys.PageDown):
			m.clients.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.clients, cmd = m.clients.Update(msg)
	return m, cmd
}

func (m *ReportModel) layoutClients() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	h := m.height - chartHeight - 14
	if h < 3 {
		h = 3
	}
	m.clients = viewport.New(w, h)
	m.clients.SetContent(m.clientLines())
}

func (m *ReportModel) clientLines() string {
	if len(m.report.Result.Clients) == 0 {
		return dimStyle.Render("no clients")
	}

	var lines []string
	for _, c := range m.report.Result.Clients {
		label := c.Key
		if host, ok := m.report.Hostnames[c.Key]; ok && host.Resolved {
			label = fmt.Sprintf("%s (%s)", c.Key, host.Hostname)
		}
		lines = append(lines, fmt.Sprintf("%s %s", countStyle.Render(fmt.Sprintf("%6d", c.Count)), label))
	}
	return strings.Join(lines, "\n")
}

func (m *ReportModel) View() string {
	if !m.ready {
		return "loading report..."
	}

	res := m.report.Result

	header := titleStyle.Render(fmt.Sprintf("GeoUsage %s usage report", m.service))
	files := dimStyle.Render(strings.Join(m.files, ", "))

	period := "no accepted requests"
	if !res.Start.IsZero() {
		period = fmt.Sprintf("%s to %s", res.Start.Format("2006-01-02 15:04:05"), res.End.Format("2006-01-02 15:04:05"))
	}

	summary := fmt.Sprintf(
		"%s  accepted %s   unmatched %s   skipped %s",
		dimStyle.Render(period),
		countStyle.Render(fmt.Sprintf("%d", res.TotalAccepted)),
		countStyle.Render(fmt.Sprintf("%d", m.report.Unmatched)),
		countStyle.Render(fmt.Sprintf("%d", m.report.Skipped)),
	)

	chart := renderResourceChart(res.Resources, m.width-6)

	clientsPane := borderStyle.Render(m.clients.View())

	help := dimStyle.Render("↑/↓ scroll clients · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		" "+header,
		" "+files,
		" "+summary,
		"",
		" "+sectionStyle.Render("Top resources"),
		chart,
		"",
		" "+sectionStyle.Render("Clients"),
		clientsPane,
		" "+help,
	)
}
