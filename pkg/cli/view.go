package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/mittwald/mittcheck/pkg/probe"
)

var colorSuccess = lipgloss.Color("#00B785")
var colorFailure = lipgloss.Color("#e1244c")

var styleHealthy = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
var styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("#e08dff")).Bold(true)
var styleUnhealthy = lipgloss.NewStyle().Foreground(colorFailure).Bold(true)
var styleHighlight = lipgloss.NewStyle().Foreground(lipgloss.Color("#407FF8")).Bold(true)
var styleNotSet = lipgloss.NewStyle().Foreground(lipgloss.Color("#5D689C"))

var styleSummary = lipgloss.NewStyle().Margin(1, 0)
var styleProbeList = lipgloss.NewStyle().PaddingLeft(2)
var styleNameColumn = lipgloss.NewStyle().Width(24)
var styleDurationColumn = lipgloss.NewStyle().Width(14)

func statusStyle(status health.Status) lipgloss.Style {
	switch status {
	case health.StatusHealthy:
		return styleHealthy
	case health.StatusSkipped:
		return styleSkipped
	default:
		return styleUnhealthy
	}
}

func statusSymbol(status health.Status) string {
	switch status {
	case health.StatusHealthy:
		return "✔"
	case health.StatusSkipped:
		return "◌"
	default:
		return "✘"
	}
}

// ProbeLine renders a single probe result as one line.
func ProbeLine(result *probe.ProbeResult) string {
	style := statusStyle(result.Status)

	message := styleNotSet.Render("-")
	if result.Message != "" {
		message = style.Render(result.Message)
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		style.Render(statusSymbol(result.Status)), " ",
		styleNameColumn.Render(styleHighlight.Render(result.Name)),
		styleDurationColumn.Render(result.Duration),
		message,
	)
}

// RenderReport renders a report as a summary line followed by one line per
// probe.
func RenderReport(status *probe.StatusResponse) string {
	style := statusStyle(status.Status)

	summary := lipgloss.JoinHorizontal(lipgloss.Left,
		style.Render(statusSymbol(status.Status)), " ",
		style.Render(status.Status.String()), " (",
		styleHighlight.Render(fmt.Sprintf("%d", len(status.Probes))), " probes in ",
		styleHighlight.Render(status.Duration), ")",
	)

	lines := make([]string, 0, len(status.Probes))
	for _, p := range status.Probes {
		lines = append(lines, ProbeLine(p))
	}

	if len(lines) == 0 {
		lines = append(lines, styleNotSet.Render("<no probes configured>"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styleSummary.Render(summary),
		styleProbeList.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}
