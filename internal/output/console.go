// Package output renders the run summary for the terminal.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/services"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// RenderSummary formats a finished run for the terminal.
func RenderSummary(report services.RunReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("skillmap analysis"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Dataset"))
	b.WriteString("\n")
	writeRow(&b, "cases", fmt.Sprintf("%d", report.CaseCount))
	writeRow(&b, "roster members", fmt.Sprintf("%d", report.RosterCount))
	writeRow(&b, "manual adjustments", fmt.Sprintf("%d", report.Adjustments))

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Results"))
	b.WriteString("\n")
	writeRow(&b, "tags scored", fmt.Sprintf("%d", len(report.Result.Difficulties)))
	writeRow(&b, "distributions", fmt.Sprintf("%d", len(report.Result.Distributions)))
	writeRow(&b, "responder profiles", fmt.Sprintf("%d", len(report.Result.Skills)))
	writeRow(&b, "teams", fmt.Sprintf("%d", len(report.Result.Teams)))
	writeRow(&b, "areas", fmt.Sprintf("%d", len(report.Result.Areas)))
	writeRow(&b, "consultation teams", fmt.Sprintf("%d", len(report.Result.Consultations)))

	if shortages := headcountShortages(report.Result.Teams); len(shortages) > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("headcount attention: %s", strings.Join(shortages, ", "))))
		b.WriteString("\n")
	}
	if priorities := highPriorityFlows(report.Result.Consultations); len(priorities) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("consultation priority: %s", strings.Join(priorities, ", "))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Output"))
	b.WriteString("\n")
	for _, p := range report.OutputPaths {
		b.WriteString("  ")
		b.WriteString(pathStyle.Render(p))
		b.WriteString("\n")
	}
	writeRow(&b, "duration", report.Duration.Round(time.Millisecond).String())

	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(label))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func headcountShortages(teams []models.TeamProductivityResult) []string {
	var out []string
	for _, t := range teams {
		if t.Status == models.HeadcountTight || t.Status == models.HeadcountShort {
			out = append(out, fmt.Sprintf("%s (%s)", t.Team, t.Status))
		}
	}
	return out
}

func highPriorityFlows(flows []models.TeamConsultationResult) []string {
	var out []string
	for _, f := range flows {
		if f.Priority == models.PriorityHigh {
			out = append(out, f.Team)
		}
	}
	return out
}
