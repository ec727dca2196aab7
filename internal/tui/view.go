package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("glimmer • %s", m.title()))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	listComp := components.NewPipelineList(m.order, m.pipelines)
	entries := listComp.Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Pipelines"))
		sections = append(sections, renderPipelineEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Audits:    m.audits,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderPipelineEntries(entries []components.PipelineEntry) string {
	var lines []string
	for _, entry := range entries {
		icon := StatusIcon(entry.Status)
		line := fmt.Sprintf(" %s %s", icon, entry.Label())
		if detail := entryDetail(entry); detail != "" {
			line = fmt.Sprintf("%s — %s", line, detail)
		}
		if entry.Report.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, entry.Report.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func entryDetail(entry components.PipelineEntry) string {
	switch entry.Status {
	case model.OutcomeFailed:
		for _, o := range entry.Report.Outcomes {
			if o.Status == model.OutcomeFailed && strings.TrimSpace(o.Message) != "" {
				return o.Message
			}
		}
		return "failed"
	case model.OutcomeApplied:
		return fmt.Sprintf("%d applied", entry.Report.Applied())
	case model.OutcomeSkipped:
		return "no changes"
	}
	return ""
}

func (m Model) title() string {
	if m.cfg != nil && strings.TrimSpace(m.cfg.Name) != "" {
		return m.cfg.Name
	}
	return "Document pass"
}

// StatusIcon returns the glyph representing a pipeline status.
func StatusIcon(status string) string {
	switch status {
	case model.OutcomeApplied:
		return appliedStyle.Render("✓")
	case model.OutcomeRunning:
		return runningStyle.Render("⏳")
	case model.OutcomeFailed:
		return failedStyle.Render("✗")
	case model.OutcomeSkipped, model.OutcomeCanceled:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
