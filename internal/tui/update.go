package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case PassStartMsg:
		if msg.Targets > m.total {
			m.total = msg.Targets
		}
		return m, nil
	case PipelineStartMsg:
		m.ensurePipeline(msg.ID, msg.Target)
		entry := m.pipelines[msg.ID]
		entry.Status = model.OutcomeRunning
		m.pipelines[msg.ID] = entry
		return m, nil
	case PipelineCompleteMsg:
		id := msg.Report.PipelineID
		if id == "" {
			return m, nil
		}
		m.ensurePipeline(id, msg.Report.Target)
		existing := m.pipelines[id]
		previouslySettled := settledStatus(existing.Status)
		m.pipelines[id] = components.PipelineEntry{
			ID:     id,
			Target: msg.Report.Target,
			Status: pipelineStatus(msg.Report),
			Report: msg.Report,
		}
		if !previouslySettled {
			m.completed++
			m.markFinishedIfComplete()
		}
		return m, nil
	case AuditMsg:
		m.audits = append(m.audits, components.AuditStatus{Passed: msg.Passed, Message: msg.Message})
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func settledStatus(status string) bool {
	switch status {
	case model.OutcomeApplied, model.OutcomeSkipped, model.OutcomeFailed, model.OutcomeCanceled:
		return true
	}
	return false
}

// pipelineStatus folds a settled report into one display status. A failure
// anywhere in the pipeline dominates; otherwise any commit counts as applied.
func pipelineStatus(report model.PipelineReport) string {
	switch {
	case report.Failed() > 0:
		return model.OutcomeFailed
	case report.Applied() > 0:
		return model.OutcomeApplied
	default:
		return model.OutcomeSkipped
	}
}
