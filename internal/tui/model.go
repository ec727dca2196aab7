package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/tui/components"
)

// PassStartMsg announces a document pass and how many targets it claimed.
type PassStartMsg struct {
	Targets int
}

// PipelineStartMsg indicates that an element's pipeline has started.
type PipelineStartMsg struct {
	ID     string
	Target string
	Time   time.Time
}

// PipelineCompleteMsg reports a settled pipeline.
type PipelineCompleteMsg struct {
	Report model.PipelineReport
}

// AuditMsg carries the outcome of one audit check.
type AuditMsg struct {
	Passed  bool
	Message string
}

type tickMsg struct{}

// Model contains the Bubbletea state for glimmer's enhancement TUI.
type Model struct {
	cfg            *config.Config
	pipelines      map[string]components.PipelineEntry
	order          []string
	audits         []components.AuditStatus
	total          int
	completed      int
	finished       bool
	cancelled      bool
	nonInteractive bool
}

// NewModel constructs a TUI model for one document pass.
func NewModel(cfg *config.Config, nonInteractive bool) Model {
	return Model{
		cfg:            cfg,
		pipelines:      make(map[string]components.PipelineEntry),
		order:          make([]string, 0),
		audits:         make([]components.AuditStatus, 0),
		nonInteractive: nonInteractive,
	}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalPipelines returns the number of pipelines tracked by the model.
func (m Model) TotalPipelines() int {
	return m.total
}

// CompletedPipelines returns the number of settled pipelines.
func (m Model) CompletedPipelines() int {
	return m.completed
}

// IsFinished reports whether the pass has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

func (m *Model) ensurePipeline(id, target string) {
	if id == "" {
		return
	}
	if _, exists := m.pipelines[id]; !exists {
		m.pipelines[id] = components.PipelineEntry{ID: id, Target: target, Status: model.OutcomePending}
		m.order = append(m.order, id)
		if len(m.order) > m.total {
			m.total = len(m.order)
		}
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
