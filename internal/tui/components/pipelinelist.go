package components

import (
	"github.com/glimmerlabs/glimmer/internal/model"
)

// PipelineEntry represents a single element pipeline for rendering.
type PipelineEntry struct {
	ID     string
	Target string
	Status string
	Report model.PipelineReport
}

// Label returns the display name for the entry, preferring the target
// selector over the generation id.
func (e PipelineEntry) Label() string {
	if e.Target != "" {
		return e.Target
	}
	return e.ID
}

// PipelineList renders element pipelines with their current status.
type PipelineList struct {
	entries []PipelineEntry
}

// NewPipelineList constructs a pipeline list component in document order.
func NewPipelineList(order []string, pipelines map[string]PipelineEntry) PipelineList {
	entries := make([]PipelineEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, pipelines[id])
	}
	return PipelineList{entries: entries}
}

// Entries returns the ordered pipeline entries.
func (l PipelineList) Entries() []PipelineEntry {
	clone := make([]PipelineEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
