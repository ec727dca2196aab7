package model

import (
	"time"
)

const (
	// OutcomePending indicates a plugin has not started yet.
	OutcomePending = "pending"
	// OutcomeRunning indicates a plugin is actively executing.
	OutcomeRunning = "running"
	// OutcomeApplied marks a plugin whose decision was committed.
	OutcomeApplied = "applied"
	// OutcomeCanceled marks a plugin stopped before settling.
	OutcomeCanceled = "canceled"
	// OutcomeFailed marks a plugin that settled with an error.
	OutcomeFailed = "failed"
	// OutcomeSkipped indicates a plugin did not apply to the target.
	OutcomeSkipped = "skipped"
)

// PluginOutcome captures how a single plugin finished within one pipeline.
type PluginOutcome struct {
	Plugin    string
	Status    string
	Attribute string
	Value     string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Committed reports whether the plugin produced an attribute commit.
func (o PluginOutcome) Committed() bool {
	return o.Status == OutcomeApplied && o.Attribute != ""
}
