package model

import (
	"time"
)

// PipelineReport describes one enhancement pipeline over a single element.
type PipelineReport struct {
	PipelineID string
	Target     string
	Tag        string
	Source     string
	Token      string
	Outcomes   []PluginOutcome
	Duration   time.Duration
	Timestamp  time.Time
}

// Applied counts plugins whose decisions were committed.
func (r PipelineReport) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeApplied {
			n++
		}
	}
	return n
}

// Failed counts plugins that settled with an error.
func (r PipelineReport) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			n++
		}
	}
	return n
}

// DocumentReport aggregates pipeline reports across one document pass.
type DocumentReport struct {
	Targets   int
	Enhanced  int
	Failed    int
	Pipelines []PipelineReport
	Duration  time.Duration
}

// Add appends a pipeline report and updates counters.
func (d *DocumentReport) Add(report PipelineReport) {
	d.Pipelines = append(d.Pipelines, report)
	d.Targets++
	if report.Failed() > 0 {
		d.Failed++
		return
	}
	if report.Applied() > 0 {
		d.Enhanced++
	}
}

// Clean reports whether every pipeline finished without failures.
func (d DocumentReport) Clean() bool {
	return d.Failed == 0
}

// ExitCode maps the report to a process exit code.
func (d DocumentReport) ExitCode() int {
	if d.Clean() {
		return 0
	}
	return 1
}
