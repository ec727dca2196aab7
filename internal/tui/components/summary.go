package components

import (
	"fmt"
	"strings"
)

// AuditStatus represents one audit check outcome for summary rendering.
type AuditStatus struct {
	Passed  bool
	Message string
}

// SummaryData aggregates counts for rendering pass summaries.
type SummaryData struct {
	Total     int
	Completed int
	Finished  bool
	Cancelled bool
	Audits    []AuditStatus
}

// Summary renders a textual document pass summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Pipelines: %d/%d settled", s.data.Completed, s.data.Total))
	}

	if s.data.Cancelled {
		lines = append(lines, "Pass cancelled")
	} else if s.data.Finished && s.data.Total > 0 {
		if s.data.Completed == s.data.Total {
			lines = append(lines, "Pass finished")
		} else {
			lines = append(lines, "Pass finished with unsettled pipelines")
		}
	}

	if len(s.data.Audits) > 0 {
		lines = append(lines, "Audit:")
		for _, a := range s.data.Audits {
			status := "✗"
			if a.Passed {
				status = "✓"
			}
			lines = append(lines, fmt.Sprintf("  %s %s", status, a.Message))
		}
	}

	return strings.Join(lines, "\n")
}
