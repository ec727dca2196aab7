package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type TestError struct {
	msg string
}

func (e *TestError) Error() string {
	return e.msg
}

func TestPluginOutcomeCreation(t *testing.T) {
	t.Parallel()

	t.Run("creates outcome with all fields", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		outcome := PluginOutcome{
			Plugin:    "responsive",
			Status:    OutcomeApplied,
			Attribute: "src",
			Value:     "https://media.example.com/demo/w_800/hero.jpg",
			Message:   "committed width-adjusted source",
			Duration:  time.Millisecond * 12,
			Timestamp: now,
		}

		require.Equal(t, "responsive", outcome.Plugin)
		require.Equal(t, OutcomeApplied, outcome.Status)
		require.Equal(t, "src", outcome.Attribute)
		require.Equal(t, time.Millisecond*12, outcome.Duration)
		require.Equal(t, now, outcome.Timestamp)
		require.True(t, outcome.Committed())
	})

	t.Run("creates outcome with error", func(t *testing.T) {
		t.Parallel()
		err := &TestError{msg: "probe failed"}
		outcome := PluginOutcome{
			Plugin: "placeholder",
			Status: OutcomeFailed,
			Error:  err,
		}

		require.Equal(t, "placeholder", outcome.Plugin)
		require.Equal(t, OutcomeFailed, outcome.Status)
		require.Equal(t, err, outcome.Error)
		require.False(t, outcome.Committed())
	})

	t.Run("canceled outcome is not committed", func(t *testing.T) {
		t.Parallel()
		outcome := PluginOutcome{Plugin: "lazyload", Status: OutcomeCanceled}
		require.False(t, outcome.Committed())
	})
}

func TestOutcomeConstants(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pending", OutcomePending)
	require.Equal(t, "running", OutcomeRunning)
	require.Equal(t, "applied", OutcomeApplied)
	require.Equal(t, "canceled", OutcomeCanceled)
	require.Equal(t, "failed", OutcomeFailed)
	require.Equal(t, "skipped", OutcomeSkipped)
}

func TestPipelineReportCounters(t *testing.T) {
	t.Parallel()

	report := PipelineReport{
		PipelineID: "p-1",
		Target:     "img hero.jpg",
		Outcomes: []PluginOutcome{
			{Plugin: "responsive", Status: OutcomeApplied, Attribute: "src"},
			{Plugin: "accessibility", Status: OutcomeApplied, Attribute: "alt"},
			{Plugin: "placeholder", Status: OutcomeCanceled},
			{Plugin: "lazyload", Status: OutcomeFailed, Error: &TestError{msg: "boom"}},
		},
	}

	require.Equal(t, 2, report.Applied())
	require.Equal(t, 1, report.Failed())
}

func TestDocumentReportAdd(t *testing.T) {
	t.Parallel()

	t.Run("counts enhanced pipelines", func(t *testing.T) {
		t.Parallel()
		var doc DocumentReport
		doc.Add(PipelineReport{Outcomes: []PluginOutcome{{Status: OutcomeApplied}}})
		doc.Add(PipelineReport{Outcomes: []PluginOutcome{{Status: OutcomeCanceled}}})

		require.Equal(t, 2, doc.Targets)
		require.Equal(t, 1, doc.Enhanced)
		require.Zero(t, doc.Failed)
		require.True(t, doc.Clean())
		require.Equal(t, 0, doc.ExitCode())
	})

	t.Run("failure wins over applied", func(t *testing.T) {
		t.Parallel()
		var doc DocumentReport
		doc.Add(PipelineReport{Outcomes: []PluginOutcome{
			{Status: OutcomeApplied},
			{Status: OutcomeFailed},
		}})

		require.Equal(t, 1, doc.Targets)
		require.Zero(t, doc.Enhanced)
		require.Equal(t, 1, doc.Failed)
		require.False(t, doc.Clean())
		require.Equal(t, 1, doc.ExitCode())
	})

	t.Run("zero pipelines is clean", func(t *testing.T) {
		t.Parallel()
		var doc DocumentReport
		require.True(t, doc.Clean())
		require.Equal(t, 0, doc.ExitCode())
	})
}
