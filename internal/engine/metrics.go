package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelinesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimmer_pipelines_started_total",
			Help: "Total number of enhancement pipeline generations started.",
		},
		[]string{"tag"},
	)

	pluginSettlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimmer_plugin_settlements_total",
			Help: "Total number of plugin settlements by outcome.",
		},
		[]string{"plugin", "outcome"},
	)

	attributeCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimmer_attribute_commits_total",
			Help: "Total number of plugin-driven attribute commits.",
		},
		[]string{"attribute"},
	)

	pipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glimmer_pipeline_duration_seconds",
			Help:    "Time from generation start until every plugin settled.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tag"},
	)
)

func init() {
	prometheus.MustRegister(pipelinesStarted)
	prometheus.MustRegister(pluginSettlements)
	prometheus.MustRegister(attributeCommits)
	prometheus.MustRegister(pipelineDuration)
}
