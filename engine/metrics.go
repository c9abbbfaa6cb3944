package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "palisade_analysis_duration_sec",
	Help: "Total duration of post analysis",
}, []string{"platform"})

var analysisCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "palisade_analysis_processed",
	Help: "Number of posts analyzed, by decision",
}, []string{"platform", "action"})

var analysisErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "palisade_analysis_errors",
	Help: "Number of analyses which failed structurally",
}, []string{"kind"})

var notifyErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "palisade_notify_errors",
	Help: "Number of failed downstream notifications for flagged posts",
}, []string{"sink"})
