package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tasksEnqueued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "palisade_dispatch_tasks_enqueued",
	Help: "Number of tasks handed to the deep analysis queue",
})

var tasksDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "palisade_dispatch_tasks_dropped",
	Help: "Number of tasks dropped because the deep analysis queue was unavailable or full",
})
