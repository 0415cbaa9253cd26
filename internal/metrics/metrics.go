package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_events_written_total",
		Help: "Total number of events persisted, labelled by accepting tier.",
	}, []string{"tier"})

	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_enqueued_total",
		Help: "Total number of events placed on the ingest queue.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_dropped_total",
		Help: "Total number of async events rejected due to a full queue.",
	})

	EventReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_event_reads_total",
		Help: "Total number of event log reads, labelled by serving tier.",
	}, []string{"tier"})

	Migrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beacon_migrations_total",
		Help: "Total number of local-to-remote migration attempts, labelled by outcome.",
	}, []string{"outcome"})

	RemoteProbeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beacon_remote_probe_failures_total",
		Help: "Total number of failed remote tier liveness probes.",
	})

	WriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "beacon_event_write_duration_ms",
		Help:    "Tier-cascade write latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_ingest_queue_utilization_ratio",
		Help: "Current ingest queue utilization (0–1).",
	})
)
