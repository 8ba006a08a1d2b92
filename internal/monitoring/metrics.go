package monitoring

import (
	"time"

	"gauntlet-queue/internal/constants"
	"gauntlet-queue/internal/domain"
	"gauntlet-queue/internal/queue"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Players currently waiting, per variant and role",
		},
		[]string{"variant", "role"},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_operations_total",
			Help: "Queue joins and leaves",
		},
		[]string{"operation", "variant", "status"},
	)

	matchesFormed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_formed_total",
			Help: "Matches formed from the queue",
		},
		[]string{"variant"},
	)

	resultsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_recorded_total",
			Help: "Match results recorded",
		},
		[]string{"outcome"},
	)

	ratingUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_updates_total",
			Help: "Per-player rating writes applied",
		},
		[]string{"role"},
	)
)

// Monitor samples queue depth on a ticker and exposes counters for the
// services to track operations.
type Monitor struct {
	store  *queue.Store
	logger zerolog.Logger
}

func NewMonitor(store *queue.Store, logger zerolog.Logger) *Monitor {
	m := &Monitor{store: store, logger: logger}
	go m.collect()
	return m
}

func (m *Monitor) collect() {
	ticker := time.NewTicker(constants.QueueMetricsInterval)
	defer ticker.Stop()

	for range ticker.C {
		for _, variant := range domain.AllVariants {
			counts := m.store.Counts(variant)
			for _, role := range domain.AllRoles {
				queueDepth.WithLabelValues(string(variant), string(role)).Set(float64(counts[role]))
			}
		}
	}
}

func (m *Monitor) TrackQueueOperation(operation string, variant domain.Variant, status string) {
	queueOperations.WithLabelValues(operation, string(variant), status).Inc()
}

func (m *Monitor) TrackMatchFormed(variant domain.Variant) {
	matchesFormed.WithLabelValues(string(variant)).Inc()
}

func (m *Monitor) TrackResultRecorded(outcome domain.MatchOutcome) {
	resultsRecorded.WithLabelValues(string(outcome)).Inc()
}

func (m *Monitor) TrackRatingUpdate(role domain.Role) {
	ratingUpdates.WithLabelValues(string(role)).Inc()
}
