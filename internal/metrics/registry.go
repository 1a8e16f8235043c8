package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"universe-backtest/internal/model"
)

// Registry holds the reconciler's Prometheus metrics. It implements
// reconcile.Recorder.
type Registry struct {
	Actions         *prometheus.CounterVec
	SuppressedClose prometheus.Counter
	DeferredBatches prometheus.Counter
	ReplacedDeltas  prometheus.Counter
	PendingDelta    prometheus.Gauge
	DelistedSymbols prometheus.Gauge
}

// NewRegistry creates the metrics and registers them on reg. A nil reg skips
// registration, which is convenient for one-off runs and tests.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "universe_lifecycle_actions_total",
				Help: "Lifecycle actions emitted by the reconciler, by direction",
			},
			[]string{"direction"},
		),
		SuppressedClose: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "universe_suppressed_closes_total",
			Help: "Close actions skipped because the symbol was already delisted",
		}),
		DeferredBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "universe_deferred_batches_total",
			Help: "Data batches on which a pending delta was not yet ready",
		}),
		ReplacedDeltas: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "universe_replaced_deltas_total",
			Help: "Pending deltas discarded in favour of a newer one",
		}),
		PendingDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "universe_pending_delta",
			Help: "1 while a membership delta awaits confirmation",
		}),
		DelistedSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "universe_delisted_symbols",
			Help: "Symbols known to be delisted",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.Actions,
			r.SuppressedClose,
			r.DeferredBatches,
			r.ReplacedDeltas,
			r.PendingDelta,
			r.DelistedSymbols,
		)
	}
	return r
}

func (r *Registry) ActionEmitted(d model.Direction) {
	r.Actions.WithLabelValues(string(d)).Inc()
}

func (r *Registry) CloseSuppressed(model.Symbol) { r.SuppressedClose.Inc() }

func (r *Registry) BatchDeferred() { r.DeferredBatches.Inc() }

func (r *Registry) DeltaReplaced() { r.ReplacedDeltas.Inc() }

func (r *Registry) StateChanged(pending bool, delisted int) {
	if pending {
		r.PendingDelta.Set(1)
	} else {
		r.PendingDelta.Set(0)
	}
	r.DelistedSymbols.Set(float64(delisted))
}
