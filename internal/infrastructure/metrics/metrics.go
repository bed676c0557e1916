package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pool_builder"

// Collector exposes pipeline and run metrics to Prometheus. It satisfies both
// pool.Metrics and scheduler.RunMetrics.
type Collector struct {
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runsInFlight    prometheus.Gauge
	lastSuccess     prometheus.Gauge
	profilesScanned prometheus.Counter
	excluded        *prometheus.CounterVec
	accepted        prometheus.Counter
	dropped         prometheus.Counter
	poolsWritten    prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	m := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Finished pool build runs by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of pool build runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 240, 420, 540, 600},
			},
			[]string{"trigger"},
		),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Pool build runs currently executing",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		profilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_scanned_total",
			Help:      "Profile records read from the profile store",
		}),
		excluded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profiles_excluded_total",
				Help:      "Profiles left out of every pool, by reason",
			},
			[]string{"reason"},
		),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_accepted_total",
			Help:      "Members placed into a pool",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_dropped_total",
			Help:      "Eligible members dropped because their pool was full",
		}),
		poolsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pools_written_total",
			Help:      "Pools committed to the pool store",
		}),
	}

	reg.MustRegister(
		m.runs, m.runDuration, m.runsInFlight, m.lastSuccess,
		m.profilesScanned, m.excluded, m.accepted, m.dropped, m.poolsWritten,
	)
	return m
}

func (m *Collector) ProfilesScanned(n int)  { m.profilesScanned.Add(float64(n)) }
func (m *Collector) Excluded(reason string) { m.excluded.WithLabelValues(reason).Inc() }
func (m *Collector) MemberAccepted()        { m.accepted.Inc() }
func (m *Collector) MemberDropped()         { m.dropped.Inc() }
func (m *Collector) PoolsWritten(n int)     { m.poolsWritten.Add(float64(n)) }

func (m *Collector) RunStarted(string) {
	m.runsInFlight.Inc()
}

func (m *Collector) RunFinished(trigger, outcome string, duration time.Duration, finishedAt time.Time) {
	m.runsInFlight.Dec()
	m.runs.WithLabelValues(trigger, outcome).Inc()
	m.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if outcome == "succeeded" {
		m.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}
