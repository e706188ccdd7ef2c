package gameaudio

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a small ambient observability surface: a handful of counters
// and a gauge, registered against whatever prometheus.Registerer the host
// provides. A nil *Metrics is always valid — every call site guards it, the
// same way Logger is optional.
type Metrics struct {
	ticksTotal        prometheus.Counter
	voicesCreated     prometheus.Counter
	voicesSwept       prometheus.Counter
	pushFailures      prometheus.Counter
	queryFailures     prometheus.Counter
	activeVoicesGauge prometheus.Gauge
}

// NewMetrics constructs and registers the service's metrics against reg. If
// reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gameaudio_ticks_total",
			Help: "Number of mixer ticks that produced audio.",
		}),
		voicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gameaudio_voices_created_total",
			Help: "Number of voices created via PlayBackground/PlayEffect.",
		}),
		voicesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gameaudio_voices_swept_total",
			Help: "Number of voices destroyed by end-of-tick sweep.",
		}),
		pushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gameaudio_push_failures_total",
			Help: "Number of device PushBytes failures during Tick.",
		}),
		queryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gameaudio_query_failures_total",
			Help: "Number of device QueuedBytes failures during Tick.",
		}),
		activeVoicesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gameaudio_active_voices",
			Help: "Current number of live voices (background + effects).",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.ticksTotal, m.voicesCreated, m.voicesSwept,
		m.pushFailures, m.queryFailures, m.activeVoicesGauge,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) tick() {
	if m != nil {
		m.ticksTotal.Inc()
	}
}

func (m *Metrics) voiceCreated() {
	if m != nil {
		m.voicesCreated.Inc()
	}
}

func (m *Metrics) voicesSweptBy(n int) {
	if m != nil && n > 0 {
		m.voicesSwept.Add(float64(n))
	}
}

func (m *Metrics) pushFailure() {
	if m != nil {
		m.pushFailures.Inc()
	}
}

func (m *Metrics) queryFailure() {
	if m != nil {
		m.queryFailures.Inc()
	}
}

func (m *Metrics) setActiveVoices(n int) {
	if m != nil {
		m.activeVoicesGauge.Set(float64(n))
	}
}
