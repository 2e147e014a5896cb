package metrics

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "i3dm"

// Metrics groups the collectors of the loader. All methods are safe on a nil receiver so components can
// run without metrics.
type Metrics struct {
	transitions      *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	decodeDuration   prometheus.Histogram
	instancesDecoded prometheus.Counter
	fetchedBytes     prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	throttled        prometheus.Counter
	inflight         prometheus.Gauge
}

// Builds the collectors and registers them in reg. A nil registerer leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_transitions_total",
			Help:      "Content state transitions, by target state.",
		}, []string{"state"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Payloads rejected by the decoder.",
		}),
		decodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Time spent decoding a payload and computing instance placements.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		instancesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_decoded_total",
			Help:      "Instances placed from decoded payloads.",
		}),
		fetchedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_bytes_total",
			Help:      "Bytes fetched from the network or the file system, before inflating.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups, by store and result.",
		}, []string{"store", "result"}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_throttled_total",
			Help:      "Requests refused because no slot was available.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_inflight",
			Help:      "Requests holding a slot.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.transitions, m.decodeErrors, m.decodeDuration, m.instancesDecoded,
			m.fetchedBytes, m.cacheLookups, m.throttled, m.inflight)
	}
	return m
}

func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveDecode(start time.Time, instances int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.decodeErrors.Inc()
		return
	}
	m.decodeDuration.Observe(time.Since(start).Seconds())
	m.instancesDecoded.Add(float64(instances))
}

func (m *Metrics) ObserveFetch(bytes int) {
	if m == nil {
		return
	}
	m.fetchedBytes.Add(float64(bytes))
}

func (m *Metrics) ObserveCacheLookup(store string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(store, result).Inc()
}

func (m *Metrics) ObserveThrottled() {
	if m == nil {
		return
	}
	m.throttled.Inc()
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

func (m *Metrics) RequestFinished() {
	if m == nil {
		return
	}
	m.inflight.Dec()
}

// Serves the default registry on addr, e.g. ":2112". Non-blocking.
func StartHTTP(addr string) {
	go func() {
		glog.Infof("prometheus metrics available at %s/metrics", addr)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			glog.Errorf("metrics http server stopped: %v", err)
		}
	}()
}
