package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveTransition("READY")
	m.ObserveDecode(time.Now(), 3, nil)
	m.ObserveFetch(10)
	m.ObserveCacheLookup("badger", true)
	m.ObserveThrottled()
	m.RequestStarted()
	m.RequestFinished()
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTransition("LOADING")
	m.ObserveTransition("LOADING")
	m.ObserveTransition("READY")
	m.ObserveDecode(time.Now(), 5, nil)
	m.ObserveDecode(time.Now(), 5, errors.New("bad"))
	m.ObserveCacheLookup("redis", false)
	m.RequestStarted()
	m.RequestStarted()
	m.RequestFinished()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("LOADING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("READY")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.instancesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("redis", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inflight))
}
