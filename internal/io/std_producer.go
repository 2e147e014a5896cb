package io

import (
	"context"
	"sync"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/golang/glog"
	"golang.org/x/sync/semaphore"
)

// StandardProducer limits the number of outstanding requests. A slot is held from the moment a request is
// granted until its load settles, so the work channel never holds more than maxRequests units and
// submitting never blocks.
type StandardProducer struct {
	slots   *semaphore.Weighted
	work    chan *WorkUnit
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Starts workers consumers serving at most maxRequests outstanding requests
func NewStandardProducer(maxRequests, workers int, m *metrics.Metrics) *StandardProducer {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if workers < 1 {
		workers = 1
	}
	p := &StandardProducer{
		slots:   semaphore.NewWeighted(int64(maxRequests)),
		work:    make(chan *WorkUnit, maxRequests),
		metrics: m,
	}

	consumer := NewStandardConsumer()
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go consumer.Consume(p.work, &p.wg)
	}
	glog.V(1).Infof("request throttle started: %d slots, %d workers", maxRequests, workers)
	return p
}

// Returns false without calling load when every slot is taken or the producer is closed
func (p *StandardProducer) Throttle(ctx context.Context, url string, load fetch.LoadFunc) (*future.Future[[]byte], bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || !p.slots.TryAcquire(1) {
		p.metrics.ObserveThrottled()
		return nil, false
	}

	p.metrics.RequestStarted()
	unit := &WorkUnit{
		Ctx:    ctx,
		URL:    url,
		Load:   load,
		Result: future.New[[]byte](),
		release: func() {
			p.metrics.RequestFinished()
			p.slots.Release(1)
		},
	}
	p.work <- unit
	return unit.Result, true
}

// Stops accepting requests and waits for the consumers to drain the submitted work
func (p *StandardProducer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
}
