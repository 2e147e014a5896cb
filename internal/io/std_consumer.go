package io

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
)

type StandardConsumer struct{}

func NewStandardConsumer() *StandardConsumer {
	return &StandardConsumer{}
}

// Continually consumes WorkUnits submitted to a work channel, settling the result of each one.
// Continues working until the work channel is closed.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	for work := range workchan {
		c.doWork(work)
	}
}

func (c *StandardConsumer) doWork(work *WorkUnit) {
	defer work.release()

	if err := work.Ctx.Err(); err != nil {
		work.Result.Reject(err)
		return
	}

	data, err := c.load(work)
	if err != nil {
		glog.V(1).Infof("load of %s failed: %v", work.URL, err)
		work.Result.Reject(err)
		return
	}
	work.Result.Resolve(data)
}

// A panicking loader rejects its own request instead of taking the worker down
func (c *StandardConsumer) load(work *WorkUnit) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load of %s panicked: %v", work.URL, r)
		}
	}()
	return work.Load(work.Ctx, work.URL)
}
