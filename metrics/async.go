package metrics

import (
	"context"
	"sync"
	"sync/atomic"
)

// AsyncClient decouples callers from a slow inner client. Writes go through a
// bounded channel; when the channel is full the record is dropped and counted
// instead of blocking the caller.
type AsyncClient struct {
	inner   Client
	ch      chan Record
	dropped int64
	closed  atomic.Bool
	once    sync.Once
	done    chan struct{}
}

func NewAsyncClient(inner Client, buffer int) *AsyncClient {
	if buffer <= 0 {
		buffer = 256
	}
	a := &AsyncClient{
		inner: inner,
		ch:    make(chan Record, buffer),
		done:  make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *AsyncClient) WriteMetric(_ context.Context, rec Record) error {
	if a == nil || a.closed.Load() {
		return nil
	}
	select {
	case a.ch <- rec:
	default:
		atomic.AddInt64(&a.dropped, 1)
	}
	return nil
}

func (a *AsyncClient) Dropped() int64 {
	return atomic.LoadInt64(&a.dropped)
}

// Close stops the send loop after draining buffered records.
func (a *AsyncClient) Close() {
	if a == nil {
		return
	}
	a.once.Do(func() {
		a.closed.Store(true)
		close(a.ch)
		<-a.done
	})
}

func (a *AsyncClient) loop() {
	defer close(a.done)
	for rec := range a.ch {
		// write failures are best-effort by contract
		_ = a.inner.WriteMetric(context.Background(), rec)
	}
}
