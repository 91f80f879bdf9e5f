// Package serial provides the critical section that ledger operations run in.
//
// A Serializer admits one function at a time. Waiters are admitted in arrival
// order: the lock is a single-slot channel and the Go runtime queues blocked
// senders FIFO, so no waiter can be overtaken indefinitely.
package serial

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	waitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "serializer_wait_seconds",
			Help:      "Time spent waiting to enter the ledger critical section",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"name"},
	)
	holdSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "serializer_hold_seconds",
			Help:      "Time spent inside the ledger critical section",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"name"},
	)
)

// Serializer runs functions one at a time.
type Serializer struct {
	name string
	slot chan struct{}
}

// New returns a Serializer. name labels its metrics.
func New(name string) *Serializer {
	return &Serializer{name: name, slot: make(chan struct{}, 1)}
}

// Do waits for exclusive access and runs fn. If ctx ends while waiting, fn is not run
// and ctx.Err() is returned. Once fn starts it runs to completion; fn receives ctx and
// decides itself how to react to cancellation.
func (s *Serializer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	entered := time.Now()
	waitSeconds.WithLabelValues(s.name).Observe(entered.Sub(start).Seconds())
	defer func() {
		holdSeconds.WithLabelValues(s.name).Observe(time.Since(entered).Seconds())
		<-s.slot
	}()
	return fn(ctx)
}
