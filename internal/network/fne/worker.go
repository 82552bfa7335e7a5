package fne

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/keystone-rf/p25ctrl/internal/p25const"
)

// WorkerPool drains a Ring with a fixed number of concurrent workers,
// decoupling the UDP reader from per-protocol frame processing, grounded
// on internal/cmd/root.go's errgroup-supervised task startup.
type WorkerPool struct {
	ring    *Ring
	workers int
	handle  func([]byte) error
}

// NewWorkerPool builds a pool of the given size (default
// p25const.DefaultWorkerPoolSize when n <= 0) draining ring into handle.
func NewWorkerPool(ring *Ring, n int, handle func([]byte) error) *WorkerPool {
	if n <= 0 {
		n = p25const.DefaultWorkerPoolSize
	}
	return &WorkerPool{ring: ring, workers: n, handle: handle}
}

// Run drains the ring until ctx is cancelled or the ring goes empty and
// stays empty across a full worker sweep, returning the first handler
// error encountered (if any), per errgroup's fail-fast group semantics.
func (w *WorkerPool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				data, ok := w.ring.Pop()
				if !ok {
					return nil
				}
				if err := w.handle(data); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
