package engine

import (
	"context"
	"sync"
)

// Dispatcher runs updates concurrently across users while keeping each
// user's updates in arrival order. A worker goroutine exists per user only
// while that user has queued updates.
type Dispatcher struct {
	handle func(context.Context, Update)

	mu     sync.Mutex
	queues map[int64][]Update
	wg     sync.WaitGroup
}

func NewDispatcher(handle func(context.Context, Update)) *Dispatcher {
	return &Dispatcher{handle: handle, queues: map[int64][]Update{}}
}

// Submit queues upd behind any pending updates with the same key.
func (d *Dispatcher) Submit(ctx context.Context, upd Update) {
	key := upd.From.ID
	d.mu.Lock()
	q, busy := d.queues[key]
	d.queues[key] = append(q, upd)
	d.mu.Unlock()
	if busy {
		return
	}

	d.wg.Add(1)
	go d.drain(ctx, key)
}

func (d *Dispatcher) drain(ctx context.Context, key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		upd := q[0]
		d.queues[key] = q[1:]
		d.mu.Unlock()

		d.handle(ctx, upd)
	}
}

// Wait blocks until every queued update has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
