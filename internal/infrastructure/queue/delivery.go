package queue

import (
	"sync"

	"github.com/providex/supplier-registry/internal/core/ports"
)

// Delivery feeds snapshots to one handler on a dedicated goroutine, in the
// order they were pushed. Push never blocks: pending snapshots queue without
// bound, so a slow handler delays delivery but never stalls the producer or
// loses a snapshot.
type Delivery struct {
	handler ports.SnapshotHandler

	mu      sync.Mutex
	pending []ports.Snapshot
	stopped bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewDelivery starts the worker goroutine for handler.
func NewDelivery(handler ports.SnapshotHandler) *Delivery {
	d := &Delivery{
		handler: handler,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Push queues s for delivery. It reports false once the delivery is stopped.
func (d *Delivery) Push(s ports.Snapshot) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.pending = append(d.pending, s)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Stop discards pending snapshots and ends the worker. A handler call that is
// already running finishes; no new call starts. Idempotent, and safe to call
// from inside the handler.
func (d *Delivery) Stop() {
	d.once.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.pending = nil
		d.mu.Unlock()
		close(d.stop)
	})
}

// Stopped reports whether Stop has been called or a terminal error delivered.
func (d *Delivery) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Done is closed when the worker goroutine has returned.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

func (d *Delivery) run() {
	defer close(d.done)
	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
		}

		for {
			s, ok := d.next()
			if !ok {
				break
			}
			d.handler(s.Suppliers, s.Err)
			// An error snapshot is terminal for the subscription.
			if s.Err != nil {
				d.Stop()
				return
			}
		}
	}
}

func (d *Delivery) next() (ports.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return ports.Snapshot{}, false
	}
	s := d.pending[0]
	d.pending[0] = ports.Snapshot{}
	d.pending = d.pending[1:]
	return s, true
}
