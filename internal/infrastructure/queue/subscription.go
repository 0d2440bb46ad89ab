package queue

import "sync"

// Subscription pairs a Delivery with the release of whatever produces its
// snapshots (a change-feed listener, an in-memory subscriber slot).
type Subscription struct {
	delivery *Delivery
	release  func()
	once     sync.Once
}

// NewSubscription returns a handle whose Cancel stops d and then calls release once.
func NewSubscription(d *Delivery, release func()) *Subscription {
	return &Subscription{delivery: d, release: release}
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.delivery.Stop()
		if s.release != nil {
			s.release()
		}
	})
}

func (s *Subscription) Done() <-chan struct{} {
	return s.delivery.Done()
}
