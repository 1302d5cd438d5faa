package middleware

import (
	"fmt"
	"sync"

	"AlgoSensei/internal/domain/models"
	domrepo "AlgoSensei/internal/domain/repository"
)

// SnapshotFanout sits between the snapshot board and the display widgets.
// It validates each set and delivers it to every subscriber without blocking:
// a subscriber whose buffer is full loses its oldest pending set, so slow
// widgets always catch up to the newest data.
type SnapshotFanout struct {
	metrics domrepo.Metrics
	bufSize int

	mu     sync.Mutex
	subs   map[uint64]chan models.SnapshotSet
	nextID uint64
	closed bool
}

type FanoutOption func(*SnapshotFanout)

// WithBufferSize sets the per-subscriber buffer.
func WithBufferSize(n int) FanoutOption {
	return func(f *SnapshotFanout) {
		if n > 0 {
			f.bufSize = n
		}
	}
}

// NewSnapshotFanout creates a fan-out.
func NewSnapshotFanout(metrics domrepo.Metrics, opts ...FanoutOption) *SnapshotFanout {
	f := &SnapshotFanout{
		metrics: metrics,
		bufSize: 4,
		subs:    make(map[uint64]chan models.SnapshotSet),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscription is one widget's feed.
type Subscription struct {
	C <-chan models.SnapshotSet

	id     uint64
	fanout *SnapshotFanout
	once   sync.Once
}

// Close detaches the subscription and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() { s.fanout.remove(s.id) })
}

// Subscribe registers a new widget feed.
func (f *SnapshotFanout) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan models.SnapshotSet, f.bufSize)
	if f.closed {
		close(ch)
		return &Subscription{C: ch, fanout: f}
	}

	f.nextID++
	f.subs[f.nextID] = ch
	return &Subscription{C: ch, id: f.nextID, fanout: f}
}

func (f *SnapshotFanout) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ch, ok := f.subs[id]; ok {
		delete(f.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of attached feeds.
func (f *SnapshotFanout) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Publish validates set and delivers it to every subscriber.
func (f *SnapshotFanout) Publish(set models.SnapshotSet) error {
	if err := validateSet(set); err != nil {
		f.metrics.RecordPoll("fanout", "invalid")
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		for {
			select {
			case ch <- set:
			default:
				// full: drop the oldest pending set and retry
				select {
				case <-ch:
					f.metrics.RecordPoll("fanout", "dropped")
				default:
				}
				continue
			}
			break
		}
	}
	return nil
}

// Stop closes every subscription. Later Subscribe calls get an already closed feed.
func (f *SnapshotFanout) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

func validateSet(set models.SnapshotSet) error {
	if set.Sequence == 0 {
		return fmt.Errorf("snapshot set has no sequence")
	}
	for _, s := range set.Snapshots {
		if s.Symbol == "" {
			return fmt.Errorf("snapshot without symbol")
		}
		if s.Price.IsNegative() || s.Volume24h.IsNegative() {
			return fmt.Errorf("negative price/volume for %s", s.Symbol)
		}
	}
	return nil
}
