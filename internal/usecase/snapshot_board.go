package usecase

import (
	"sync"

	"AlgoSensei/internal/domain/models"
	drepo "AlgoSensei/internal/domain/repository"
	mid "AlgoSensei/internal/middleware"
	applogger "AlgoSensei/pkg/logger"
)

// SnapshotBoard holds the last good snapshot set and republishes it to widgets.
// A set is applied only when its sequence is newer than the current one, and
// subscribers receive applied sets in sequence order whatever the caller count.
type SnapshotBoard struct {
	// pubMu spans the sequence check and Publish; mu guards current for readers.
	pubMu   sync.Mutex
	mu      sync.RWMutex
	current models.SnapshotSet
	has     bool

	fanout  *mid.SnapshotFanout
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewSnapshotBoard creates an empty board.
func NewSnapshotBoard(fanout *mid.SnapshotFanout, metrics drepo.Metrics, logger *applogger.Logger) *SnapshotBoard {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SnapshotBoard{fanout: fanout, metrics: metrics, logger: logger}
}

// Apply replaces the current set when set is newer. It reports whether set was applied.
func (b *SnapshotBoard) Apply(set models.SnapshotSet) bool {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.Lock()
	if b.has && set.Sequence <= b.current.Sequence {
		b.mu.Unlock()
		return false
	}
	b.current = set
	b.has = true
	b.mu.Unlock()

	for _, s := range set.Snapshots {
		b.metrics.RecordLastPrice(s.Symbol, s.Price.InexactFloat64())
	}
	if b.fanout != nil {
		if err := b.fanout.Publish(set); err != nil {
			b.logger.Warn("snapshot fan-out rejected set", applogger.Uint64("sequence", set.Sequence), applogger.Error(err))
		}
	}
	return true
}

// Latest returns the current set; ok is false until the first successful fetch.
func (b *SnapshotBoard) Latest() (models.SnapshotSet, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current, b.has
}

// Subscribe attaches a widget feed.
func (b *SnapshotBoard) Subscribe() *mid.Subscription {
	return b.fanout.Subscribe()
}
