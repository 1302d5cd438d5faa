package usecase

import (
	"context"
	"sync"
	"time"

	"AlgoSensei/internal/domain/models"
	mid "AlgoSensei/internal/middleware"
)

// MarketFeed runs the configured poll loop into a SnapshotBoard and serves the
// HTTP layer: latest snapshots, manual refresh, history and widget subscriptions.
type MarketFeed struct {
	poller   *MarketPoller
	board    *SnapshotBoard
	symbols  []string
	interval time.Duration

	mu     sync.Mutex
	handle *PollHandle
}

// NewMarketFeed creates a feed that is idle until Start.
func NewMarketFeed(poller *MarketPoller, board *SnapshotBoard, symbols []string, interval time.Duration) *MarketFeed {
	return &MarketFeed{
		poller:   poller,
		board:    board,
		symbols:  append([]string(nil), symbols...),
		interval: interval,
	}
}

// Start begins polling. A second Start while running is ignored.
func (f *MarketFeed) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handle != nil {
		return
	}
	f.handle = f.poller.StartPolling(ctx, f.symbols, f.interval, func(set models.SnapshotSet) {
		f.board.Apply(set)
	})
}

// Stop ends polling; after it returns the board no longer changes.
func (f *MarketFeed) Stop() {
	f.mu.Lock()
	h := f.handle
	f.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

// Refresh runs one out-of-band fetch. It fails with ErrPollerStopped before Start or after Stop.
func (f *MarketFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	h := f.handle
	f.mu.Unlock()
	if h == nil {
		return ErrPollerStopped
	}
	return h.Refresh(ctx)
}

// Latest returns the last good snapshot set.
func (f *MarketFeed) Latest() (models.SnapshotSet, bool) {
	return f.board.Latest()
}

// Symbols returns the polled symbols in display order.
func (f *MarketFeed) Symbols() []string {
	return append([]string(nil), f.symbols...)
}

// History fetches one batch of candles for symbol.
func (f *MarketFeed) History(ctx context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error) {
	return f.poller.FetchHistory(ctx, symbol, interval, limit)
}

// Subscribe attaches a widget feed to the board.
func (f *MarketFeed) Subscribe() *mid.Subscription {
	return f.board.Subscribe()
}
