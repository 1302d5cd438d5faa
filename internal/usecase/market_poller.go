package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"AlgoSensei/internal/domain/errs"
	"AlgoSensei/internal/domain/models"
	drepo "AlgoSensei/internal/domain/repository"
	applogger "AlgoSensei/pkg/logger"
	"AlgoSensei/pkg/util"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPollerStopped is returned by Refresh after Stop.
	ErrPollerStopped = errors.New("poller stopped")
	// ErrInvalidInterval is returned for an unsupported candle interval.
	ErrInvalidInterval = errors.New("invalid kline interval")
	// ErrInvalidLimit is returned for a history limit outside 1..1000.
	ErrInvalidLimit = errors.New("history limit must be within 1..1000")
)

const maxHistoryLimit = 1000

// DefaultPollInterval replaces a non-positive StartPolling interval.
const DefaultPollInterval = 30 * time.Second

// Ticker is the scheduling clock of a poll loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the real-clock TickerFactory.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// MarketPoller fetches market snapshots and history from a MarketSource.
type MarketPoller struct {
	source    drepo.MarketSource
	metrics   drepo.Metrics
	logger    *applogger.Logger
	timeout   time.Duration
	newTicker TickerFactory
	now       func() time.Time
}

// PollerOption configures MarketPoller.
type PollerOption func(*MarketPoller)

// WithFetchTimeout bounds one fetch cycle.
func WithFetchTimeout(d time.Duration) PollerOption {
	return func(p *MarketPoller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTicker replaces the scheduling clock.
func WithTicker(f TickerFactory) PollerOption {
	return func(p *MarketPoller) {
		if f != nil {
			p.newTicker = f
		}
	}
}

// NewMarketPoller creates a poller.
func NewMarketPoller(source drepo.MarketSource, metrics drepo.Metrics, logger *applogger.Logger, opts ...PollerOption) *MarketPoller {
	if logger == nil {
		logger = applogger.Nop()
	}
	p := &MarketPoller{
		source:    source,
		metrics:   metrics,
		logger:    logger,
		timeout:   10 * time.Second,
		newTicker: NewTimeTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchSnapshots requests every symbol concurrently and returns the snapshots in input order.
// Any single failure fails the whole batch with an *errs.FetchError.
func (p *MarketPoller) FetchSnapshots(ctx context.Context, symbols []string) ([]models.MarketSnapshot, error) {
	out := make([]models.MarketSnapshot, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	start := p.now()
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			snap, err := p.source.Ticker(gctx, symbol)
			if err != nil {
				return asFetchError(symbol, err)
			}
			out[i] = *snap
			return nil
		})
	}
	err := g.Wait()
	p.metrics.RecordLatency("fetch_snapshots", p.now().Sub(start).Seconds())
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchHistory fetches one batch of candles. interval must be 1m..1M and limit 1..1000.
func (p *MarketPoller) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]models.HistoricalBar, error) {
	if !util.ValidInterval(interval) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
	if limit < 1 || limit > maxHistoryLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	start := p.now()
	bars, err := p.source.Klines(ctx, symbol, interval, limit)
	p.metrics.RecordLatency("fetch_history", p.now().Sub(start).Seconds())
	if err != nil {
		return nil, asFetchError(symbol, err)
	}
	return bars, nil
}

func asFetchError(symbol string, err error) error {
	var fe *errs.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return errs.NewFetchError(errs.NetworkError, symbol, err)
}

// PollHandle controls one polling loop.
type PollHandle struct {
	poller   *MarketPoller
	symbols  []string
	onUpdate func(models.SnapshotSet)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	seq    atomic.Uint64

	mu          sync.Mutex
	lastApplied uint64
	stopped     bool
	stopOnce    sync.Once
}

// StartPolling fetches once immediately and then every interval until Stop.
// A non-positive interval falls back to DefaultPollInterval.
// onUpdate runs with each newer successful set; it must not call Stop.
func (p *MarketPoller) StartPolling(ctx context.Context, symbols []string, interval time.Duration, onUpdate func(models.SnapshotSet)) *PollHandle {
	if interval <= 0 {
		p.logger.Warn("non-positive poll interval, using default",
			applogger.Duration("interval_ms", interval),
			applogger.Duration("default_ms", DefaultPollInterval),
		)
		interval = DefaultPollInterval
	}
	hctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{
		poller:   p,
		symbols:  append([]string(nil), symbols...),
		onUpdate: onUpdate,
		ctx:      hctx,
		cancel:   cancel,
	}

	ticker := p.newTicker(interval)
	h.wg.Add(1)
	go h.run(ticker)

	p.logger.Info("market poller started",
		applogger.Strings("symbols", h.symbols),
		applogger.Duration("interval_ms", interval),
	)
	return h
}

func (h *PollHandle) run(ticker Ticker) {
	defer h.wg.Done()
	defer ticker.Stop()

	_ = h.cycle(h.ctx, "tick")

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C():
			_ = h.cycle(h.ctx, "tick")
		}
	}
}

// Refresh runs one out-of-band fetch and returns its error. It is bounded by both ctx and the handle.
func (h *PollHandle) Refresh(ctx context.Context) error {
	if h.isStopped() {
		return ErrPollerStopped
	}
	rctx, cancel := context.WithCancel(h.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return h.cycle(rctx, "refresh")
}

// cycle takes a sequence number before fetching so that a slow older fetch cannot
// overwrite the result of a newer one.
func (h *PollHandle) cycle(ctx context.Context, trigger string) error {
	p := h.poller
	seq := h.seq.Add(1)

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	snaps, err := p.FetchSnapshots(fctx, h.symbols)
	if h.ctx.Err() != nil {
		p.metrics.RecordPoll(trigger, "cancelled")
		return ErrPollerStopped
	}
	if err != nil {
		p.metrics.RecordPoll(trigger, "error")
		p.logger.Warn("market fetch failed, keeping previous snapshots",
			applogger.String("trigger", trigger),
			applogger.Uint64("sequence", seq),
			applogger.Error(err),
		)
		return err
	}

	set := models.SnapshotSet{Sequence: seq, FetchedAt: p.now().UTC(), Snapshots: snaps}
	if !h.deliver(set) {
		p.metrics.RecordPoll(trigger, "stale")
		p.logger.Debug("discarded stale snapshot set", applogger.Uint64("sequence", seq))
		return nil
	}
	p.metrics.RecordPoll(trigger, "ok")
	return nil
}

func (h *PollHandle) deliver(set models.SnapshotSet) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped || set.Sequence <= h.lastApplied {
		return false
	}
	h.lastApplied = set.Sequence
	if h.onUpdate != nil {
		h.onUpdate(set)
	}
	return true
}

func (h *PollHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Stop cancels in-flight fetches and ends the loop. onUpdate is never called after Stop returns.
// Stop is idempotent.
func (h *PollHandle) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		h.wg.Wait()
		h.poller.logger.Info("market poller stopped")
	})
}
