package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"CafeteriaScanner/internal/domain"
	"CafeteriaScanner/internal/extraction"
	"CafeteriaScanner/internal/ports"
	"CafeteriaScanner/internal/stats"
	"CafeteriaScanner/internal/store"
)

// SyncStatus is a consistent snapshot of scheduler state for observers.
type SyncStatus struct {
	IsSyncing       bool
	LastSyncTime    time.Time
	AutoSyncEnabled bool
}

// SyncerDeps wires the message feed, extraction adapter, and store into the
// scheduler. Zero-valued tuning fields fall back to defaults.
type SyncerDeps struct {
	Feed            ports.MessageFeed
	Adapter         *extraction.Adapter
	Store           *store.Store
	Logger          *slog.Logger
	PollInterval    time.Duration
	ManualSyncDelay time.Duration
	ChartWindow     int
	Now             func() time.Time
}

// Syncer drives the pipeline: the initial bulk load, the recurring polling
// loop, and manual refreshes. Every path funnels through the same
// extract -> build -> append steps; the store's idempotent append absorbs
// duplicate deliveries, so the paths need no mutual exclusion between them.
type Syncer struct {
	feed        ports.MessageFeed
	adapter     *extraction.Adapter
	orders      *store.Store
	logger      *slog.Logger
	interval    time.Duration
	manualDelay time.Duration
	window      int
	now         func() time.Time

	mu       sync.Mutex
	inFlight int
	lastSync time.Time
	autoSync bool
	runCtx   context.Context
	stop     chan struct{}
}

// NewSyncer constructs the scheduler with auto-sync enabled.
func NewSyncer(deps SyncerDeps) *Syncer {
	s := &Syncer{
		feed:        deps.Feed,
		adapter:     deps.Adapter,
		orders:      deps.Store,
		logger:      deps.Logger,
		interval:    deps.PollInterval,
		manualDelay: deps.ManualSyncDelay,
		window:      deps.ChartWindow,
		now:         deps.Now,
		autoSync:    true,
	}

	if s.orders == nil {
		s.orders = store.New()
	}
	if s.interval <= 0 {
		s.interval = 30 * time.Second
	}
	if s.window <= 0 {
		s.window = 14
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// InitialLoad pulls the full startup batch and processes every message
// concurrently. One message's extraction degrading to empty does not affect
// the rest; the batch always completes and every message yields an order.
func (s *Syncer) InitialLoad(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}

	s.beginSync()
	defer s.endSync()

	batch, err := s.feed.InitialBatch(ctx)
	if err != nil {
		return fmt.Errorf("initial batch: %w", err)
	}

	var wg sync.WaitGroup
	for _, msg := range batch {
		wg.Add(1)
		go func(msg domain.RawMessage) {
			defer wg.Done()
			s.process(ctx, msg)
		}(msg)
	}
	wg.Wait()

	s.touch()
	s.debug("initial load complete", "messages", len(batch))
	return nil
}

// Start launches the polling loop unless auto-sync has been disabled. The
// loop stops when ctx is cancelled or auto-sync is switched off.
func (s *Syncer) Start(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runCtx = ctx
	if !s.autoSync || s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go s.loop(ctx, s.stop)
	return nil
}

// Stop halts the polling loop without cancelling work already in flight.
func (s *Syncer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	return nil
}

// SetAutoSync enables or disables the polling loop. Disabling cancels the
// pending timer so no further check fires; an extraction already in flight
// still completes and its order still lands in the store.
func (s *Syncer) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoSync == enabled {
		return
	}
	s.autoSync = enabled

	if !enabled {
		if s.stop != nil {
			close(s.stop)
			s.stop = nil
		}
		return
	}

	if s.runCtx != nil && s.stop == nil {
		s.stop = make(chan struct{})
		go s.loop(s.runCtx, s.stop)
	}
}

// TriggerManualSync runs an immediate best-effort refresh. It is safe to call
// while a polling cycle is in flight; duplicate message IDs are absorbed by
// the store.
func (s *Syncer) TriggerManualSync(ctx context.Context) error {
	s.beginSync()
	defer s.endSync()

	if s.manualDelay > 0 {
		// stands in for the provider round trip
		select {
		case <-time.After(s.manualDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if s.feed != nil {
		msgs, err := s.feed.PollNew(ctx)
		if err != nil {
			s.debug("manual poll failed", "error", err)
		}
		for _, msg := range msgs {
			s.process(ctx, msg)
		}
	}

	s.touch()
	return nil
}

// Status reports scheduler state as one value to avoid torn reads.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SyncStatus{
		IsSyncing:       s.inFlight > 0,
		LastSyncTime:    s.lastSync,
		AutoSyncEnabled: s.autoSync,
	}
}

// Orders returns the current order snapshot, newest first.
func (s *Syncer) Orders() []domain.Order {
	return s.orders.All()
}

// Statistics recomputes the aggregate view for the current calendar month.
func (s *Syncer) Statistics() domain.Statistics {
	return stats.Compute(s.orders.All(), s.now().Format("2006-01"))
}

// Series recomputes the date-bucketed chart series.
func (s *Syncer) Series() []domain.SeriesPoint {
	return stats.Series(s.orders.All(), s.window)
}

func (s *Syncer) loop(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pollOnce(ctx)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// pollOnce runs one polling cycle. The last-sync timestamp advances whether
// or not a message arrived.
func (s *Syncer) pollOnce(ctx context.Context) {
	s.beginSync()
	defer s.endSync()

	msgs, err := s.feed.PollNew(ctx)
	if err != nil {
		s.debug("poll failed", "error", err)
	}
	for _, msg := range msgs {
		s.process(ctx, msg)
	}

	s.touch()

	st := s.Statistics()
	s.debug("poll cycle complete",
		"arrived", len(msgs),
		"total_orders", st.TotalOrders,
		"udon_percentage", st.UdonPercentage)
}

func (s *Syncer) process(ctx context.Context, msg domain.RawMessage) {
	result := s.adapter.Extract(ctx, msg.Body)
	order := BuildOrder(msg, result, s.now())
	if s.orders.Append(order) {
		s.debug("order stored", "id", order.ID, "date", order.Date, "has_udon", order.HasUdon)
	}
}

func (s *Syncer) beginSync() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
}

func (s *Syncer) endSync() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *Syncer) touch() {
	s.mu.Lock()
	s.lastSync = s.now()
	s.mu.Unlock()
}

func (s *Syncer) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
