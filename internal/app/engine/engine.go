package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/orderbook/internal/usecase/orderbook"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/muhammadchandra19/orderbook/pkg/util"
)

// ErrEngineRunning is returned by Start on an engine that is already running.
var ErrEngineRunning = errors.New("engine already running")

// Engine owns one order book and serializes every call into it. Trades are
// forwarded to the publishers in execution order, and depth views are pushed
// to the stores periodically while the engine runs.
type Engine struct {
	book       orderbookv1.Orderbook
	publishers []tradepublisherv1.Publisher
	stores     []depthstorev1.Store
	logger     *logger.Logger
	pair       string

	// mu guards the book, pending and the running state.
	mu      sync.Mutex
	pending []orderbookv1.Trade
	running bool
	trades  chan orderbookv1.Trade

	ctx        context.Context
	cancel     context.CancelFunc
	snapshotWG sync.WaitGroup
	dispatchWG sync.WaitGroup

	snapshotInterval time.Duration
	snapshotDepth    int
	tradeBuffer      int

	statsMu     sync.RWMutex
	totalTrades int64
	totalVolume uint64
}

// NewEngine creates an engine with default options.
func NewEngine(
	pair string,
	clock orderbookv1.Clock,
	publishers []tradepublisherv1.Publisher,
	stores []depthstorev1.Store,
	logger *logger.Logger,
) *Engine {
	return NewEngineWithOptions(pair, clock, publishers, stores, logger, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options
func NewEngineWithOptions(
	pair string,
	clock orderbookv1.Clock,
	publishers []tradepublisherv1.Publisher,
	stores []depthstorev1.Store,
	logger *logger.Logger,
	options *Options,
) *Engine {
	e := &Engine{
		publishers:       publishers,
		stores:           stores,
		logger:           logger,
		pair:             pair,
		snapshotInterval: options.SnapshotInterval,
		snapshotDepth:    options.SnapshotDepth,
		tradeBuffer:      options.TradeBuffer,
	}
	e.book = orderbook.NewOrderbook(clock, orderbookv1.TradeHandlerFunc(e.onTrade))
	return e
}

// onTrade runs inside a book call, with mu held.
func (e *Engine) onTrade(trade orderbookv1.Trade) {
	e.pending = append(e.pending, trade)
}

// takePending returns the trades of the current call. Must hold mu.
func (e *Engine) takePending() []orderbookv1.Trade {
	trades := e.pending
	e.pending = nil
	return trades
}

// Start launches the trade dispatcher and the snapshot manager.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrEngineRunning
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.trades = make(chan orderbookv1.Trade, e.tradeBuffer)
	e.running = true

	e.dispatchWG.Add(1)
	go e.runTradeDispatcher(e.trades)

	if len(e.stores) > 0 && e.snapshotInterval > 0 {
		e.snapshotWG.Add(1)
		go e.runSnapshotManager()
	}

	e.logger.Info("Engine started",
		logger.Field{Key: "pair", Value: e.pair},
		logger.Field{Key: "publishers", Value: len(e.publishers)},
		logger.Field{Key: "stores", Value: len(e.stores)},
	)
	return nil
}

// Stop stops the snapshot manager, then drains queued trades into the
// publishers. Book calls block until the drain finishes or ctx expires.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	if err := waitWithContext(ctx, &e.snapshotWG); err != nil {
		e.logger.Warn("Engine stop timeout exceeded", logger.Field{Key: "stage", Value: "snapshot"})
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	e.running = false
	close(e.trades)

	if err := waitWithContext(ctx, &e.dispatchWG); err != nil {
		e.logger.Warn("Engine stop timeout exceeded", logger.Field{Key: "stage", Value: "dispatch"})
		return err
	}
	e.logger.Info("Engine stopped gracefully",
		logger.Field{Key: "pair", Value: e.pair},
		logger.Field{Key: "totalTrades", Value: e.GetTotalTrades()},
	)
	return nil
}

func waitWithContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PlaceOrder adds a limit order and returns the trades it caused.
func (e *Engine) PlaceOrder(ctx context.Context, order orderbookv1.Order) ([]orderbookv1.Trade, error) {
	ctx = withRequestID(ctx)
	e.logger.DebugContext(ctx, "Placing order",
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "side", Value: order.Side.String()},
		logger.Field{Key: "price", Value: order.Price},
		logger.Field{Key: "quantity", Value: order.Quantity},
	)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.book.Add(order); err != nil {
		e.logger.WarnContext(ctx, "Order rejected",
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}
	trades := e.takePending()
	e.dispatch(ctx, trades)
	return trades, nil
}

// CancelOrder removes a live order. It returns false when id is not live.
func (e *Engine) CancelOrder(ctx context.Context, id uint64) bool {
	ctx = withRequestID(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	cancelled := e.book.Cancel(id)
	e.logger.DebugContext(ctx, "Cancel order",
		logger.Field{Key: "orderID", Value: id},
		logger.Field{Key: "found", Value: cancelled},
	)
	return cancelled
}

// AmendOrder changes price and quantity of a live order and returns the
// trades it caused. found is false when id is not live.
func (e *Engine) AmendOrder(ctx context.Context, id uint64, price float64, quantity uint64) (trades []orderbookv1.Trade, found bool, err error) {
	ctx = withRequestID(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	found, err = e.book.Amend(id, price, quantity)
	if err != nil {
		e.logger.WarnContext(ctx, "Amend rejected",
			logger.Field{Key: "orderID", Value: id},
			logger.Field{Key: "error", Value: err.Error()},
		)
		return nil, false, err
	}
	e.logger.DebugContext(ctx, "Amend order",
		logger.Field{Key: "orderID", Value: id},
		logger.Field{Key: "found", Value: found},
	)

	trades = e.takePending()
	e.dispatch(ctx, trades)
	return trades, found, nil
}

// Snapshot returns up to depth aggregated levels per side.
func (e *Engine) Snapshot(depth int) (bids, asks []orderbookv1.PriceLevel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Snapshot(depth)
}

// Order returns a copy of a live order.
func (e *Engine) Order(id uint64) (orderbookv1.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Order(id)
}

// DepthView builds a depth view of the book at the current instant.
func (e *Engine) DepthView(depth int) *depthstorev1.DepthView {
	bids, asks := e.Snapshot(depth)
	return depthstorev1.NewDepthView(e.pair, depth, bids, asks, e.GetTotalTrades(), time.Now())
}

// StoreDepth pushes the current depth view to every store. All stores are
// attempted; the first error is returned.
func (e *Engine) StoreDepth(ctx context.Context) error {
	view := e.DepthView(e.snapshotDepth)

	var firstErr error
	for _, store := range e.stores {
		if err := store.Store(ctx, view); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{Key: "action", Value: "store_depth"})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// dispatch records stats and hands trades to the publishers. Must hold mu.
func (e *Engine) dispatch(ctx context.Context, trades []orderbookv1.Trade) {
	if len(trades) == 0 {
		return
	}
	e.logTrades(ctx, trades)

	if len(e.publishers) == 0 {
		return
	}
	for _, trade := range trades {
		if e.running {
			e.trades <- trade
			continue
		}
		e.publish(ctx, trade)
	}
}

func (e *Engine) publish(ctx context.Context, trade orderbookv1.Trade) {
	for _, p := range e.publishers {
		if err := p.Publish(ctx, trade); err != nil {
			e.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "publish_trade"},
				logger.Field{Key: "sequence", Value: trade.Sequence},
			)
		}
	}
}

// runTradeDispatcher publishes queued trades until the queue is closed.
// Publishing outlives e.ctx so the queue drains fully on Stop.
func (e *Engine) runTradeDispatcher(queue <-chan orderbookv1.Trade) {
	defer e.dispatchWG.Done()

	ctx := context.WithoutCancel(e.ctx)
	for trade := range queue {
		e.publish(ctx, trade)
	}
	e.logger.Info("Trade dispatcher shutting down")
}

// runSnapshotManager handles periodic depth views
func (e *Engine) runSnapshotManager() {
	defer e.snapshotWG.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager", logger.Field{Key: "interval", Value: e.snapshotInterval.String()})

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			_ = e.StoreDepth(e.ctx)
		}
	}
}

// logTrades logs the trades and updates statistics
func (e *Engine) logTrades(ctx context.Context, trades []orderbookv1.Trade) {
	volume := uint64(0)
	for _, trade := range trades {
		volume += trade.Quantity
	}

	e.statsMu.Lock()
	e.totalTrades += int64(len(trades))
	e.totalVolume += volume
	currentTotal := e.totalTrades
	e.statsMu.Unlock()

	for _, trade := range trades {
		e.logger.InfoContext(ctx, "Trade executed",
			logger.Field{Key: "sequence", Value: trade.Sequence},
			logger.Field{Key: "buyOrderID", Value: trade.BuyOrderID},
			logger.Field{Key: "sellOrderID", Value: trade.SellOrderID},
			logger.Field{Key: "price", Value: trade.Price},
			logger.Field{Key: "quantity", Value: trade.Quantity},
			logger.Field{Key: "totalTrades", Value: currentTotal},
		)
	}
}

func withRequestID(ctx context.Context) context.Context {
	if util.GetRequestID(ctx) != "" {
		return ctx
	}
	return util.WithRequestID(ctx, "")
}

// GetTotalTrades returns the total number of trades executed
func (e *Engine) GetTotalTrades() int64 {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.totalTrades
}

// GetTotalVolume returns the total quantity traded
func (e *Engine) GetTotalVolume() uint64 {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.totalVolume
}

// Pair returns the instrument of the book.
func (e *Engine) Pair() string {
	return e.pair
}
