package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	depthstoremock "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1/mock"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	tradepublishermock "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1/mock"
	"github.com/muhammadchandra19/orderbook/pkg/clock"
	"github.com/muhammadchandra19/orderbook/pkg/config"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/muhammadchandra19/orderbook/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures and helpers
type testFixture struct {
	ctrl          *gomock.Controller
	mockPublisher *tradepublishermock.MockPublisher
	mockStore     *depthstoremock.MockStore
	logger        *logger.Logger

	mu        sync.Mutex
	published []orderbookv1.Trade
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)

	return &testFixture{
		ctrl:          ctrl,
		mockPublisher: tradepublishermock.NewMockPublisher(ctrl),
		mockStore:     depthstoremock.NewMockStore(ctrl),
		logger:        logger.NewNopLogger(),
	}
}

// recordPublished makes the mock publisher append every trade it receives.
func (f *testFixture) recordPublished() {
	f.mockPublisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, trade orderbookv1.Trade) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, trade)
			return nil
		}).
		AnyTimes()
}

func (f *testFixture) publishedTrades() []orderbookv1.Trade {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orderbookv1.Trade(nil), f.published...)
}

func createTestEngine(f *testFixture, options *Options) *Engine {
	if options == nil {
		options = DefaultEngineOptions()
	}
	return NewEngineWithOptions(
		"BTC-USD",
		clock.NewSequence(0),
		[]tradepublisherv1.Publisher{f.mockPublisher},
		[]depthstorev1.Store{f.mockStore},
		f.logger,
		options,
	)
}

func placeScenarioA(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	orders := []orderbookv1.Order{
		orderbookv1.NewOrder(1, orderbookv1.Buy, 101.0, 100, 0),
		orderbookv1.NewOrder(2, orderbookv1.Buy, 100.0, 50, 0),
		orderbookv1.NewOrder(3, orderbookv1.Sell, 102.0, 70, 0),
		orderbookv1.NewOrder(4, orderbookv1.Sell, 103.0, 30, 0),
		orderbookv1.NewOrder(5, orderbookv1.Buy, 101.0, 150, 0),
	}
	for _, o := range orders {
		trades, err := e.PlaceOrder(ctx, o)
		require.NoError(t, err)
		require.Empty(t, trades)
	}
}

func TestEngine_PlaceOrder(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, nil)

	placeScenarioA(t, e)

	gomock.InOrder(
		f.mockPublisher.EXPECT().Publish(gomock.Any(), orderbookv1.Trade{BuyOrderID: 6, SellOrderID: 3, Price: 102.0, Quantity: 70, Sequence: 1}).Return(nil),
		f.mockPublisher.EXPECT().Publish(gomock.Any(), orderbookv1.Trade{BuyOrderID: 6, SellOrderID: 4, Price: 103.0, Quantity: 20, Sequence: 2}).Return(nil),
	)

	trades, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(6, orderbookv1.Buy, 103.0, 90, 0))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, int64(2), e.GetTotalTrades())
	assert.Equal(t, uint64(90), e.GetTotalVolume())

	bids, asks := e.Snapshot(5)
	assert.Equal(t, []orderbookv1.PriceLevel{{Price: 101.0, Quantity: 250}, {Price: 100.0, Quantity: 50}}, bids)
	assert.Equal(t, []orderbookv1.PriceLevel{{Price: 103.0, Quantity: 10}}, asks)
}

func TestEngine_PlaceOrder_Rejected(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, nil)
	placeScenarioA(t, e)

	_, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(1, orderbookv1.Sell, 90.0, 1, 0))
	assert.ErrorIs(t, err, orderbookv1.ErrDuplicateOrder)

	_, err = e.PlaceOrder(context.Background(), orderbookv1.NewOrder(9, orderbookv1.Sell, 0, 1, 0))
	assert.ErrorIs(t, err, orderbookv1.ErrInvalidPrice)

	assert.Equal(t, int64(0), e.GetTotalTrades())
}

func TestEngine_PublishErrorDoesNotFailOrder(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, nil)

	f.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(stderrors.New("broker down")).Times(1)

	_, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(1, orderbookv1.Sell, 100, 5, 0))
	require.NoError(t, err)
	trades, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(2, orderbookv1.Buy, 100, 5, 0))
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestEngine_CancelAndAmend(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, nil)
	placeScenarioA(t, e)
	ctx := context.Background()

	t.Run("amend quantity in place", func(t *testing.T) {
		trades, found, err := e.AmendOrder(ctx, 2, 100.0, 200)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, trades)

		order, ok := e.Order(2)
		require.True(t, ok)
		assert.Equal(t, uint64(200), order.Quantity)
	})

	t.Run("amend unknown order", func(t *testing.T) {
		_, found, err := e.AmendOrder(ctx, 77, 100.0, 1)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("amend invalid quantity", func(t *testing.T) {
		_, found, err := e.AmendOrder(ctx, 2, 100.0, 0)
		assert.ErrorIs(t, err, orderbookv1.ErrInvalidQuantity)
		assert.False(t, found)
	})

	t.Run("amend that crosses", func(t *testing.T) {
		f.mockPublisher.EXPECT().
			Publish(gomock.Any(), orderbookv1.Trade{BuyOrderID: 1, SellOrderID: 4, Price: 101.0, Quantity: 30, Sequence: 1}).
			Return(nil)

		trades, found, err := e.AmendOrder(ctx, 4, 101.0, 30)
		require.NoError(t, err)
		assert.True(t, found)
		require.Len(t, trades, 1)
	})

	t.Run("cancel", func(t *testing.T) {
		assert.True(t, e.CancelOrder(ctx, 3))
		assert.False(t, e.CancelOrder(ctx, 3))
		_, ok := e.Order(3)
		assert.False(t, ok)
	})
}

func TestEngine_StartStop_DrainsTradesInOrder(t *testing.T) {
	f := setupTestFixture(t)
	f.recordPublished()
	e := createTestEngine(f, &Options{SnapshotInterval: time.Hour, SnapshotDepth: 5, TradeBuffer: 4})

	require.NoError(t, e.Start(context.Background()))
	assert.ErrorIs(t, e.Start(context.Background()), ErrEngineRunning)

	ctx := context.Background()
	for i := uint64(1); i <= 50; i++ {
		_, err := e.PlaceOrder(ctx, orderbookv1.NewOrder(i, orderbookv1.Sell, 100.0+float64(i%5), 2, 0))
		require.NoError(t, err)
	}
	trades, err := e.PlaceOrder(ctx, orderbookv1.NewOrder(1000, orderbookv1.Buy, 110.0, 100, 0))
	require.NoError(t, err)
	require.Len(t, trades, 50)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Stop(stopCtx))
	require.NoError(t, e.Stop(stopCtx))

	assert.Equal(t, trades, f.publishedTrades())
	for i, trade := range f.publishedTrades() {
		assert.Equal(t, uint64(i+1), trade.Sequence)
	}
}

func TestEngine_PublishesSynchronouslyAfterStop(t *testing.T) {
	f := setupTestFixture(t)
	f.recordPublished()
	e := createTestEngine(f, nil)

	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Stop(context.Background()))

	_, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(1, orderbookv1.Sell, 100, 1, 0))
	require.NoError(t, err)
	_, err = e.PlaceOrder(context.Background(), orderbookv1.NewOrder(2, orderbookv1.Buy, 100, 1, 0))
	require.NoError(t, err)

	assert.Len(t, f.publishedTrades(), 1)
}

func TestEngine_StoreDepth(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, &Options{SnapshotInterval: time.Hour, SnapshotDepth: 1, TradeBuffer: 1})
	placeScenarioA(t, e)

	f.mockStore.EXPECT().
		Store(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, view *depthstorev1.DepthView) error {
			assert.Equal(t, "BTC-USD", view.Pair)
			require.Len(t, view.Bids, 1)
			require.Len(t, view.Asks, 1)
			assert.Equal(t, "101", view.Bids[0].Price.String())
			assert.Equal(t, uint64(250), view.Bids[0].Quantity)
			assert.Equal(t, "102", view.Asks[0].Price.String())
			return nil
		})
	require.NoError(t, e.StoreDepth(context.Background()))

	f.mockStore.EXPECT().Store(gomock.Any(), gomock.Any()).Return(stderrors.New("redis down"))
	assert.Error(t, e.StoreDepth(context.Background()))
}

func TestEngine_SnapshotManager(t *testing.T) {
	f := setupTestFixture(t)
	e := createTestEngine(f, &Options{SnapshotInterval: 10 * time.Millisecond, SnapshotDepth: 5, TradeBuffer: 8})

	stored := make(chan *depthstorev1.DepthView, 16)
	f.mockStore.EXPECT().
		Store(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, view *depthstorev1.DepthView) error {
			select {
			case stored <- view:
			default:
			}
			return nil
		}).
		MinTimes(1)

	require.NoError(t, e.Start(context.Background()))
	placeScenarioA(t, e)

	select {
	case view := <-stored:
		assert.Equal(t, "BTC-USD", view.Pair)
	case <-time.After(2 * time.Second):
		t.Fatal("no depth view stored")
	}

	require.NoError(t, e.Stop(context.Background()))
}

func TestEngine_ConcurrentSubmission(t *testing.T) {
	f := setupTestFixture(t)
	f.recordPublished()
	e := createTestEngine(f, nil)
	require.NoError(t, e.Start(context.Background()))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := uint64(g*1000 + i + 1)
				side := orderbookv1.Buy
				if i%2 == 1 {
					side = orderbookv1.Sell
				}
				_, err := e.PlaceOrder(context.Background(), orderbookv1.NewOrder(id, side, 100, 1, 0))
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, e.Stop(context.Background()))

	// every buy meets a sell at the same price, so the book ends flat
	bids, asks := e.Snapshot(10)
	assert.Empty(t, bids)
	assert.Empty(t, asks)
	assert.Equal(t, int64(400), e.GetTotalTrades())

	published := f.publishedTrades()
	require.Len(t, published, 400)
	for i, trade := range published {
		assert.Equal(t, uint64(i+1), trade.Sequence)
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := withRequestID(context.Background())
	assert.NotEmpty(t, util.GetRequestID(ctx))

	kept := withRequestID(util.WithRequestID(context.Background(), "req-1"))
	assert.Equal(t, "req-1", util.GetRequestID(kept))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.EngineConfig{SnapshotDepth: 3})

	assert.Equal(t, 3, opts.SnapshotDepth)
	assert.Equal(t, DefaultEngineOptions().SnapshotInterval, opts.SnapshotInterval)
	assert.Equal(t, DefaultEngineOptions().TradeBuffer, opts.TradeBuffer)
}
