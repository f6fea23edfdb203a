package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Publish(t *testing.T) {
	c, err := NewCollector("BTC-USD", prometheus.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, c.Publish(context.Background(), orderbookv1.Trade{BuyOrderID: 6, SellOrderID: 3, Price: 102, Quantity: 70, Sequence: 1}))
	require.NoError(t, c.Publish(context.Background(), orderbookv1.Trade{BuyOrderID: 6, SellOrderID: 4, Price: 103, Quantity: 20, Sequence: 2}))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.tradesExecuted))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.tradedVolume))
	assert.Equal(t, 102.0*70+103.0*20, testutil.ToFloat64(c.tradedNotional))
	assert.Equal(t, 103.0, testutil.ToFloat64(c.lastPrice))
}

func TestCollector_Store(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector("BTC-USD", reg)
	require.NoError(t, err)

	view := depthstorev1.NewDepthView("BTC-USD", 5,
		[]orderbookv1.PriceLevel{{Price: 101.0, Quantity: 250}, {Price: 100.0, Quantity: 50}},
		[]orderbookv1.PriceLevel{{Price: 102.0, Quantity: 70}},
		0, time.Now(),
	)
	require.NoError(t, c.Store(context.Background(), view))

	assert.Equal(t, 101.0, testutil.ToFloat64(c.bestPrice.WithLabelValues("buy")))
	assert.Equal(t, 102.0, testutil.ToFloat64(c.bestPrice.WithLabelValues("sell")))
	assert.Equal(t, 300.0, testutil.ToFloat64(c.depthTotal.WithLabelValues("buy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.depthLevel.WithLabelValues("buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.spread))

	// ask side empties: best ask series goes away, spread resets
	empty := depthstorev1.NewDepthView("BTC-USD", 5, []orderbookv1.PriceLevel{{Price: 101.0, Quantity: 1}}, nil, 0, time.Now())
	require.NoError(t, c.Store(context.Background(), empty))

	expected := `
# HELP orderbook_best_price Best price by side, absent when the side is empty
# TYPE orderbook_best_price gauge
orderbook_best_price{pair="BTC-USD",side="buy"} 101
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "orderbook_best_price"))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.spread))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector("BTC-USD", reg)
	require.NoError(t, err)

	_, err = NewCollector("BTC-USD", reg)
	assert.Error(t, err)
}
