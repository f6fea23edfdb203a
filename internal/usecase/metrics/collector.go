package metrics

import (
	"context"

	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "orderbook"

// Collector exports trade and depth metrics. It is wired into the engine as
// both a trade publisher and a depth store.
type Collector struct {
	pair string

	tradesExecuted prometheus.Counter
	tradedVolume   prometheus.Counter
	tradedNotional prometheus.Counter
	lastPrice      prometheus.Gauge
	tradeSize      prometheus.Histogram

	bestPrice  *prometheus.GaugeVec
	depthTotal *prometheus.GaugeVec
	depthLevel *prometheus.GaugeVec
	spread     prometheus.Gauge
}

var (
	_ tradepublisherv1.Publisher = (*Collector)(nil)
	_ depthstorev1.Store         = (*Collector)(nil)
)

// NewCollector creates the collectors for pair and registers them on reg.
func NewCollector(pair string, reg prometheus.Registerer) (*Collector, error) {
	labels := prometheus.Labels{"pair": pair}
	c := &Collector{
		pair: pair,
		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "trades_executed_total",
			Help:        "Total number of trades executed",
			ConstLabels: labels,
		}),
		tradedVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "traded_quantity_total",
			Help:        "Total quantity traded",
			ConstLabels: labels,
		}),
		tradedNotional: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "traded_notional_total",
			Help:        "Total price times quantity traded",
			ConstLabels: labels,
		}),
		lastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_trade_price",
			Help:        "Price of the most recent trade",
			ConstLabels: labels,
		}),
		tradeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "trade_quantity",
			Help:        "Quantity per trade",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}),
		bestPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "best_price",
			Help:        "Best price by side, absent when the side is empty",
			ConstLabels: labels,
		}, []string{"side"}),
		depthTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "depth_quantity",
			Help:        "Resting quantity within the reported depth by side",
			ConstLabels: labels,
		}, []string{"side"}),
		depthLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "depth_levels",
			Help:        "Number of reported price levels by side",
			ConstLabels: labels,
		}, []string{"side"}),
		spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "spread",
			Help:        "Best ask minus best bid, 0 when a side is empty",
			ConstLabels: labels,
		}),
	}

	for _, collector := range []prometheus.Collector{
		c.tradesExecuted, c.tradedVolume, c.tradedNotional, c.lastPrice, c.tradeSize,
		c.bestPrice, c.depthTotal, c.depthLevel, c.spread,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Publish records one trade.
func (c *Collector) Publish(_ context.Context, trade orderbookv1.Trade) error {
	c.tradesExecuted.Inc()
	c.tradedVolume.Add(float64(trade.Quantity))
	c.tradedNotional.Add(trade.Notional())
	c.lastPrice.Set(trade.Price)
	c.tradeSize.Observe(float64(trade.Quantity))
	return nil
}

// Store records the shape of a depth view.
func (c *Collector) Store(_ context.Context, view *depthstorev1.DepthView) error {
	c.observeSide(orderbookv1.Buy, view.Bids)
	c.observeSide(orderbookv1.Sell, view.Asks)

	if spread, ok := view.Spread(); ok {
		c.spread.Set(spread.InexactFloat64())
	} else {
		c.spread.Set(0)
	}
	return nil
}

func (c *Collector) observeSide(side orderbookv1.Side, levels []depthstorev1.Level) {
	label := side.String()
	total := uint64(0)
	for _, l := range levels {
		total += l.Quantity
	}
	c.depthTotal.WithLabelValues(label).Set(float64(total))
	c.depthLevel.WithLabelValues(label).Set(float64(len(levels)))

	if len(levels) == 0 {
		c.bestPrice.DeleteLabelValues(label)
		return
	}
	c.bestPrice.WithLabelValues(label).Set(levels[0].Price.InexactFloat64())
}
