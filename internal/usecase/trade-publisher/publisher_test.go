package tradepublisher

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/orderbook/pkg/config"
	"github.com/muhammadchandra19/orderbook/pkg/errors"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "BTC-USD", logger.NewNopLogger())
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	p.now = func() time.Time { return ts }

	trades := []orderbookv1.Trade{
		{BuyOrderID: 6, SellOrderID: 3, Price: 102.0, Quantity: 70, Sequence: 1},
		{BuyOrderID: 6, SellOrderID: 4, Price: 103.0, Quantity: 20, Sequence: 2},
	}
	for _, trade := range trades {
		require.NoError(t, p.Publish(context.Background(), trade))
	}

	require.Len(t, w.messages, 2)
	for i, msg := range w.messages {
		assert.Equal(t, []byte("BTC-USD"), msg.Key)
		assert.Equal(t, ts, msg.Time)

		event, err := tradepublisherv1.FromBytes(msg.Value)
		require.NoError(t, err)
		assert.Equal(t, trades[i].Sequence, event.Sequence)
		assert.Equal(t, trades[i].SellOrderID, event.SellOrderID)
		assert.Equal(t, "event-id", msg.Headers[0].Key)
		assert.Equal(t, event.EventID, string(msg.Headers[0].Value))
	}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: stderrors.New("leader not available")}
	p := newPublisher(w, "BTC-USD", logger.NewNopLogger())

	err := p.Publish(context.Background(), orderbookv1.Trade{BuyOrderID: 1, SellOrderID: 2, Price: 1, Quantity: 1, Sequence: 9})

	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.TradePublishError)))
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "trades"}, "BTC-USD", logger.NewNopLogger())

	w, ok := p.kafkaWriter.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "trades", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
