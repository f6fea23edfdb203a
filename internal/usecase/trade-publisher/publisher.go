package tradepublisher

import (
	"context"
	"time"

	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/orderbook/pkg/config"
	"github.com/muhammadchandra19/orderbook/pkg/errors"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes trade events to a Kafka topic. Messages are keyed by
// pair so every trade of the book lands on one partition, in order.
type Publisher struct {
	pair        string
	kafkaWriter messageWriter
	logger      *logger.Logger
	now         func() time.Time
}

var _ tradepublisherv1.Publisher = (*Publisher)(nil)

// NewPublisher creates a new Kafka publisher for trade events.
func NewPublisher(cfg config.KafkaConfig, pair string, logger *logger.Logger) *Publisher {
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newPublisher(kafkaWriter, pair, logger)
}

func newPublisher(w messageWriter, pair string, logger *logger.Logger) *Publisher {
	return &Publisher{
		pair:        pair,
		kafkaWriter: w,
		logger:      logger,
		now:         time.Now,
	}
}

// Publish publishes one trade event.
func (p *Publisher) Publish(ctx context.Context, trade orderbookv1.Trade) error {
	event := tradepublisherv1.CreateFromTrade(p.pair, trade, p.now())
	value, err := event.ToBytes()
	if err != nil {
		return errors.NewTracer("failed to encode trade event").Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(p.pair),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte("trade")},
		},
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "publish_trade"},
			logger.Field{Key: "eventID", Value: event.EventID},
			logger.Field{Key: "sequence", Value: event.Sequence},
		)
		return errors.NewErrorDetailsWithObject("failed to publish trade event", string(errors.TradePublishError), "trade", trade.Sequence)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
