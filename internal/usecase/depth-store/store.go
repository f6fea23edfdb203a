package depthstore

import (
	"context"
	"encoding/json"

	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	"github.com/muhammadchandra19/orderbook/pkg/errors"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/muhammadchandra19/orderbook/pkg/redis"
)

// Store keeps the latest depth view of a pair in Redis and announces it on a
// pub/sub channel of the same name.
type Store struct {
	pair        string
	logger      *logger.Logger
	redisclient redis.Client
}

var _ depthstorev1.Store = (*Store)(nil)

// NewDepthStore creates a new Store for the given pair.
func NewDepthStore(redisclient redis.Client, pair string, logger *logger.Logger) *Store {
	return &Store{
		pair:        pair,
		redisclient: redisclient,
		logger:      logger,
	}
}

func (s *Store) key() string {
	return "depth:" + s.pair
}

// Store writes the view and publishes it to subscribers.
func (s *Store) Store(ctx context.Context, view *depthstorev1.DepthView) error {
	buf, err := json.Marshal(view)
	if err != nil {
		return errors.NewTracer("depth_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key(), buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: s.pair},
			logger.Field{Key: "action", Value: "store depth"},
		)
		return errors.NewErrorDetails("failed to store depth view", string(errors.DepthStoreError), "depth")
	}

	if _, err := s.redisclient.Publish(ctx, s.key(), buf); err != nil {
		// the stored copy is authoritative, subscribers catch up on the next tick
		s.logger.WarnContext(ctx, "Failed to publish depth view",
			logger.Field{Key: "pair", Value: s.pair},
			logger.Field{Key: "error", Value: err.Error()},
		)
	}

	s.logger.DebugContext(ctx, "Depth view stored",
		logger.Field{Key: "pair", Value: s.pair},
		logger.Field{Key: "bids", Value: len(view.Bids)},
		logger.Field{Key: "asks", Value: len(view.Asks)},
	)
	return nil
}

// Load reads the last stored view. It returns nil, nil when nothing is stored.
func (s *Store) Load(ctx context.Context) (*depthstorev1.DepthView, error) {
	data, err := s.redisclient.Get(ctx, s.key())
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: s.pair},
			logger.Field{Key: "action", Value: "load depth"},
		)
		return nil, errors.NewTracer("depth_load_error").Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var view depthstorev1.DepthView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, errors.NewTracer("depth_unmarshal_error").Wrap(err)
	}
	return &view, nil
}
