package store

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sjavs/internal/app"
	"sjavs/internal/metrics"
)

// Publisher fans events out through Redis pub/sub: once on the match
// channel and once per affected user channel. UserOnly events skip the match
// channel so private payloads never ride the shared stream.
type Publisher struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewPublisher wraps a Redis client.
func NewPublisher(rdb *redis.Client, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{rdb: rdb, log: log}
}

// Publish implements app.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event app.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if !event.UserOnly {
		if err := p.rdb.Publish(ctx, MatchChannel(event.GameID), payload).Err(); err != nil {
			return err
		}
	}
	for _, userID := range event.AffectedPlayers {
		if err := p.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
			return err
		}
	}
	metrics.EventsPublished.WithLabelValues(event.Kind).Inc()
	return nil
}

// Interest is the subscriber's view of local demand: which channels this
// instance needs, and where to hand received messages.
type Interest interface {
	// Channels returns the full set of match and user channels with local
	// subscribers.
	Channels() []string
	// Deliver hands one raw message to the local fan-out.
	Deliver(channel string, payload []byte)
}

const (
	subscriberIdleTick = 2 * time.Second
	subscriberBackoff  = time.Second
)

// Subscriber is the one long-running pub/sub task per instance. It treats
// idleness as the trigger to compare the subscription set and rebuilds the
// subscription only when the set changed, so interest churn does not cause
// reconnect storms.
type Subscriber struct {
	rdb      *redis.Client
	interest Interest
	log      *zap.Logger
}

// NewSubscriber builds the instance subscriber.
func NewSubscriber(rdb *redis.Client, interest Interest, log *zap.Logger) *Subscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &Subscriber{rdb: rdb, interest: interest, log: log}
}

// Run drives the subscription until the context ends.
func (s *Subscriber) Run(ctx context.Context) {
	for ctx.Err() == nil {
		channels := sortedChannels(s.interest.Channels())
		if len(channels) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(subscriberIdleTick):
			}
			continue
		}
		s.consume(ctx, channels)
		select {
		case <-ctx.Done():
			return
		case <-time.After(subscriberBackoff):
		}
	}
}

// consume holds one subscription open until the interest set changes or the
// connection fails.
func (s *Subscriber) consume(ctx context.Context, channels []string) {
	pubsub := s.rdb.Subscribe(ctx, channels...)
	defer pubsub.Close()

	s.log.Debug("subscription established", zap.Int("channels", len(channels)))
	for {
		if ctx.Err() != nil {
			return
		}
		msg, err := pubsub.ReceiveTimeout(ctx, subscriberIdleTick)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// Idle tick: rebuild only if the set changed.
				if !equalChannels(channels, sortedChannels(s.interest.Channels())) {
					return
				}
				continue
			}
			s.log.Warn("subscription receive failed", zap.Error(err))
			return
		}
		if m, ok := msg.(*redis.Message); ok {
			s.interest.Deliver(m.Channel, []byte(m.Payload))
		}
	}
}

func sortedChannels(channels []string) []string {
	out := append([]string(nil), channels...)
	sort.Strings(out)
	return out
}

func equalChannels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
