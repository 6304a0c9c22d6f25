package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Change describes one row-level write, keyed by table and row id. The
// session aggregator's clients use these as refresh hints instead of
// polling on every interval.
type Change struct {
	Table     string `json:"table"`
	RowID     string `json:"row_id"`
	SessionID string `json:"session_id"`
}

// Publisher delivers row-change notifications. Publishing is best-effort:
// a dropped notification only delays clients until their next poll.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// Subscriber exposes the change stream for one session. Only publishers
// backed by a broker implement it; Noop does not.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string) <-chan Change
}

// Noop discards all notifications. Used when redis is not configured and
// in tests that do not care about the change stream.
type Noop struct{}

func (Noop) Publish(ctx context.Context, change Change) {}

// RedisNotifier publishes changes to a per-session redis channel.
type RedisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(addr string, logger *zap.Logger) *RedisNotifier {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisNotifier{rdb: rdb, logger: logger}
}

func channelFor(sessionID string) string {
	return fmt.Sprintf("session_changes:%s", sessionID)
}

func (n *RedisNotifier) Publish(ctx context.Context, change Change) {
	data, err := json.Marshal(change)
	if err != nil {
		n.logger.Warn("Failed to marshal change notification", zap.Error(err))
		return
	}
	if err := n.rdb.Publish(ctx, channelFor(change.SessionID), data).Err(); err != nil {
		n.logger.Warn("Failed to publish change notification",
			zap.String("session_id", change.SessionID),
			zap.Error(err))
	}
}

// Subscribe returns a channel of changes for one session. The channel is
// closed when ctx is cancelled.
func (n *RedisNotifier) Subscribe(ctx context.Context, sessionID string) <-chan Change {
	sub := n.rdb.Subscribe(ctx, channelFor(sessionID))
	out := make(chan Change)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					n.logger.Warn("Failed to decode change notification", zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}
