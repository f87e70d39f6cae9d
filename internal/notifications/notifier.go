// Package notifications fans freet and marketplace events out to websocket
// clients, through Redis pub/sub when it is available.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"fritter/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	broadcastChannel     = "fritter:events"
	exceptChannelPrefix  = broadcastChannel + ":except:"
	exceptChannelPattern = exceptChannelPrefix + "*"
	userChannelPrefix    = "fritter:user:"
	userChannelPattern   = userChannelPrefix + "*"
)

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier has a Redis connection.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a payload to a single user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to every connected client.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// PublishBroadcastExcept sends a payload to every client not owned by userID.
func (n *Notifier) PublishBroadcastExcept(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, exceptChannel(userID), payload).Err()
}

// StartSubscriber subscribes to the broadcast, except and per-user channels and calls
// onMessage for each message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern, exceptChannelPattern, broadcastChannel)
	// Wait for the subscription so publishes right after this call are seen.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

func exceptChannel(userID uint) string {
	return exceptChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// parseUserChannel extracts the user id from a channel produced by UserChannel.
func parseUserChannel(channel string) (uint, bool) {
	return parseChannelID(userChannelPrefix, channel)
}

func parseChannelID(prefix, channel string) (uint, bool) {
	if len(channel) <= len(prefix) || channel[:len(prefix)] != prefix {
		return 0, false
	}
	id, err := strconv.ParseUint(channel[len(prefix):], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
