// Package notifications publishes social events to per-user Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Event types.
const (
	EventFollowCreated  = "follow.created"
	EventLikeCreated    = "like.created"
	EventCommentCreated = "comment.created"
)

const userChannelPrefix = "notifications:user:"

// Event is the JSON payload published to a user's channel.
type Event struct {
	Type          string    `json:"type"`
	ActorID       uint      `json:"actor_id"`
	ActorUsername string    `json:"actor_username,omitempty"`
	PostID        uint      `json:"post_id,omitempty"`
	CommentID     uint      `json:"comment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher delivers an event to one user.
type Publisher interface {
	PublishUser(ctx context.Context, userID uint, event Event) error
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel returns the channel events for userID are published on.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// ParseUserChannel extracts the user id from a channel name.
func ParseUserChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// PublishUser sends event to userID's channel. Without Redis it is a no-op.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// StartPatternSubscriber subscribes to every user channel and calls onEvent
// for each decoded message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onEvent func(userID uint, event Event),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	// Wait for the subscription to be confirmed so no early publish is lost.
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
				dispatch(ctx, msg, onEvent)
			}
		}
	}()

	return nil
}

func dispatch(ctx context.Context, msg *redis.Message, onEvent func(uint, Event)) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.ErrorContext(ctx, "panic in notification subscriber",
				"panic", r, "stack", string(debug.Stack()))
		}
	}()

	userID, ok := ParseUserChannel(msg.Channel)
	if !ok {
		return
	}
	var event Event
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		middleware.Logger.WarnContext(ctx, "dropping malformed notification",
			"channel", msg.Channel, "error", err)
		return
	}
	onEvent(userID, event)
}
