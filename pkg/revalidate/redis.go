package revalidate

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/encoding/json"
)

// RedisInvalidator publishes an Event on a channel that renderers subscribe
// to.
type RedisInvalidator struct {
	client  *redis.Client
	channel string
}

func NewRedisInvalidator(client *redis.Client, channel string) *RedisInvalidator {
	return &RedisInvalidator{client, channel}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, paths []string) error {
	body, err := json.Marshal(Event{Paths: paths, Timestamp: time.Now().UTC()})
	if err != nil {
		return errors.WithStack(err)
	}
	err = r.client.Publish(ctx, r.channel, body).Err()
	return errors.Wrapf(err, "publish to %s", r.channel)
}
