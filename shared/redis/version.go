package redis

import (
	"context"
	"errors"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

// VersionCounter is a monotonically increasing generation number. Cached
// list pages embed the current version in their key, so bumping it makes
// every earlier page unreachable without scanning for keys.
type VersionCounter struct {
	client *goredis.Client
	key    string
}

func NewVersionCounter(client *goredis.Client, key string) *VersionCounter {
	return &VersionCounter{client: client, key: key}
}

// Current returns the version, 0 when it was never bumped.
func (v *VersionCounter) Current(ctx context.Context) (int64, error) {
	s, err := v.client.Get(ctx, v.key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (v *VersionCounter) Bump(ctx context.Context) (int64, error) {
	return v.client.Incr(ctx, v.key).Result()
}
