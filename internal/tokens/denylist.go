package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "revoked_jti:"

// Denylist records revoked access-token ids in Redis until the tokens
// would have expired anyway. Lookups go through a circuit breaker and
// fail open: a down Redis must not take authentication down with it.
type Denylist struct {
	client  *redis.Client
	breaker *breaker
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{
		client:  client,
		breaker: newBreaker(5, 30*time.Second),
	}
}

// Revoke marks jti revoked for ttl. A non-positive ttl means the token
// has already expired and nothing needs recording.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d == nil || d.client == nil {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	err := d.breaker.execute(func() error {
		return d.client.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked. Backend errors and an
// open breaker both report "not revoked".
func (d *Denylist) IsRevoked(ctx context.Context, jti string) bool {
	if d == nil || d.client == nil {
		return false
	}
	revoked := false
	err := d.breaker.execute(func() error {
		n, err := d.client.Exists(ctx, denylistKeyPrefix+jti).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		revoked = n > 0
		return nil
	})
	if err != nil {
		return false
	}
	return revoked
}

func (d *Denylist) Health(ctx context.Context) error {
	if d == nil || d.client == nil {
		return errors.New("denylist backend not configured")
	}
	return d.client.Ping(ctx).Err()
}
