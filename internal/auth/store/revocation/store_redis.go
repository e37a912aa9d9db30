package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"votegate/internal/auth/metrics"
)

// Redis key prefix for revoked tokens
const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL shares revocations across instances. Redis expires each key with the
// token, so no sweep is needed.
type RedisTRL struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

type RedisTRLOption func(*RedisTRL)

func WithRedisMetrics(m *metrics.Metrics) RedisTRLOption {
	return func(t *RedisTRL) {
		t.metrics = m
	}
}

func NewRedisTRL(client *redis.Client, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken uses SET with expiry so the marker disappears with the token.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	defer t.metrics.ObserveRevocationCheck(time.Now())

	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
