package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"votegate/internal/otp/models"
	"votegate/pkg/platform/sentinel"
)

const (
	codeKeyPrefix  = "otp:code:"
	proofKeyPrefix = "otp:proof:"

	// expiredRetention keeps an expired code long enough to report it as expired
	// rather than unknown. Reissuing overwrites it earlier.
	expiredRetention = time.Hour
)

// redeemScript applies one attempt atomically: used and expired are checked before
// the value, a wrong value counts an attempt and burns the code at max_attempts.
var redeemScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 'not_found'
end
local f = redis.call('HMGET', KEYS[1], 'value', 'expires_ms', 'used', 'max_attempts')
if f[3] == '1' then
	return 'used'
end
if tonumber(ARGV[2]) >= tonumber(f[2]) then
	return 'expired'
end
if f[1] ~= ARGV[1] then
	local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
	local max = tonumber(f[4])
	if max > 0 and attempts >= max then
		redis.call('HSET', KEYS[1], 'used', '1')
	end
	return 'mismatch'
end
redis.call('HSET', KEYS[1], 'used', '1')
return 'ok'
`)

// RedisStore shares codes and proofs across instances. Each code is a hash whose key
// expires a while after the code itself, so no sweep is needed.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(contact string, purpose models.Purpose) string {
	return codeKeyPrefix + models.Key(contact, purpose)
}

func (s *RedisStore) Issue(ctx context.Context, code *models.Code) error {
	key := codeKey(code.Contact, code.Purpose)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"contact", code.Contact,
			"purpose", string(code.Purpose),
			"value", code.Value,
			"expires_ms", code.ExpiresAt.UnixMilli(),
			"used", boolField(code.Used),
			"attempts", code.Attempts,
			"max_attempts", code.MaxAttempts,
			"created_ms", code.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, code.ExpiresAt.Add(expiredRetention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	return nil
}

func (s *RedisStore) Redeem(ctx context.Context, contact string, purpose models.Purpose, value string, now time.Time) error {
	res, err := redeemScript.Run(ctx, s.client, []string{codeKey(contact, purpose)}, value, now.UnixMilli()).Text()
	if err != nil {
		return fmt.Errorf("redeem code: %w", err)
	}
	switch res {
	case "ok":
		return nil
	case "not_found":
		return fmt.Errorf("code for %s: %w", purpose, sentinel.ErrNotFound)
	case "used":
		return sentinel.ErrAlreadyUsed
	case "expired":
		return sentinel.ErrExpired
	case "mismatch":
		return models.ErrMismatch
	default:
		return fmt.Errorf("redeem code: unexpected result %q", res)
	}
}

func (s *RedisStore) Find(ctx context.Context, contact string, purpose models.Purpose) (*models.Code, error) {
	fields, err := s.client.HGetAll(ctx, codeKey(contact, purpose)).Result()
	if err != nil {
		return nil, fmt.Errorf("find code: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("code for %s: %w", purpose, sentinel.ErrNotFound)
	}
	expiresMs, _ := strconv.ParseInt(fields["expires_ms"], 10, 64)
	createdMs, _ := strconv.ParseInt(fields["created_ms"], 10, 64)
	attempts, _ := strconv.Atoi(fields["attempts"])
	maxAttempts, _ := strconv.Atoi(fields["max_attempts"])
	return &models.Code{
		Contact:     fields["contact"],
		Purpose:     models.Purpose(fields["purpose"]),
		Value:       fields["value"],
		ExpiresAt:   time.UnixMilli(expiresMs),
		Used:        fields["used"] == "1",
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		CreatedAt:   time.UnixMilli(createdMs),
	}, nil
}

// DeleteExpired is a no-op: Redis key expiry does the sweeping.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) SaveProof(ctx context.Context, proof models.Proof) error {
	err := s.client.SetArgs(ctx, proofKeyPrefix+proof.Contact, "1", redis.SetArgs{ExpireAt: proof.ExpiresAt}).Err()
	if err != nil {
		return fmt.Errorf("save proof: %w", err)
	}
	return nil
}

func (s *RedisStore) HasProof(ctx context.Context, contact string, _ time.Time) (bool, error) {
	n, err := s.client.Exists(ctx, proofKeyPrefix+contact).Result()
	if err != nil {
		return false, fmt.Errorf("check proof: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) ConsumeProof(ctx context.Context, contact string, _ time.Time) error {
	err := s.client.GetDel(ctx, proofKeyPrefix+contact).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("verification proof: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("consume proof: %w", err)
	}
	return nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
