package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned when an email has used up its failed-login budget.
	ErrRateLimited = errors.New("identity: too many failed logins")
	// ErrLimiterUnavailable wraps Redis failures of the login limiter.
	ErrLimiterUnavailable = errors.New("identity: login limiter unavailable")
)

// LoginLimiter throttles failed password attempts per email.
type LoginLimiter interface {
	Check(ctx context.Context, email string) error
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// LimiterConfig tunes a RedisLimiter.
type LimiterConfig struct {
	MaxAttempts int
	Cooldown    time.Duration
	Prefix      string
}

// RedisLimiter counts failed logins in fixed windows: the first failure starts a
// window of Cooldown, and once MaxAttempts failures land in it further logins are
// refused until it expires.
type RedisLimiter struct {
	redis  redis.UniversalClient
	config LimiterConfig
}

// NewRedisLimiter returns a limiter over client. Zero fields get 5 attempts,
// a 15 minute cooldown and the "ial:" prefix.
func NewRedisLimiter(client redis.UniversalClient, cfg LimiterConfig) *RedisLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ial:"
	}
	return &RedisLimiter{redis: client, config: cfg}
}

// Check reports ErrRateLimited once the budget for email is spent.
func (l *RedisLimiter) Check(ctx context.Context, email string) error {
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Fail records one failed attempt.
func (l *RedisLimiter) Fail(ctx context.Context, email string) error {
	key := l.key(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *RedisLimiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

// Attempts returns the failures counted in the current window.
func (l *RedisLimiter) Attempts(ctx context.Context, email string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return int(count), nil
}

func (l *RedisLimiter) key(email string) string {
	return l.config.Prefix + strings.ToLower(strings.TrimSpace(email))
}
