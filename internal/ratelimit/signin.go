package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/branchops/internal/config"
)

const (
	keySignInClient = "signin:client:%s"
	keyBranchCreate = "branch:create:%s"

	branchLockTTL = 10 * time.Second
)

// SignInLimiter throttles sign-in attempts per client. A nil limiter allows everything.
type SignInLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSignInLimiter(client *redis.Client, cfg config.Config) *SignInLimiter {
	if client == nil || cfg.RateLimit.SignInRate <= 0 || cfg.RateLimit.SignInBurst <= 0 {
		return nil
	}
	return &SignInLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.RateLimit.SignInRate,
		burst:  cfg.RateLimit.SignInBurst,
	}
}

func (l *SignInLimiter) AllowSignIn(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	d, err := l.bucket.Take(ctx, fmt.Sprintf(keySignInClient, strings.ToLower(strings.TrimSpace(key))), l.rate, l.burst)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// BranchLock serializes branch creation per candidate id so two concurrent
// creates never probe the same free suffix.
type BranchLock struct {
	locker *Locker
}

func NewBranchLock(client *redis.Client) *BranchLock {
	if client == nil {
		return nil
	}
	return &BranchLock{locker: NewLocker(client)}
}

// Acquire takes the lock for baseID and returns its release func. With no
// redis configured it is a no-op.
func (b *BranchLock) Acquire(ctx context.Context, baseID string) (func(), error) {
	if b == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf(keyBranchCreate, baseID)
	token, ok, err := b.locker.TryLock(ctx, key, branchLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		_ = b.locker.Release(context.WithoutCancel(ctx), key, token)
	}, nil
}
