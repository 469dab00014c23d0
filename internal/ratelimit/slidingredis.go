package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow counts events per key in a Redis sorted set scored by event
// time in microseconds. It guards checkout, where a burst at a fixed window
// boundary would otherwise double the allowance.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewSlidingWindow builds a SlidingWindow storing its sets under prefix.
func NewSlidingWindow(client *redis.Client, prefix string) SlidingWindow {
	return SlidingWindow{Client: client, Prefix: prefix}
}

// Allow implements Allower. Rejected events are removed again so a client
// hammering a closed window does not keep it closed. reset is when the
// oldest counted event leaves the window.
func (s SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := s.now()
	if s.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}

	redisKey := s.Prefix + key
	member := key + ":" + uuid.NewString()
	cutoff := now.Add(-window).UnixMicro()

	pipe := s.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.PExpire(ctx, redisKey, window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, now.Add(window), err
	}

	current := int(countCmd.Val())
	reset = now.Add(window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		reset = time.UnixMicro(int64(oldest[0].Score)).Add(window)
	}
	if current > max {
		if err = s.Client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return false, 0, reset, err
		}
		return false, 0, reset, nil
	}
	return true, max - current, reset, nil
}

func (s SlidingWindow) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
