package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Local serialises callers within one process. It satisfies the same contract
// as Locker for deployments that keep carts in memory. The ttl is ignored.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// WithLock runs fn while holding the in-process lock for key.
func (l *Local) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("lock: callback not provided")
	}
	slot := l.slot(key)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot }()
	return fn(ctx)
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.slots == nil {
		l.slots = make(map[string]chan struct{})
	}
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}
