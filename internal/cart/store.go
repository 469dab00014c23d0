package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located or expired.
var ErrNotFound = errors.New("cart not found")

// Store persists carts keyed by cart id.
type Store interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, id string, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each cart as a JSON document whose TTL is refreshed on
// every write.
type RedisStore struct {
	R      *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s RedisStore) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + id
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Load implements Store.
func (s RedisStore) Load(ctx context.Context, id string) (*Cart, error) {
	if s.R == nil {
		return nil, errors.New("cart store: redis client not configured")
	}
	data, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return &c, nil
}

// Save implements Store.
func (s RedisStore) Save(ctx context.Context, id string, c *Cart) error {
	if s.R == nil {
		return errors.New("cart store: redis client not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, s.key(id), data, s.ttl()).Err()
}

// Delete implements Store.
func (s RedisStore) Delete(ctx context.Context, id string) error {
	if s.R == nil {
		return errors.New("cart store: redis client not configured")
	}
	return s.R.Del(ctx, s.key(id)).Err()
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is an in-process Store used by tests and single-node setups.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu    sync.Mutex
	carts map[string]memoryEntry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, carts: make(map[string]memoryEntry)}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		delete(s.carts, id)
		return nil, ErrNotFound
	}
	var c Cart
	if err := json.Unmarshal(entry.data, &c); err != nil {
		return nil, err
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return &c, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts == nil {
		s.carts = make(map[string]memoryEntry)
	}
	entry := memoryEntry{data: data}
	if s.TTL > 0 {
		entry.expires = s.now().Add(s.TTL)
	}
	s.carts[id] = entry
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}
