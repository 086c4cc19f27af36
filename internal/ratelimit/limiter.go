package ratelimit

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultPrefix namespaces limiter keys in the backing store.
const DefaultPrefix = "storefront:ratelimit"

// NewMemoryStore returns a process-local limiter store.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: DefaultPrefix})
}

// NewRedisStore returns a limiter store shared across replicas.
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: DefaultPrefix})
}

// New builds a limiter from a formatted rate such as "10-M". A nil store
// falls back to memory.
func New(rate string, store limiter.Store) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", rate, err)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return limiter.New(store, parsed), nil
}
