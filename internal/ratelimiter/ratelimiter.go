package ratelimiter

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "payments_limiter"

// NewStore keeps counters in redis when a client is given so that limits
// hold across replicas, and in process memory otherwise.
func NewStore(client redis.UniversalClient) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: storePrefix}), nil
	}

	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: storePrefix})
}

func NewRateLimit(store limiter.Store, rate limiter.Rate, keyGetter stdlib.KeyGetter, onLimitReached stdlib.LimitReachedHandler) *stdlib.Middleware {
	limiter := limiter.New(store, rate)

	options := []stdlib.Option{stdlib.WithKeyGetter(keyGetter)}
	if onLimitReached != nil {
		options = append(options, stdlib.WithLimitReachedHandler(onLimitReached))
	}

	return stdlib.NewMiddleware(limiter, options...)
}

// IPKey keys by the client address. It expects RemoteAddr to have been
// rewritten by a real-ip middleware.
func IPKey(r *http.Request) string {
	return r.RemoteAddr
}
