// Package ratelimiter implements token bucket rate limiting for HTTP handlers.
//
// A Bucket takes tokens from a Store. MemoryStore keeps state in process and
// sweeps idle buckets in the background; RedisStore runs the refill and take
// in one Lua script so several instances share a budget. A refused request
// does not spend tokens.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       30,
//		RefillRate:     1,
//		RefillInterval: 2 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	r.With(ratelimiter.Middleware(limiter, func(r *http.Request) string {
//		return "lookup:" + clientip.FromRequest(r)
//	})).Post("/signup", handler)
//
// Middleware writes X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited route and adds Retry-After to the 429.
package ratelimiter
