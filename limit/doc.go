// Package limit accounts for the concurrency slots of a queue.
//
// A [Manager] owns the queue's active count and its concurrency limit.
// On top of the queue-wide limit it can cap individual keys, typically the
// host a request targets, with their own concurrency ceiling and a
// token-bucket rate (golang.org/x/time/rate):
//
//	m := limit.NewManager(8,
//	    limit.KeyConfig{Key: "api.example.com", MaxConcurrency: 2},
//	    limit.KeyConfig{Key: "cdn.example.com", RateLimit: 20, RateBurst: 40},
//	)
//	if ok, _ := m.Acquire("api.example.com"); ok {
//	    defer m.Release("api.example.com")
//	    // run the request
//	}
//
// Keys without a [KeyConfig] are only bound by the queue-wide limit.
package limit
