package middleware

import (
	"testing"
	"time"
)

func testLimiter(perSecond float64, burst int, at *time.Time) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*tokenBucket),
		perSecond: perSecond,
		burst:     float64(burst),
		now:       func() time.Time { return *at },
	}
}

func TestRateLimiterBurstThenDeny(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	rl := testLimiter(1, 3, &at)

	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.7") {
			t.Fatalf("request %d within burst must be allowed", i+1)
		}
	}
	if rl.Allow("203.0.113.7") {
		t.Fatalf("request past the burst must be denied")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	rl := testLimiter(1, 1, &at)

	if !rl.Allow("203.0.113.7") {
		t.Fatalf("first request must be allowed")
	}
	if rl.Allow("203.0.113.7") {
		t.Fatalf("bucket is empty, second request must be denied")
	}

	at = at.Add(time.Second)
	if !rl.Allow("203.0.113.7") {
		t.Fatalf("one second at 1/s must refill a token")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	rl := testLimiter(1, 1, &at)

	if !rl.Allow("203.0.113.7") {
		t.Fatalf("first client must be allowed")
	}
	if !rl.Allow("198.51.100.4") {
		t.Fatalf("a different client must have its own bucket")
	}
	if rl.Allow("203.0.113.7") {
		t.Fatalf("first client's bucket must stay drained")
	}
}
