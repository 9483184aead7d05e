// Package bucket implements sliding-window request counters keyed by client.
package bucket

import (
	"context"
	"sync"
	"time"

	"aulagate/internal/ratelimit/models"
)

// InMemoryBucketStore implements the bucket store using in-memory sliding
// windows. State is lost on restart, which silently resets all counters.
// Acceptable for a single instance; a shared store is needed beyond that.
type InMemoryBucketStore struct {
	mu      sync.RWMutex
	buckets map[string]*slidingWindow
}

// slidingWindow is the aggregate root for one bucket's rate limit state.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// tryConsume prunes expired timestamps, records the request, and reports
// whether it fit inside the limit. Blocked requests are recorded too, so a
// client hammering a blocked endpoint keeps its window occupied. A true
// sliding window: bursts spanning a boundary are still counted against the
// limit.
func (sw *slidingWindow) tryConsume(limit int, now time.Time) (allowed bool, remaining int, resetAt time.Time) {
	sw.pruneExpired(now)
	sw.timestamps = append(sw.timestamps, now)

	resetAt = sw.timestamps[0].Add(sw.window)
	if len(sw.timestamps) > limit {
		return false, 0, resetAt
	}
	return true, limit - len(sw.timestamps), resetAt
}

func (sw *slidingWindow) count(now time.Time) int {
	sw.pruneExpired(now)
	return len(sw.timestamps)
}

func (sw *slidingWindow) pruneExpired(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// empty reports whether every timestamp has aged out of the window.
func (sw *slidingWindow) empty(now time.Time) bool {
	return sw.count(now) == 0
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore() *InMemoryBucketStore {
	return &InMemoryBucketStore{
		buckets: make(map[string]*slidingWindow),
	}
}

// Allow checks whether a request fits in the key's window and records it.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &slidingWindow{
			timestamps: []time.Time{},
			window:     window,
		}
		s.buckets[key] = bucket
	}
	allowed, remaining, resetAt := bucket.tryConsume(limit, time.Now())

	return &models.Result{
		Allowed:    allowed,
		Limit:      limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: retryAfterSeconds(allowed, resetAt),
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current in-window request count for a key.
func (s *InMemoryBucketStore) GetCurrentCount(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.buckets[key]
	if !ok {
		return 0, nil
	}

	return bucket.count(time.Now()), nil
}

// Fill pre-populates a key's bucket up to the limit so subsequent checks are
// blocked until the window elapses. Used for administrative blocks.
func (s *InMemoryBucketStore) Fill(_ context.Context, key string, limit int, window time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	timestamps := make([]time.Time, limit)
	for i := range timestamps {
		timestamps[i] = now
	}
	s.buckets[key] = &slidingWindow{timestamps: timestamps, window: window}
	return nil
}

// Sweep deletes buckets whose windows have fully elapsed and returns how many
// were removed. Bounds memory growth; run on a fixed interval, never on the
// request path.
func (s *InMemoryBucketStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, bucket := range s.buckets {
		if bucket.empty(now) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live buckets. Used by sweep observability.
func (s *InMemoryBucketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

// retryAfterSeconds calculates seconds until retry is allowed.
func retryAfterSeconds(allowed bool, resetAt time.Time) int {
	if allowed {
		return 0
	}
	seconds := int(time.Until(resetAt).Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}
