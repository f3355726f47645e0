// Package ratelimit throttles the cross-volume copy fallback with a token
// bucket, so large migrations onto live network shares do not saturate them.
package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBucketSize keeps slow limits from degrading into byte-at-a-time reads.
const minBucketSize = 64 * 1024

// Limiter meters bytes across every file of one migration run. A nil
// *Limiter is valid and means unlimited.
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastRefill time.Time
}

// NewLimiter creates a limiter for the given rate in bytes per second.
// A rate of zero or less returns nil, disabling limiting.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := bytesPerSecond
	if bucketSize < minBucketSize {
		bucketSize = minBucketSize
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastRefill:     time.Now(),
	}
}

// take blocks until n tokens are available, then removes them. n must not
// exceed the bucket size.
func (l *Limiter) take(n int64) {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return
		}

		deficit := n - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(deficit) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		time.Sleep(wait)
	}
}

// refund returns tokens paid for bytes a short read never delivered.
func (l *Limiter) refund(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens += n
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
}

// refill credits tokens for the time elapsed since the last refill, capped
// at the bucket size. Caller holds the mutex.
func (l *Limiter) refill() {
	now := time.Now()
	credit := int64(float64(now.Sub(l.lastRefill)) / float64(time.Second) * float64(l.bytesPerSecond))
	if credit <= 0 {
		return
	}

	l.tokens += credit
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
	l.lastRefill = now
}

// reader is an io.ReadCloser that pays for each read out of the shared
// token bucket before passing it through.
type reader struct {
	rc      io.ReadCloser
	limiter *Limiter
	ctx     context.Context
}

// NewReadCloser wraps rc so its reads are throttled by the limiter. A nil
// limiter returns rc unchanged. The context keeps a read that is parked
// waiting for tokens from outliving a cancelled move.
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &reader{rc: rc, limiter: limiter, ctx: ctx}
}

func (r *reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	want := int64(len(p))
	if want > r.limiter.bucketSize {
		want = r.limiter.bucketSize
	}
	r.limiter.take(want)

	n, err := r.rc.Read(p[:want])
	if int64(n) < want {
		r.limiter.refund(want - int64(n))
	}
	return n, err
}

func (r *reader) Close() error {
	return r.rc.Close()
}
