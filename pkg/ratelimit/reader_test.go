package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name           string
		bytesPerSecond int64
		wantNil        bool
		wantBucket     int64
	}{
		{name: "OneMBPerSecond", bytesPerSecond: 1024 * 1024, wantBucket: 1024 * 1024},
		{name: "Zero", bytesPerSecond: 0, wantNil: true},
		{name: "Negative", bytesPerSecond: -100, wantNil: true},
		// Small rates still get a 64KB bucket for smooth transfers.
		{name: "SlowRate", bytesPerSecond: 1000, wantBucket: 65536},
		{name: "FastRate", bytesPerSecond: 100 * 1024 * 1024, wantBucket: 100 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(tt.bytesPerSecond)
			if tt.wantNil {
				if limiter != nil {
					t.Errorf("NewLimiter(%d) = %v, want nil", tt.bytesPerSecond, limiter)
				}
				return
			}
			if limiter == nil {
				t.Fatalf("NewLimiter(%d) returned nil", tt.bytesPerSecond)
			}
			if limiter.bucketSize != tt.wantBucket {
				t.Errorf("bucketSize = %d, want %d", limiter.bucketSize, tt.wantBucket)
			}
		})
	}
}

func TestNewReadCloser(t *testing.T) {
	t.Run("PassesDataThrough", func(t *testing.T) {
		content := []byte("folder data")
		base := io.NopCloser(bytes.NewReader(content))
		rc := NewReadCloser(context.Background(), base, NewLimiter(1024*1024))

		buf := make([]byte, 100)
		n, err := rc.Read(buf)
		if err != nil && err != io.EOF {
			t.Fatalf("Read() error = %v", err)
		}
		if !bytes.Equal(buf[:n], content) {
			t.Errorf("Read() = %q, want %q", buf[:n], content)
		}
		if err := rc.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	t.Run("NilLimiterPassthrough", func(t *testing.T) {
		base := io.NopCloser(strings.NewReader("folder data"))
		rc := NewReadCloser(context.Background(), base, nil)

		if rc != base {
			t.Error("NewReadCloser() with nil limiter should return the original reader")
		}
	})

	t.Run("MultipleReads", func(t *testing.T) {
		content := []byte("0123456789abcdef")
		rc := NewReadCloser(context.Background(), io.NopCloser(bytes.NewReader(content)), NewLimiter(1024*1024))

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("ReadAll() = %q, want %q", got, content)
		}
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rc := NewReadCloser(ctx, io.NopCloser(bytes.NewReader(make([]byte, 1024))), NewLimiter(1024*1024))

		if _, err := rc.Read(make([]byte, 100)); err == nil {
			t.Error("Read() should fail on a cancelled context")
		}
	})
}

func TestTokenBucket(t *testing.T) {
	t.Run("StartsFull", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter.tokens != limiter.bucketSize {
			t.Errorf("initial tokens = %d, want %d", limiter.tokens, limiter.bucketSize)
		}
	})

	t.Run("TakeRemovesTokens", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		before := limiter.tokens

		limiter.take(1000)

		if limiter.tokens != before-1000 {
			t.Errorf("tokens = %d, want %d", limiter.tokens, before-1000)
		}
	})

	t.Run("RefundRestoresShortReads", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		limiter.take(1000)
		before := limiter.tokens

		limiter.refund(400)

		if limiter.tokens != before+400 {
			t.Errorf("tokens = %d, want %d", limiter.tokens, before+400)
		}
	})

	t.Run("RefundCappedAtBucketSize", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)

		limiter.refund(5000)

		if limiter.tokens != limiter.bucketSize {
			t.Errorf("tokens = %d, want %d", limiter.tokens, limiter.bucketSize)
		}
	})

	t.Run("RefillFromElapsedTime", func(t *testing.T) {
		limiter := NewLimiter(1000)
		limiter.tokens = 0
		limiter.lastRefill = time.Now().Add(-100 * time.Millisecond)

		limiter.mu.Lock()
		limiter.refill()
		limiter.mu.Unlock()

		// Roughly 100ms at 1000 bytes/s. Generous bounds for scheduler jitter.
		if limiter.tokens < 50 || limiter.tokens > 250 {
			t.Errorf("tokens after refill = %d, expected near 100", limiter.tokens)
		}
	})

	t.Run("RefillCappedAtBucketSize", func(t *testing.T) {
		limiter := NewLimiter(1000)
		limiter.tokens = limiter.bucketSize - 10
		limiter.lastRefill = time.Now().Add(-time.Second)

		limiter.mu.Lock()
		limiter.refill()
		limiter.mu.Unlock()

		if limiter.tokens != limiter.bucketSize {
			t.Errorf("tokens = %d, want %d", limiter.tokens, limiter.bucketSize)
		}
	})
}

func BenchmarkRateLimitedRead(b *testing.B) {
	content := make([]byte, 1024*1024)
	limiter := NewLimiter(100 * 1024 * 1024)
	ctx := context.Background()
	buf := make([]byte, 64*1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rc := NewReadCloser(ctx, io.NopCloser(bytes.NewReader(content)), limiter)
		for {
			_, err := rc.Read(buf)
			if err == io.EOF {
				break
			}
			if err != nil {
				b.Fatalf("Read() error = %v", err)
			}
		}
	}
}
