package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock управляет временем limiter в тестах
type fakeClock struct {
	t  time.Time
	mu sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiter_Take(t *testing.T) {
	t.Run("requests within limit are allowed", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 5, time.Minute)

		for i := 0; i < 5; i++ {
			d := rl.Take("10.0.0.1")
			assert.True(t, d.Allowed, fmt.Sprintf("request %d should be allowed", i+1))
			assert.Equal(t, 4-i, d.Remaining)
		}
		d := rl.Take("10.0.0.1")
		assert.False(t, d.Allowed)
		assert.Zero(t, d.Remaining)
	})

	t.Run("window resets", func(t *testing.T) {
		rl, clock := newTestLimiter(t, 2, 15*time.Minute)

		first := rl.Take("k")
		assert.True(t, first.Allowed)
		assert.Equal(t, clock.Now().Add(15*time.Minute), first.Reset)
		assert.True(t, rl.Take("k").Allowed)
		assert.False(t, rl.Take("k").Allowed)

		clock.Advance(15*time.Minute - time.Second)
		assert.False(t, rl.Take("k").Allowed, "window is still open")

		clock.Advance(time.Second)
		assert.True(t, rl.Take("k").Allowed, "new window")
	})

	t.Run("concurrent requests share one counter", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 10, time.Minute)

		var wg sync.WaitGroup
		var mu sync.Mutex
		allowed := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if rl.Take("same").Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, allowed)
	})
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, time.Minute)

	rl.Take("192.168.1.1")
	clock.Advance(30 * time.Second)
	rl.Take("192.168.1.2")

	clock.Advance(30 * time.Second)
	rl.sweep()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.windows, 1)
	assert.Contains(t, rl.windows, "192.168.1.2")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimitMiddleware(t *testing.T) {
	mw, limiter := RateLimitMiddleware(3, time.Minute, discardLogger(), testResponder())
	defer limiter.Stop()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		// разные порты одного клиента делят лимит
		req.RemoteAddr = fmt.Sprintf("192.168.1.2:%d", 40000+i)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "3", w.Header().Get("RateLimit-Limit"))
		assert.Equal(t, fmt.Sprint(2-i), w.Header().Get("RateLimit-Remaining"))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.2:50000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "RATE_LIMITED", resp.Code)

	other := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	other.RemoteAddr = "192.168.1.3:1234"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code, "other IPs keep their own budget")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{name: "remote addr without port", remoteAddr: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr unparsable", remoteAddr: "pipe", want: "pipe"},
		{name: "x-forwarded-for single", remoteAddr: "10.0.0.1:1", xff: "203.0.113.1", want: "203.0.113.1"},
		{name: "x-forwarded-for chain", remoteAddr: "10.0.0.1:1", xff: "203.0.113.1, 10.0.0.2", want: "203.0.113.1"},
		{name: "x-real-ip", remoteAddr: "10.0.0.1:1", xRealIP: "198.51.100.7", want: "198.51.100.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestRateLimitMiddleware_LogsExceededRequests(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	mw, limiter := RateLimitMiddleware(1, time.Minute, logger, testResponder())
	defer limiter.Stop()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	out := logBuf.String()
	assert.Contains(t, out, "Rate limit exceeded")
	assert.Contains(t, out, "192.168.1.1")
	assert.Contains(t, out, "/api/auth/register")
}
