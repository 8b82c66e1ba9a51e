package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/server/handlers"
)

// RateLimiter считает запросы с одного ключа в фиксированном окне
type RateLimiter struct {
	windows map[string]*counter
	now     func() time.Time
	done    chan struct{}
	limit   int
	window  time.Duration
	mu      sync.Mutex
	stop    sync.Once
}

type counter struct {
	start time.Time
	hits  int
}

// Decision is the outcome of one Take
type Decision struct {
	Reset     time.Time // конец текущего окна
	Remaining int
	Allowed   bool
}

// NewRateLimiter создает limiter на limit запросов за window и запускает сборку старых окон
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*counter),
		now:     time.Now,
		done:    make(chan struct{}),
		limit:   limit,
		window:  window,
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep удаляет закончившиеся окна
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, c := range rl.windows {
		if !now.Before(c.start.Add(rl.window)) {
			delete(rl.windows, key)
		}
	}
}

// Stop останавливает сборку окон; повторный вызов безопасен
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

// Take counts one request for key
func (rl *RateLimiter) Take(key string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.windows[key]
	if !ok || !now.Before(c.start.Add(rl.window)) {
		c = &counter{start: now}
		rl.windows[key] = c
	}

	c.hits++
	return Decision{
		Allowed:   c.hits <= rl.limit,
		Remaining: max(rl.limit-c.hits, 0),
		Reset:     c.start.Add(rl.window),
	}
}

// RateLimitMiddleware answers 429 RATE_LIMITED once a client IP exceeds limit requests per window.
// The limiter is returned so the caller can Stop it.
func RateLimitMiddleware(limit int, window time.Duration, logger *slog.Logger, respond *handlers.Responder) (func(http.Handler) http.Handler, *RateLimiter) {
	limiter := NewRateLimiter(limit, window)

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			d := limiter.Take(ip)

			resetIn := max(int(time.Until(d.Reset).Round(time.Second)/time.Second), 0)
			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(resetIn))

			if !d.Allowed {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					slog.String("ip", ip),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				h.Set("Retry-After", strconv.Itoa(resetIn))
				respond.Error(w, r, apperr.New(apperr.KindRateLimited, "Too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	return mw, limiter
}

// getClientIP: первый адрес X-Forwarded-For, затем X-Real-IP, затем RemoteAddr без порта
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// без порта, иначе каждое соединение получит свой счетчик
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
