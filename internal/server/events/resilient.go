package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

// ResilientConfig holds circuit breaker settings for a publisher.
type ResilientConfig struct {
	Logger              *slog.Logger
	Timeout             time.Duration // сколько ждать в open перед пробным запросом
	Interval            time.Duration // период сброса счетчиков в closed
	ConsecutiveFailures uint32
}

// Resilient wraps a Publisher with a circuit breaker so a dead broker is not
// hammered on every request.
type Resilient struct {
	next    Publisher
	breaker circuitbreaker.CircuitBreaker[struct{}]
}

// NewResilient wraps next.
func NewResilient(next Publisher, cfg ResilientConfig) *Resilient {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	threshold := cfg.ConsecutiveFailures

	return &Resilient{
		next: next,
		breaker: circuitbreaker.New[struct{}](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if cfg.Logger != nil {
					cfg.Logger.Warn("event publisher circuit breaker state change",
						"from", from.String(),
						"to", to.String())
				}
			},
		}),
	}
}

// Publish implements Publisher.
func (r *Resilient) Publish(ctx context.Context, event Event) error {
	_, err := r.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.Publish(ctx, event)
	})
	return err
}

// Close implements Publisher.
func (r *Resilient) Close() error {
	return r.next.Close()
}
