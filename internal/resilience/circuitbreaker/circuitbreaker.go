// Package circuitbreaker guards outbound calls to news sources and
// notification webhooks with github.com/sony/gobreaker.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Policy decides when a breaker trips and how it recovers.
type Policy struct {
	Name string

	// HalfOpenProbes is how many calls may pass while half-open.
	HalfOpenProbes uint32
	// Window clears the closed-state counts; zero keeps them forever.
	Window time.Duration
	// Cooldown is the time spent open before probing again.
	Cooldown time.Duration
	// TripRatio is the failure ratio (0..1) that opens the breaker once
	// MinSamples calls have been seen in the current window.
	TripRatio  float64
	MinSamples uint32

	// OnOpen runs synchronously when the breaker transitions to open.
	OnOpen func(name string)
}

// ForSource is the policy for one crawl source. Sources fail in long
// stretches (blocks, layout changes), so the breaker stays open for minutes.
func ForSource(source string) Policy {
	return Policy{
		Name:           "crawler-" + source,
		HalfOpenProbes: 3,
		Window:         time.Minute,
		Cooldown:       10 * time.Minute,
		TripRatio:      0.8,
		MinSamples:     5,
	}
}

// ForChannel is the policy for one notification channel.
func ForChannel(channel string) Policy {
	return Policy{
		Name:           "notifier-" + channel,
		HalfOpenProbes: 3,
		Window:         30 * time.Second,
		Cooldown:       time.Minute,
		TripRatio:      0.6,
		MinSamples:     5,
	}
}

// Breaker is a named gobreaker.CircuitBreaker.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

// New builds a breaker from p.
func New(p Policy) *Breaker {
	minSamples, ratio := p.MinSamples, p.TripRatio
	onOpen := p.OnOpen

	return &Breaker{
		name: p.Name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        p.Name,
			MaxRequests: p.HalfOpenProbes,
			Interval:    p.Window,
			Timeout:     p.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				if c.Requests < minSamples {
					return false
				}
				return float64(c.TotalFailures)/float64(c.Requests) >= ratio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
				if to == gobreaker.StateOpen && onOpen != nil {
					onOpen(name)
				}
			},
		}),
	}
}

// Do runs fn through the breaker. While open it returns an error for
// which IsRejected reports true without calling fn.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// IsRejected reports whether err came from a breaker refusing the call
// rather than from the guarded function.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) Name() string { return b.name }

// State is one of "closed", "half-open" or "open".
func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) IsOpen() bool { return b.cb.State() == gobreaker.StateOpen }
