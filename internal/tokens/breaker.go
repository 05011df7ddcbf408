package tokens

import (
	"errors"
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

var ErrBreakerOpen = errors.New("denylist backend circuit open")

// breaker keeps a failing Redis backend from stalling every request.
// After maxFailures consecutive errors calls are short-circuited until
// the cooldown passes, then a limited number of probes decide whether
// to close again.
type breaker struct {
	mu              sync.Mutex
	state           breakerState
	failures        int
	probes          int
	lastFailureTime time.Time

	maxFailures int
	cooldown    time.Duration
	maxProbes   int
}

func newBreaker(maxFailures int, cooldown time.Duration) *breaker {
	return &breaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		maxProbes:   3,
	}
}

func (b *breaker) execute(fn func() error) error {
	if !b.allow() {
		return ErrBreakerOpen
	}
	if err := fn(); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.lastFailureTime) >= b.cooldown {
			b.state = breakerHalfOpen
			b.probes = 0
			return true
		}
		return false
	case breakerHalfOpen:
		if b.probes < b.maxProbes {
			b.probes++
			return true
		}
		return false
	default:
		return false
	}
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailureTime = time.Now()

	switch b.state {
	case breakerClosed:
		if b.failures >= b.maxFailures {
			b.state = breakerOpen
		}
	case breakerHalfOpen:
		b.state = breakerOpen
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.failures = 0
	case breakerHalfOpen:
		b.state = breakerClosed
		b.failures = 0
	}
}
