// Package circuitbreaker guards the content store upload path. After
// repeated upload failures the breaker opens and the persistence gateway
// short-circuits straight to its local fallback outcome instead of waiting
// on a backend that is known to be down.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state
type State string

const (
	// StateClosed means the circuit is closed and calls are allowed
	StateClosed State = "closed"
	// StateOpen means the circuit is open and calls are blocked
	StateOpen State = "open"
	// StateHalfOpen means the circuit is testing if the backend has recovered
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config configures a circuit breaker
type Config struct {
	Name        string
	MaxFailures int           // Consecutive failures before opening
	Timeout     time.Duration // Time to wait before attempting half-open
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) *Config {
	return &Config{
		Name:        name,
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// CircuitBreaker implements a consecutive-failure circuit breaker
type CircuitBreaker struct {
	name        string
	maxFailures int
	timeout     time.Duration

	mu               sync.Mutex
	state            State
	consecutiveFails int
	lastFailureTime  time.Time
}

// New creates a circuit breaker in the closed state
func New(config *Config) *CircuitBreaker {
	return &CircuitBreaker{
		name:        config.Name,
		maxFailures: config.MaxFailures,
		timeout:     config.Timeout,
		state:       StateClosed,
	}
}

// Execute runs fn under breaker protection. When the breaker is open and
// the recovery timeout has not elapsed, fn is not called and ErrCircuitOpen
// is returned immediately.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) < cb.timeout {
			return ErrCircuitOpen
		}
		// Recovery window elapsed; allow one probe call through.
		cb.state = StateHalfOpen
	}

	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.state = StateClosed
		cb.consecutiveFails = 0
		return
	}

	cb.consecutiveFails++
	cb.lastFailureTime = time.Now()

	if cb.state == StateHalfOpen || cb.consecutiveFails >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset manually resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.consecutiveFails = 0
}
