package middleware

import "sync"

// circuitBreaker counts consecutive primary store failures. Once open, checks
// go to the in-process fallback until enough trial calls to the primary succeed.
type circuitBreaker struct {
	mu               sync.Mutex
	open             bool
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
}

func newCircuitBreaker(failures, successes int) *circuitBreaker {
	return &circuitBreaker{failureThreshold: failures, successThreshold: successes}
}

func (c *circuitBreaker) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// recordFailure reports whether the breaker opened on this call.
func (c *circuitBreaker) recordFailure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount++
	c.successCount = 0
	if !c.open && c.failureCount >= c.failureThreshold {
		c.open = true
		return true
	}
	return false
}

// recordSuccess reports whether the breaker closed on this call.
func (c *circuitBreaker) recordSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		c.failureCount = 0
		return false
	}
	c.successCount++
	if c.successCount >= c.successThreshold {
		c.open = false
		c.failureCount = 0
		c.successCount = 0
		return true
	}
	return false
}
