// Package models holds the rate limiting types shared by the stores and the
// HTTP middleware.
package models

import (
	"fmt"
	"time"
)

// Class groups endpoints that share a limit.
type Class string

const (
	// ClassRead covers queries: regions, listings, orders, balances.
	ClassRead Class = "read"
	// ClassWrite covers signed extrinsics and operator calls.
	ClassWrite Class = "write"
)

// Limit is a sliding window allowance.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds, set only when the request was refused.
	RetryAfter int
}

// Key names the bucket for a client and class.
func Key(class Class, client string) string {
	return fmt.Sprintf("regionx:ratelimit:%s:%s", class, client)
}

// ExceededResponse is written with 429.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
