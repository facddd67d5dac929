package routing

import "errors"

// ErrInvariantViolation marks an EdgeTimeFn that reported a non-finite or
// negative edge time. This is a contract violation, not a routing
// outcome, and is surfaced by panicking.
var ErrInvariantViolation = errors.New("routing: edge time function violated its contract")
