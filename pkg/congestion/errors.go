package congestion

import "errors"

// ErrInvariantViolation marks a contract violation: a positive-length
// edge whose reported edgeTime evaluated to zero or non-finite. Per the
// core's error policy this is a programmer error and is fatal.
var ErrInvariantViolation = errors.New("congestion: invariant violation")
