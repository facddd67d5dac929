package vehicle

import "errors"

// errNoActiveEdge marks the internal, never-exported condition of a
// Vehicle with no drivable edge. It is swallowed inside Update; it never
// crosses the package boundary.
var errNoActiveEdge = errors.New("vehicle: no active edge")

// errTransientMissingEdge marks the internal condition where the
// Vehicle's current (from,to) pair no longer resolves to a Road in the
// Graph. Per the core's error policy this is transient, never fatal; it
// is swallowed inside Update.
var errTransientMissingEdge = errors.New("vehicle: current edge not found in graph")
