package graphmodel

import "errors"

var (
	// ErrSelfLoop is returned by NewRoad when FromID == ToID.
	ErrSelfLoop = errors.New("graphmodel: road endpoints must be distinct")

	// ErrDuplicateNodeID is returned by AddNode when the ID is already
	// present in the Graph.
	ErrDuplicateNodeID = errors.New("graphmodel: node id already present")

	// ErrUnknownEndpoint is returned when a Road references an
	// Intersection ID not present in the Graph.
	ErrUnknownEndpoint = errors.New("graphmodel: road endpoint not found in graph")
)
