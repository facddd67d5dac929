package config

import "errors"

// ErrUnknownStrategy is returned by LoadConfig when default_strategy
// names anything other than "Dijkstra"/"dijkstra" or
// "AStar"/"astar"/"a-star".
var ErrUnknownStrategy = errors.New("config: unknown default_strategy")
