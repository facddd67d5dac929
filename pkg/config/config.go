// Package config carries every simulation-wide tunable as a single
// immutable value, loadable from YAML and overlaid onto defaults. There
// is no process-wide singleton; a Config is always threaded explicitly
// into simulation.New.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ardalan-sia/roadsim/pkg/routing"
	"github.com/ardalan-sia/roadsim/pkg/vehicle"
)

// Config is the full set of tunables a Simulation is constructed with.
type Config struct {
	SimulationSpeed float64
	DefaultStrategy routing.StrategyKind
	DefaultCapacity int
	RerouteCooldown time.Duration
	Car             vehicle.IDMParams
	Truck           vehicle.IDMParams
}

// rawConfig mirrors Config but keeps strategy and cooldown as
// YAML-friendly scalars (a string name, a float of seconds), since
// StrategyKind and time.Duration don't round-trip through yaml.v3 by
// default the way the exported Config's callers expect.
type rawConfig struct {
	SimulationSpeed    *float64           `yaml:"simulation_speed"`
	DefaultStrategy    *string            `yaml:"default_strategy"`
	DefaultCapacity    *int               `yaml:"default_capacity"`
	RerouteCooldownSec *float64           `yaml:"reroute_cooldown_seconds"`
	Car                *vehicle.IDMParams `yaml:"car"`
	Truck              *vehicle.IDMParams `yaml:"truck"`
}

// DefaultConfig returns the baseline tunables, matching the Car/Truck IDM
// defaults, default capacity, default strategy, and reroute cooldown.
func DefaultConfig() Config {
	return Config{
		SimulationSpeed: 1.0,
		DefaultStrategy: routing.DijkstraKind,
		DefaultCapacity: 10,
		RerouteCooldown: 3 * time.Second,
		Car:             vehicle.CarIDM(),
		Truck:           vehicle.TruckIDM(),
	}
}

// LoadConfig reads a YAML document at path and overlays it onto
// DefaultConfig, field by field; any field absent from the document
// keeps its default value. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if raw.SimulationSpeed != nil {
		cfg.SimulationSpeed = *raw.SimulationSpeed
	}
	if raw.DefaultStrategy != nil {
		kind, err := parseStrategyKind(*raw.DefaultStrategy)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultStrategy = kind
	}
	if raw.DefaultCapacity != nil {
		cfg.DefaultCapacity = *raw.DefaultCapacity
	}
	if raw.RerouteCooldownSec != nil {
		cfg.RerouteCooldown = time.Duration(*raw.RerouteCooldownSec * float64(time.Second))
	}
	if raw.Car != nil {
		cfg.Car = *raw.Car
	}
	if raw.Truck != nil {
		cfg.Truck = *raw.Truck
	}
	return cfg, nil
}

func parseStrategyKind(name string) (routing.StrategyKind, error) {
	switch name {
	case "Dijkstra", "dijkstra":
		return routing.DijkstraKind, nil
	case "AStar", "astar", "a-star":
		return routing.AStarKind, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
