package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/roadsim/pkg/config"
	"github.com/ardalan-sia/roadsim/pkg/routing"
)

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	require.Equal(t, 10, cfg.DefaultCapacity)
	require.Equal(t, routing.DijkstraKind, cfg.DefaultStrategy)
	require.InDelta(t, 3.0, cfg.RerouteCooldown.Seconds(), 1e-9)
	require.Equal(t, 50.0, cfg.Car.V0)
	require.Equal(t, 25.0, cfg.Truck.V0)
}

func TestLoadConfigOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	doc := "default_capacity: 20\ndefault_strategy: AStar\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.DefaultCapacity)
	require.Equal(t, routing.AStarKind, cfg.DefaultStrategy)
	// untouched fields keep their default values.
	require.Equal(t, 50.0, cfg.Car.V0)
}

func TestLoadConfigRejectsUnknownStrategy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_strategy: teleport\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrUnknownStrategy)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_real_field: 1\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}
