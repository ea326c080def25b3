package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Sim.TickRate)
	assert.Equal(t, 15, cfg.Sim.SnapshotEvery)
	assert.Equal(t, "none", cfg.Database.Mode)
	assert.Equal(t, 50*time.Millisecond, cfg.Script.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalGCInterval)
	assert.Equal(t, 40, cfg.Security.RateLimitBurst)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.Security.InspectorAllow)
	assert.InDelta(t, 1.0/60, cfg.Sim.DT(), 1e-12)
	assert.Zero(t, cfg.Server.DebugPort)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  debug: true
  debug_port: 8090
sim:
  tick_rate: 30
  seed: 42
  duration: 90s
  double_bounce: true
  phase_thresholds:
    hive: [0.5, 0.25]
database:
  mode: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, 8090, cfg.Server.DebugPort)
	assert.Equal(t, 30, cfg.Sim.TickRate)
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.Equal(t, 90*time.Second, cfg.Sim.Duration)
	assert.True(t, cfg.Sim.DoubleBounce)
	assert.Equal(t, []float64{0.5, 0.25}, cfg.Sim.PhaseThresholds["hive"])
	assert.Equal(t, "memory", cfg.Database.Mode)
	// untouched keys keep their defaults
	assert.Equal(t, 15, cfg.Sim.SnapshotEvery)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BOSSARENA_SIM_SEED", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Sim.Seed)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad mode":      "database:\n  mode: postgres\n",
		"zero tick":     "sim:\n  tick_rate: 0\n",
		"ratio range":   "sim:\n  phase_thresholds:\n    hive: [1.2]\n",
		"not decreasing": "sim:\n  phase_thresholds:\n    hive: [0.3, 0.6]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
