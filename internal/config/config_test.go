package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/screen_live.jpg", cfg.Server.ScreenshotPath)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.Equal(t, RectConfig{MinX: 4, MinY: 4, MaxX: 11, MaxY: 11}, cfg.Sim.Bounds)
	assert.Equal(t, RectConfig{MinX: 4, MinY: 3, MaxX: 8, MaxY: 7}, cfg.Sim.SpawnBox)
	assert.Len(t, cfg.Sim.Agents, 5)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aether.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9999"
engine:
  interval_ms: 250
  speed: 4.0
sim:
  seed: 7
  tax_rate: 0.1
  bounds:
    min_x: 0
    min_y: 0
    max_x: 19
    max_y: 19
  agents:
    - name: Solo
      personality: explorer
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 4.0, cfg.Engine.Speed)
	assert.Equal(t, 0.1, cfg.Sim.TaxRate)
	assert.Equal(t, RectConfig{MinX: 0, MinY: 0, MaxX: 19, MaxY: 19}, cfg.Sim.Bounds)
	require.Len(t, cfg.Sim.Agents, 1)
	assert.Equal(t, "Solo", cfg.Sim.Agents[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero interval":    func(c *Config) { c.Engine.IntervalMS = 0 },
		"negative speed":   func(c *Config) { c.Engine.Speed = -1 },
		"tax over one":     func(c *Config) { c.Sim.TaxRate = 1.5 },
		"bad event chance": func(c *Config) { c.Sim.EventChance = -0.1 },
		"zero chat cap":    func(c *Config) { c.Sim.ChatCapacity = 0 },
		"inverted bounds":  func(c *Config) { c.Sim.Bounds = RectConfig{MinX: 10, MaxX: 4, MinY: 4, MaxY: 11} },
		"inverted spawn":   func(c *Config) { c.Sim.SpawnBox = RectConfig{MinX: 4, MaxX: 8, MinY: 9, MaxY: 3} },
		"nameless agent":   func(c *Config) { c.Sim.Agents = []AgentSpec{{}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaults()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AETHER_ADDR", ":7070")
	t.Setenv("AETHER_SEED", "1337")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, int64(1337), cfg.Sim.Seed)
}
