package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/config"
	"github.com/talgya/aethersync/internal/world"
)

func TestBuildWorldHonorsConfiguredRects(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Sim.Bounds = config.RectConfig{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}
	cfg.Sim.SpawnBox = config.RectConfig{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}

	w := buildWorld(cfg)
	assert.Equal(t, world.Rect{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}, w.Bounds())

	spawn := world.Rect{MinX: 1, MinY: 1, MaxX: 2, MaxY: 2}
	for i := 0; i < 20; i++ {
		a := w.Register(string(rune('A'+i)), agents.PersonalityExplorer)
		assert.True(t, spawn.Contains(a.Position), "spawn %+v outside configured box", a.Position)
	}
}

func TestRegisterRosterUsesConfiguredAgents(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	w := buildWorld(cfg)
	registerRoster(w, cfg)

	views := w.AgentViews()
	require.Len(t, views, 5)
	assert.Equal(t, "Koolie", views[0].Name)
	assert.Equal(t, agents.PersonalityExplorer, views[0].Personality)
	assert.Equal(t, agents.PersonalityFighter, views[4].Personality)
}
