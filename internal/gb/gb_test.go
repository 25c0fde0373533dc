package gb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethersync/internal/world"
)

func TestDeviceMovesOneTilePerHold(t *testing.T) {
	d := NewDevice(5, 5, 1)
	b := NewBridge(d)

	pos, err := b.Move(world.DirRight)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 6, Y: 5, Map: 1}, pos)

	pos, err = b.Move(world.DirUp)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 6, Y: 4, Map: 1}, pos)
}

func TestDeviceIgnoresUnheldFrames(t *testing.T) {
	d := NewDevice(5, 5, 1)
	b := NewBridge(d)

	require.NoError(t, b.Advance(100))
	assert.Equal(t, Position{X: 5, Y: 5, Map: 1}, b.Position())
	assert.Equal(t, uint64(100), d.Frame())
}

func TestDevicePositionClampsAtZero(t *testing.T) {
	d := NewDevice(0, 0, 1)
	b := NewBridge(d)

	pos, err := b.Move(world.DirLeft)
	require.NoError(t, err)
	assert.Equal(t, 0, pos.X)
	pos, err = b.Move(world.DirUp)
	require.NoError(t, err)
	assert.Equal(t, 0, pos.Y)
}

func TestMoveAfterStopFails(t *testing.T) {
	d := NewDevice(5, 5, 1)
	b := NewBridge(d)
	d.Stop()

	_, err := b.Move(world.DirDown)
	assert.Error(t, err)
	assert.Error(t, b.Advance(1))
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quicksave.state")

	d := NewDevice(7, 3, 2)
	b := NewBridge(d)
	_, err := b.Move(world.DirRight)
	require.NoError(t, err)
	require.NoError(t, b.SaveState(path))

	_, err = b.Move(world.DirRight)
	require.NoError(t, err)
	assert.Equal(t, 9, b.Position().X)

	require.NoError(t, b.LoadState(path))
	assert.Equal(t, Position{X: 8, Y: 3, Map: 2}, b.Position())
}

func TestLoadStateMissingFile(t *testing.T) {
	d := NewDevice(0, 0, 0)
	err := NewBridge(d).LoadState(filepath.Join(t.TempDir(), "nope.state"))
	assert.Error(t, err)
}

func TestBootReachesOverworld(t *testing.T) {
	d := NewDevice(4, 4, 1)
	require.NoError(t, Boot(d))
	assert.True(t, d.Booted())

	// Logo + two menu holds + title wait + confirm + load.
	want := uint64(logoFrames + 3*holdFrames + titleFrames + loadFrames)
	assert.Equal(t, want, d.Frame())
}

func TestBootFailsOnHaltedEmulator(t *testing.T) {
	d := NewDevice(4, 4, 1)
	d.Stop()
	assert.Error(t, Boot(d))
}

func TestButtonNames(t *testing.T) {
	assert.Equal(t, "start", ButtonStart.String())
	assert.Equal(t, "a", ButtonA.String())
	assert.Equal(t, "unknown", Button(99).String())
}
