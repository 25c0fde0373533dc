package gb

import (
	"fmt"

	"github.com/talgya/aethersync/internal/world"
)

// Bridge wraps an Emulator with the movement and memory-reading
// protocol the agent layer speaks.
type Bridge struct {
	emu Emulator
}

// NewBridge wraps the emulator.
func NewBridge(emu Emulator) *Bridge {
	return &Bridge{emu: emu}
}

var dirButtons = map[world.Direction]Button{
	world.DirUp:    ButtonUp,
	world.DirDown:  ButtonDown,
	world.DirLeft:  ButtonLeft,
	world.DirRight: ButtonRight,
}

// Position reads the player state from WRAM.
func (b *Bridge) Position() Position {
	return Position{
		X:   int(b.emu.ReadMemory(AddrPlayerX)),
		Y:   int(b.emu.ReadMemory(AddrPlayerY)),
		Map: int(b.emu.ReadMemory(AddrMapID)),
	}
}

// Move holds a directional button long enough for one overworld step,
// releases it, and returns the position read back afterwards.
func (b *Bridge) Move(dir world.Direction) (Position, error) {
	btn, ok := dirButtons[dir]
	if !ok {
		return Position{}, fmt.Errorf("no button mapped for direction %v", dir)
	}

	b.emu.Press(btn)
	for i := 0; i < framesPerTile; i++ {
		if !b.emu.Tick() {
			b.emu.Release(btn)
			return Position{}, fmt.Errorf("emulator halted mid-move")
		}
	}
	b.emu.Release(btn)

	return b.Position(), nil
}

// Advance ticks the emulator n frames.
func (b *Bridge) Advance(n int) error {
	for i := 0; i < n; i++ {
		if !b.emu.Tick() {
			return fmt.Errorf("emulator halted after %d of %d frames", i, n)
		}
	}
	return nil
}

// SaveState forwards to the emulator.
func (b *Bridge) SaveState(path string) error { return b.emu.SaveState(path) }

// LoadState forwards to the emulator.
func (b *Bridge) LoadState(path string) error { return b.emu.LoadState(path) }

// Stop forwards to the emulator.
func (b *Bridge) Stop() { b.emu.Stop() }
