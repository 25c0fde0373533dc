package gb

import (
	"fmt"
	"os"
	"sync"
)

// Walking speed of the overworld engine: one tile per this many held
// frames.
const framesPerTile = 10

// Device is a deterministic in-process emulator used for headless runs
// and tests. It models just enough of the overworld to honor the
// Emulator contract: held directional buttons move the player one tile
// per framesPerTile frames, and the position is readable at the usual
// WRAM addresses.
type Device struct {
	mu      sync.Mutex
	mem     [0x10000]byte
	held    map[Button]bool
	heldFor map[Button]int
	frame   uint64
	stopped bool
	booted  bool
}

// NewDevice creates a device positioned at the given overworld tile.
func NewDevice(x, y, mapID int) *Device {
	d := &Device{
		held:    make(map[Button]bool),
		heldFor: make(map[Button]int),
	}
	d.mem[AddrPlayerX] = byte(x)
	d.mem[AddrPlayerY] = byte(y)
	d.mem[AddrMapID] = byte(mapID)
	return d
}

var dirDelta = map[Button][2]int{
	ButtonUp:    {0, -1},
	ButtonDown:  {0, 1},
	ButtonLeft:  {-1, 0},
	ButtonRight: {1, 0},
}

// Tick advances one frame. Directional holds accumulate; every
// framesPerTile consecutive held frames the player steps one tile.
func (d *Device) Tick() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	d.frame++

	for b, delta := range dirDelta {
		if !d.held[b] {
			d.heldFor[b] = 0
			continue
		}
		d.heldFor[b]++
		if d.heldFor[b]%framesPerTile == 0 {
			d.mem[AddrPlayerX] = clampByte(int(d.mem[AddrPlayerX]) + delta[0])
			d.mem[AddrPlayerY] = clampByte(int(d.mem[AddrPlayerY]) + delta[1])
		}
	}

	// Start at the title screen drops the player into the overworld.
	if d.held[ButtonStart] && !d.booted {
		d.booted = true
	}
	return true
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// ReadMemory returns one byte of emulated memory.
func (d *Device) ReadMemory(addr uint16) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mem[addr]
}

// Press marks a button held until Release.
func (d *Device) Press(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.held[b] = true
}

// Release clears a held button.
func (d *Device) Release(b Button) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.held, b)
	d.heldFor[b] = 0
}

// SaveState writes the full memory image to path.
func (d *Device) SaveState(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.WriteFile(path, d.mem[:], 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// LoadState restores a memory image written by SaveState.
func (d *Device) LoadState(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading state: %w", err)
	}
	if len(data) != len(d.mem) {
		return fmt.Errorf("state file is %d bytes, want %d", len(data), len(d.mem))
	}
	copy(d.mem[:], data)
	return nil
}

// Stop halts the device. Subsequent Ticks return false.
func (d *Device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
}

// Booted reports whether the title screen was dismissed.
func (d *Device) Booted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.booted
}

// Frame returns the frame counter.
func (d *Device) Frame() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}
