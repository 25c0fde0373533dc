// Package gb is the seam to the Game Boy emulator. The emulation engine
// itself is an external collaborator; everything here talks to it
// through the Emulator interface and never assumes a particular
// implementation.
package gb

// Button identifies one Game Boy input.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonStart
	ButtonSelect
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = map[Button]string{
	ButtonA:      "a",
	ButtonB:      "b",
	ButtonStart:  "start",
	ButtonSelect: "select",
	ButtonUp:     "up",
	ButtonDown:   "down",
	ButtonLeft:   "left",
	ButtonRight:  "right",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return "unknown"
}

// WRAM addresses for the overworld player state (Red/Blue layout).
const (
	AddrPlayerY = 0xD360
	AddrPlayerX = 0xD361
	AddrMapID   = 0xD35E
)

// Emulator is the control surface the rest of the system consumes.
// Tick advances one frame and reports false once the emulator halts.
type Emulator interface {
	Tick() bool
	ReadMemory(addr uint16) byte
	Press(b Button)
	Release(b Button)
	SaveState(path string) error
	LoadState(path string) error
	Stop()
}

// Position is the player state read back from WRAM.
type Position struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Map int `json:"map"`
}
