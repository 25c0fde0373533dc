package gb

import (
	"fmt"
	"log/slog"
)

// Frame budgets of the stock boot path.
const (
	logoFrames  = 200 // Nintendo logo scroll
	holdFrames  = 30  // menu button hold
	titleFrames = 100 // intro-to-title transition
	loadFrames  = 200 // overworld load after the menu
	bootRetries = 3   // per-step verification retries
)

// bootStep is one unit of the boot choreography. verify is optional;
// steps without one are assumed to have succeeded once run returns.
type bootStep struct {
	name   string
	run    func(b *Bridge) error
	verify func(b *Bridge) bool
}

func waitStep(name string, frames int) bootStep {
	return bootStep{
		name: name,
		run:  func(b *Bridge) error { return b.Advance(frames) },
	}
}

func pressStep(name string, btn Button) bootStep {
	return bootStep{
		name: name,
		run: func(b *Bridge) error {
			b.emu.Press(btn)
			if err := b.Advance(holdFrames); err != nil {
				b.emu.Release(btn)
				return err
			}
			b.emu.Release(btn)
			return nil
		},
	}
}

// bootSequence reproduces the stock path from power-on to the
// overworld: logo scroll, intro skip, title screen, main menu, load.
// The final step verifies that the player position reads back from
// WRAM.
func bootSequence() []bootStep {
	steps := []bootStep{
		waitStep("logo", logoFrames),
		pressStep("skip intro", ButtonStart),
		waitStep("title screen", titleFrames),
		pressStep("enter menu", ButtonStart),
		pressStep("confirm", ButtonA),
		waitStep("load overworld", loadFrames),
	}
	steps[len(steps)-1].verify = func(b *Bridge) bool {
		return b.Position() != Position{}
	}
	return steps
}

// Boot drives the emulator from power-on into a playable overworld.
// Each step runs once and, when it carries a verification check, is
// retried a bounded number of times before Boot gives up.
func Boot(emu Emulator) error {
	b := NewBridge(emu)

	for _, step := range bootSequence() {
		var err error
		for attempt := 1; attempt <= bootRetries; attempt++ {
			if err = step.run(b); err != nil {
				return fmt.Errorf("boot step %q: %w", step.name, err)
			}
			if step.verify == nil || step.verify(b) {
				err = nil
				break
			}
			err = fmt.Errorf("boot step %q: verification failed", step.name)
			slog.Warn("boot step not verified, retrying",
				"step", step.name, "attempt", attempt)
		}
		if err != nil {
			return err
		}
		slog.Debug("boot step done", "step", step.name)
	}

	pos := b.Position()
	slog.Info("boot complete", "x", pos.X, "y", pos.Y, "map", pos.Map)
	return nil
}
