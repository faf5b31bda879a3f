// chip8_system.go - Chip8 system composition

package main

import (
	"log"
	"math/rand"
)

// NewChip8System assembles a Chip8 system: a 64x32 monochrome display, a
// 16-key keypad, a delay/sound timer pair that counts down once every
// chip8TimerPeriod system ticks (about 60Hz at the nominal 500Hz tick rate),
// and the interpreter itself. The interpreter owns its working memory
// directly rather than routing fetch/execute through the shared Bus (Chip8
// programs address a flat 4K space with no peripheral MMIO), so the bus here
// only fans ticks out to the components; none of them registers an address
// range on it.
func NewChip8System(logger *log.Logger, seed int64) *System {
	display := NewDisplay("chip8-display", 64, 32)
	input := NewInput("chip8-input")
	for i := 0; i < 16; i++ {
		input.RegisterKey(KeyCode(i))
	}

	rng := rand.New(rand.NewSource(seed))
	cpu := NewChip8CPU("chip8-cpu", logger, display, input, rng)

	const chip8TimerPeriod = 500 / 60
	delayTimer := NewTimer("chip8-delay", chip8TimerPeriod-1)
	delayTimer.RegisterCompletionCallback(func() {
		if cpu.delay > 0 {
			cpu.delay--
		}
	})
	soundTimer := NewTimer("chip8-sound", chip8TimerPeriod-1)
	soundTimer.RegisterCompletionCallback(func() {
		if cpu.sound > 0 {
			cpu.sound--
		}
	})

	debugger := NewChip8Debugger(cpu)
	cpu.SetDebugger(debugger)

	sys := NewSystem("chip8", 500, logger, []BusDevice{
		display, input, delayTimer, soundTimer, cpu,
	}, debugger)

	sys.RegisterFrontendFunction("reset", func(fe *FrontendInterface) {
		sys.PowerOff()
		sys.PowerOn()
	})

	return sys
}
