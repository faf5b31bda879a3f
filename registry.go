// registry.go - in-process system constructor registry
//
// The reference platform resolves a system by dynamically loading a shared
// library and looking up a CreateSystem() symbol. Go has no equivalent ABI,
// so systems register a named constructor function here instead; the
// composition root resolves by name from a CLI argument.

package main

import "log"

// SystemFactory builds a fresh System instance, seeded for determinism
// where the underlying emulator needs randomness (Chip8's RND opcode).
type SystemFactory func(logger *log.Logger, seed int64) *System

var systemRegistry = map[string]SystemFactory{
	"chip8": func(logger *log.Logger, seed int64) *System {
		return NewChip8System(logger, seed)
	},
	"gameboy": func(logger *log.Logger, seed int64) *System {
		return NewGameBoySystem(logger)
	},
}

// ResolveSystem looks up a registered system constructor by name.
func ResolveSystem(name string) (SystemFactory, bool) {
	f, ok := systemRegistry[name]
	return f, ok
}

// RegisteredSystemNames returns every registered system name.
func RegisteredSystemNames() []string {
	names := make([]string, 0, len(systemRegistry))
	for name := range systemRegistry {
		names = append(names, name)
	}
	return names
}
