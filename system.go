// system.go - component registry, run loop, and debugger wiring

package main

import (
	"log"
	"sync/atomic"
)

// SystemStatus is the volatile run-state a System's Runner observes.
type SystemStatus int32

const (
	StatusRunning SystemStatus = iota
	StatusStopping
	StatusHalted
)

func (s SystemStatus) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusStopping:
		return "Stopping"
	default:
		return "Halted"
	}
}

// System owns a bus, a named component registry (insertion-ordered), and an
// optional debug interface.
type System struct {
	name     string
	tickRate int
	logger   *log.Logger

	bus          *Bus
	order        []string
	components   map[string]BusDevice

	debuggingEnabled bool
	debugger         DebugInterface

	status atomic.Int32

	frontendFuncs map[string]func(*FrontendInterface)
}

// NewSystem constructs a System named name with the given components
// (registered on the bus in the order given) and an optional debugger.
func NewSystem(name string, tickRate int, logger *log.Logger, components []BusDevice, debugger DebugInterface) *System {
	s := &System{
		name:          name,
		tickRate:      tickRate,
		logger:        logger,
		bus:           NewBus(logger),
		components:    make(map[string]BusDevice),
		debugger:      debugger,
		frontendFuncs: make(map[string]func(*FrontendInterface)),
	}
	s.bus.BindSystem(s)
	for _, c := range components {
		s.order = append(s.order, c.Name())
		s.components[c.Name()] = c
		if err := c.AttachToBus(s.bus); err != nil {
			if s.logger != nil {
				s.logger.Printf("[System %s] failed to attach %s: %v", name, c.Name(), err)
			}
			continue
		}
		s.bus.AddComponent(c)
	}
	return s
}

func (s *System) Name() string { return s.name }
func (s *System) Bus() *Bus    { return s.bus }

func (s *System) PowerOn()  { s.bus.PowerOn() }
func (s *System) PowerOff() { s.bus.PowerOff() }

// GetComponent returns the named component, or nil if absent.
func (s *System) GetComponent(name string) BusDevice { return s.components[name] }

// GetComponentsByType returns every component tagged kind, in registration
// order.
func (s *System) GetComponentsByType(kind ComponentType) []BusDevice {
	var out []BusDevice
	for _, name := range s.order {
		if c := s.components[name]; c != nil && c.Type() == kind {
			out = append(out, c)
		}
	}
	return out
}

// GetFirstComponentByType returns the first component tagged kind, or nil.
func (s *System) GetFirstComponentByType(kind ComponentType) BusDevice {
	for _, name := range s.order {
		if c := s.components[name]; c != nil && c.Type() == kind {
			return c
		}
	}
	return nil
}

// UseDebugger enables or disables debugger gating of the run loop.
func (s *System) UseDebugger(enabled bool) { s.debuggingEnabled = enabled }

// DebuggerEnabled reports whether the run loop consults the debug
// interface's IsStopped before each tick.
func (s *System) DebuggerEnabled() bool { return s.debuggingEnabled }

// GetDebugger returns the system's debug interface, or nil.
func (s *System) GetDebugger() DebugInterface { return s.debugger }

func (s *System) LogStacktrace() { s.bus.LogStacktrace() }

// RegisterFrontendFunction attaches a named action the front-end may invoke.
func (s *System) RegisterFrontendFunction(label string, fn func(*FrontendInterface)) {
	s.frontendFuncs[label] = fn
}

// FrontendFunctions returns the registered frontend action labels.
func (s *System) FrontendFunctions() map[string]func(*FrontendInterface) {
	return s.frontendFuncs
}

// Status loads the current run status.
func (s *System) Status() SystemStatus { return SystemStatus(s.status.Load()) }

// SetStatus stores a new run status (used to request Stopping).
func (s *System) SetStatus(st SystemStatus) { s.status.Store(int32(st)) }

// Run loops while status == Running, calling bus.ReceiveTick each pass,
// except that when debugging is enabled and the debug interface reports
// IsStopped, the tick is skipped. On exit it writes status = Halted.
func (s *System) Run() {
	s.status.Store(int32(StatusRunning))
	for SystemStatus(s.status.Load()) == StatusRunning {
		if s.debuggingEnabled && s.debugger != nil && s.debugger.IsStopped() {
			continue
		}
		s.bus.ReceiveTick()
	}
	s.status.Store(int32(StatusHalted))
}
