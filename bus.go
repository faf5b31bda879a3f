// bus.go - polymorphic shared interconnect routing typed memory accesses to components

package main

import (
	"log"
	"math"
)

// addressRange records which component owns [start,end] (inclusive). Ranges
// are kept in insertion order; a linear scan is fine below the handful of
// components a retro system ever registers.
type addressRange struct {
	start, end uint64
	owner      BusDevice
}

func (r addressRange) contains(addr uint64) bool {
	return addr >= r.start && addr <= r.end
}

// overlaps reports whether two ranges share any address, per the symmetric
// inclusive rule: a.start <= b.end && b.start <= a.end.
func (r addressRange) overlaps(o addressRange) bool {
	return r.start <= o.end && o.start <= r.end
}

// MemoryWatchCallback is invoked on a matching watchpoint access, before the
// access completes. isWrite distinguishes write from read.
type MemoryWatchCallback func(bus *Bus, addr uint64, isWrite bool)

// Bus is the shared interconnect: it routes typed reads/writes to whichever
// component owns the address, fans ticks out to every component in
// registration order, and supports memory watchpoints.
type Bus struct {
	logger *log.Logger

	components []BusDevice
	ranges     []addressRange

	watchpoints    map[uint64]struct{}
	watchCallback  MemoryWatchCallback
	watchOrder     []uint64 // preserves insertion order for deterministic iteration

	system *System
}

// NewBus constructs an empty bus. logger may be nil, in which case the bus
// is silent.
func NewBus(logger *log.Logger) *Bus {
	return &Bus{
		logger:      logger,
		watchpoints: make(map[uint64]struct{}),
	}
}

func (b *Bus) logf(format string, args ...any) {
	if b.logger != nil {
		b.logger.Printf(format, args...)
	}
}

// BindSystem attaches the owning System so components can look up siblings
// by name or type through the bus.
func (b *Bus) BindSystem(s *System) { b.system = s }

// BoundSystem returns the System this bus belongs to, or nil.
func (b *Bus) BoundSystem() *System { return b.system }

// AddComponent records c in insertion order. c is expected to have already
// been (or to shortly be) attached via AttachToBus for address routing.
func (b *Bus) AddComponent(c BusDevice) {
	b.components = append(b.components, c)
}

// RemoveComponent drops c from the tick fan-out and from address routing.
func (b *Bus) RemoveComponent(c BusDevice) {
	for i, existing := range b.components {
		if existing == c {
			b.components = append(b.components[:i], b.components[i+1:]...)
			break
		}
	}
	filtered := b.ranges[:0]
	for _, r := range b.ranges {
		if r.owner != c {
			filtered = append(filtered, r)
		}
	}
	b.ranges = filtered
	c.RemoveFromBus()
}

// RegisterComponentAddressRange registers [start,end] (inclusive) for c. The
// range is rejected iff it overlaps any existing range belonging to a
// different component.
func (b *Bus) RegisterComponentAddressRange(c BusDevice, start, end uint64) error {
	candidate := addressRange{start: start, end: end, owner: c}
	for _, r := range b.ranges {
		if r.owner != c && r.overlaps(candidate) {
			return &AddressInUseError{Addr: start, Len: end - start + 1}
		}
	}
	b.ranges = append(b.ranges, candidate)
	b.logf("[Bus] registered %s at [%#04x,%#04x]", c.Name(), start, end)
	return nil
}

// UpdateComponentAddressRange re-checks against every range owned by a
// different component, then overwrites c's own entries on success.
func (b *Bus) UpdateComponentAddressRange(c BusDevice, start, end uint64) error {
	candidate := addressRange{start: start, end: end, owner: c}
	for _, r := range b.ranges {
		if r.owner != c && r.overlaps(candidate) {
			return &AddressInUseError{Addr: start, Len: end - start + 1}
		}
	}
	for i, r := range b.ranges {
		if r.owner == c {
			b.ranges[i].start = start
			b.ranges[i].end = end
		}
	}
	return nil
}

func (b *Bus) find(addr uint64) (BusDevice, bool) {
	for _, r := range b.ranges {
		if r.contains(addr) {
			return r.owner, true
		}
	}
	return nil, false
}

func (b *Bus) fireWatch(addr uint64, isWrite bool) {
	if b.watchCallback == nil {
		return
	}
	if _, ok := b.watchpoints[addr]; ok {
		b.watchCallback(b, addr, isWrite)
	}
}

// ReadI8/ReadU8/... implement the typed read<T> bus operation: fire any
// matching watchpoint, scan ranges in insertion order, dispatch to the first
// owning component. InvalidAddressError if no range matches.

func (b *Bus) read(addr uint64, w Width) (uint32, error) {
	b.fireWatch(addr, false)
	owner, ok := b.find(addr)
	if !ok {
		return 0, &InvalidAddressError{Addr: addr, Access: AccessRead}
	}
	return owner.ReadTyped(addr, w)
}

func (b *Bus) write(addr uint64, w Width, v uint32) error {
	b.fireWatch(addr, true)
	owner, ok := b.find(addr)
	if !ok {
		return &InvalidAddressError{Addr: addr, Access: AccessWrite}
	}
	return owner.WriteTyped(addr, w, v)
}

func (b *Bus) ReadI8(addr uint64) (int8, error) {
	v, err := b.read(addr, WidthI8)
	return int8(v), err
}
func (b *Bus) ReadU8(addr uint64) (uint8, error) {
	v, err := b.read(addr, WidthU8)
	return uint8(v), err
}
func (b *Bus) ReadI16(addr uint64) (int16, error) {
	v, err := b.read(addr, WidthI16)
	return int16(v), err
}
func (b *Bus) ReadU16(addr uint64) (uint16, error) {
	v, err := b.read(addr, WidthU16)
	return uint16(v), err
}
func (b *Bus) ReadI32(addr uint64) (int32, error) {
	v, err := b.read(addr, WidthI32)
	return int32(v), err
}
func (b *Bus) ReadU32(addr uint64) (uint32, error) {
	return b.read(addr, WidthU32)
}
func (b *Bus) ReadF32(addr uint64) (float32, error) {
	v, err := b.read(addr, WidthF32)
	return math.Float32frombits(v), err
}

func (b *Bus) WriteI8(addr uint64, v int8) error   { return b.write(addr, WidthI8, uint32(uint8(v))) }
func (b *Bus) WriteU8(addr uint64, v uint8) error  { return b.write(addr, WidthU8, uint32(v)) }
func (b *Bus) WriteI16(addr uint64, v int16) error { return b.write(addr, WidthI16, uint32(uint16(v))) }
func (b *Bus) WriteU16(addr uint64, v uint16) error { return b.write(addr, WidthU16, uint32(v)) }
func (b *Bus) WriteI32(addr uint64, v int32) error { return b.write(addr, WidthI32, uint32(v)) }
func (b *Bus) WriteU32(addr uint64, v uint32) error { return b.write(addr, WidthU32, v) }
func (b *Bus) WriteF32(addr uint64, v float32) error {
	return b.write(addr, WidthF32, math.Float32bits(v))
}

// ReceiveTick invokes OnTick on every component in insertion order.
func (b *Bus) ReceiveTick() {
	for _, c := range b.components {
		c.OnTick()
	}
}

// PowerOn/PowerOff/LogStacktrace fan out to every component in order.
func (b *Bus) PowerOn() {
	for _, c := range b.components {
		c.PowerOn()
	}
}

func (b *Bus) PowerOff() {
	for _, c := range b.components {
		c.PowerOff()
	}
}

func (b *Bus) LogStacktrace() {
	for _, c := range b.components {
		c.LogStacktrace()
	}
}

// AddMemoryWatchPoint registers addr for watch callbacks. Duplicate adds are
// no-ops.
func (b *Bus) AddMemoryWatchPoint(addr uint64) {
	if _, ok := b.watchpoints[addr]; ok {
		return
	}
	b.watchpoints[addr] = struct{}{}
	b.watchOrder = append(b.watchOrder, addr)
}

// RemoveMemoryWatchPoint removes addr from the watch set, if present.
func (b *Bus) RemoveMemoryWatchPoint(addr uint64) {
	if _, ok := b.watchpoints[addr]; !ok {
		return
	}
	delete(b.watchpoints, addr)
	for i, a := range b.watchOrder {
		if a == addr {
			b.watchOrder = append(b.watchOrder[:i], b.watchOrder[i+1:]...)
			break
		}
	}
}

// RegisterMemoryWatchCallback installs the single callback fired on watch
// hits.
func (b *Bus) RegisterMemoryWatchCallback(cb MemoryWatchCallback) {
	b.watchCallback = cb
}

// Watchpoints returns the currently registered watch addresses in insertion
// order.
func (b *Bus) Watchpoints() []uint64 {
	out := make([]uint64, len(b.watchOrder))
	copy(out, b.watchOrder)
	return out
}
