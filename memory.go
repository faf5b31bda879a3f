// memory.go - fixed-size byte-array components: RW, RO, and multi-mapped variants

package main

import "encoding/binary"

// MemoryMode selects read-write or read-only semantics for a Memory block.
type MemoryMode int

const (
	MemoryReadWrite MemoryMode = iota
	MemoryReadOnly
)

// Memory is a single contiguous byte-vector component mapped at one base
// address. 16/32-bit accesses are little-endian across consecutive bytes.
// Writes to a MemoryReadOnly block always fail with ReadOnlyViolationError
// (the read path is identical for RW and RO).
type Memory struct {
	baseComponent

	mode MemoryMode
	data []byte

	// contexts hold named snapshots of data for the boot-ROM shadow/reveal
	// mechanism (see gameboy_system.go and gameboy_cpu.go's disableBootROM).
	// active indexes into contexts, or is
	// -1 if no context has been installed yet.
	contexts map[int][]byte
	active   int
}

// NewMemory constructs a memory block of size bytes based at base.
func NewMemory(name string, kind ComponentType, mode MemoryMode, base, size uint64) *Memory {
	return &Memory{
		baseComponent: baseComponent{name: name, kind: kind, base: base, bound: base + size, hasOwnWindow: true},
		mode:          mode,
		data:          make([]byte, size),
		contexts:      make(map[int][]byte),
		active:        -1,
	}
}

func (m *Memory) Size() uint64 { return uint64(len(m.data)) }

// Clear zeroes the backing storage.
func (m *Memory) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// LoadData copies size bytes from data into the block, bounds-checked
// against the block's length.
func (m *Memory) LoadData(data []byte, size uint64) error {
	if size > uint64(len(m.data)) {
		return &InvalidAddressError{Addr: m.base, Access: AccessWrite}
	}
	copy(m.data, data[:size])
	return nil
}

// OverwriteContext copies data[:length] into a named context's storage
// without activating it.
func (m *Memory) OverwriteContext(id int, data []byte, length uint64) {
	buf := make([]byte, len(m.data))
	n := copy(buf, data[:min64(length, uint64(len(data)))])
	_ = n
	m.contexts[id] = buf
}

// RestoreContext makes context id the active storage backing all reads and
// writes, copying it into the live buffer.
func (m *Memory) RestoreContext(id int) {
	ctx, ok := m.contexts[id]
	if !ok {
		return
	}
	copy(m.data, ctx)
	m.active = id
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func (m *Memory) AttachToBus(b *Bus) error {
	base := m.base
	bound := base + uint64(len(m.data))
	if err := b.RegisterComponentAddressRange(m, base, bound-1); err != nil {
		return err
	}
	m.bus = b
	return nil
}

// SetBase fixes the base address this block is mapped at. Must be called
// before AttachToBus.
func (m *Memory) SetBase(base uint64) {
	m.base = base
	m.bound = base + uint64(len(m.data))
	m.hasOwnWindow = true
}

func (m *Memory) OnTick()        {}
func (m *Memory) PowerOn()       {}
func (m *Memory) PowerOff()      {}

func (m *Memory) inWindow(addr uint64, w Width) bool {
	off := addr - m.base
	return addr >= m.base && off+w.Size() <= uint64(len(m.data))
}

func (m *Memory) ReadTyped(addr uint64, w Width) (uint32, error) {
	if !m.inWindow(addr, w) {
		return 0, &InvalidAddressError{Addr: addr, Access: AccessRead}
	}
	off := addr - m.base
	switch w {
	case WidthI8, WidthU8:
		return uint32(m.data[off]), nil
	case WidthI16, WidthU16:
		return uint32(binary.LittleEndian.Uint16(m.data[off:])), nil
	default:
		return binary.LittleEndian.Uint32(m.data[off:]), nil
	}
}

func (m *Memory) WriteTyped(addr uint64, w Width, v uint32) error {
	if m.mode == MemoryReadOnly {
		return &ReadOnlyViolationError{Addr: addr, Len: w.Size()}
	}
	if !m.inWindow(addr, w) {
		return &InvalidAddressError{Addr: addr, Access: AccessWrite}
	}
	off := addr - m.base
	switch w {
	case WidthI8, WidthU8:
		m.data[off] = byte(v)
	case WidthI16, WidthU16:
		binary.LittleEndian.PutUint16(m.data[off:], uint16(v))
	default:
		binary.LittleEndian.PutUint32(m.data[off:], v)
	}
	return nil
}

// MultiMappedMemory is a single byte-storage mapped at several alias
// windows; a write at any alias is visible at every alias.
type MultiMappedMemory struct {
	baseComponent

	size    uint64
	data    []byte
	aliases [][2]uint64 // [start,end] inclusive, one per alias window
}

// NewMultiMappedMemory constructs a block of size bytes mapped at each of
// the given alias windows (each [start, start+size-1]).
func NewMultiMappedMemory(name string, kind ComponentType, size uint64, bases []uint64) *MultiMappedMemory {
	m := &MultiMappedMemory{
		baseComponent: baseComponent{name: name, kind: kind},
		size:          size,
		data:          make([]byte, size),
	}
	for _, base := range bases {
		m.aliases = append(m.aliases, [2]uint64{base, base + size - 1})
	}
	return m
}

func (m *MultiMappedMemory) AttachToBus(b *Bus) error {
	for _, a := range m.aliases {
		if err := b.RegisterComponentAddressRange(m, a[0], a[1]); err != nil {
			return err
		}
	}
	m.bus = b
	return nil
}

func (m *MultiMappedMemory) OnTick()   {}
func (m *MultiMappedMemory) PowerOn()  {}
func (m *MultiMappedMemory) PowerOff() {}

// normalize finds the alias window containing addr and returns the offset
// into the shared storage.
func (m *MultiMappedMemory) normalize(addr uint64, w Width) (uint64, bool) {
	for _, a := range m.aliases {
		if addr >= a[0] && addr <= a[1] {
			off := addr - a[0]
			if off+w.Size() <= m.size {
				return off, true
			}
			return 0, false
		}
	}
	return 0, false
}

func (m *MultiMappedMemory) ReadTyped(addr uint64, w Width) (uint32, error) {
	off, ok := m.normalize(addr, w)
	if !ok {
		return 0, &InvalidAddressError{Addr: addr, Access: AccessRead}
	}
	switch w {
	case WidthI8, WidthU8:
		return uint32(m.data[off]), nil
	case WidthI16, WidthU16:
		return uint32(binary.LittleEndian.Uint16(m.data[off:])), nil
	default:
		return binary.LittleEndian.Uint32(m.data[off:]), nil
	}
}

func (m *MultiMappedMemory) WriteTyped(addr uint64, w Width, v uint32) error {
	off, ok := m.normalize(addr, w)
	if !ok {
		return &InvalidAddressError{Addr: addr, Access: AccessWrite}
	}
	switch w {
	case WidthI8, WidthU8:
		m.data[off] = byte(v)
	case WidthI16, WidthU16:
		binary.LittleEndian.PutUint16(m.data[off:], uint16(v))
	default:
		binary.LittleEndian.PutUint32(m.data[off:], v)
	}
	return nil
}
