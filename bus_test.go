package main

import "testing"

// newTestRAM builds a plain read-write memory block the way bus_test.cpp's
// Memory<ReadWrite> fixtures do, ready to register on a fresh Bus.
func newTestRAM(name string, base, size uint64) *Memory {
	return NewMemory(name, ComponentMemory, MemoryReadWrite, base, size)
}

func TestBusAddComponent(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)

	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}
	bus.AddComponent(ram)
}

func TestBusAddMultipleNonOverlappingRAM(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	ram2 := newTestRAM("ram2", 1024, 2048)

	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus(ram): %v", err)
	}
	if err := ram2.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus(ram2): %v", err)
	}
}

// TestBusAddConflictingRAMAddresses mirrors bus_test.cpp's
// AddConflictingRAMAddressese: a second block overlapping an already
// registered range must be rejected with AddressInUseError (invariant #1).
func TestBusAddConflictingRAMAddresses(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	ram2 := newTestRAM("ram2", 0, 1024)

	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus(ram): %v", err)
	}

	err := ram2.AttachToBus(bus)
	if err == nil {
		t.Fatalf("AttachToBus(ram2) = nil, want AddressInUseError for an overlapping range")
	}
	if _, ok := err.(*AddressInUseError); !ok {
		t.Fatalf("AttachToBus(ram2) error = %T, want *AddressInUseError", err)
	}
}

func TestBusAddressComponent(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	v, err := bus.ReadU8(0x7F)
	if err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	if v != 0 {
		t.Fatalf("ReadU8(0x7F)=%d, want 0", v)
	}
}

// TestBusInvalidAddressComponent mirrors bus_test.cpp's InvalidAddressComponent:
// an access outside every registered range fails with InvalidAddressError.
func TestBusInvalidAddressComponent(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	if _, err := bus.ReadU8(2048); err == nil {
		t.Fatalf("ReadU8(2048) = nil error, want InvalidAddressError")
	} else if _, ok := err.(*InvalidAddressError); !ok {
		t.Fatalf("ReadU8(2048) error = %T, want *InvalidAddressError", err)
	}

	if err := bus.WriteU16(2048, 0xCAFE); err == nil {
		t.Fatalf("WriteU16(2048) = nil error, want InvalidAddressError")
	} else if _, ok := err.(*InvalidAddressError); !ok {
		t.Fatalf("WriteU16(2048) error = %T, want *InvalidAddressError", err)
	}
}

func TestBusRemoveComponentAccessAddress(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}
	bus.AddComponent(ram)

	if v, err := bus.ReadU8(512); err != nil || v != 0 {
		t.Fatalf("ReadU8(512)=%d,%v, want 0,nil", v, err)
	}

	bus.RemoveComponent(ram)

	if _, err := bus.ReadU8(512); err == nil {
		t.Fatalf("ReadU8(512) after RemoveComponent = nil error, want InvalidAddressError")
	}
	if err := bus.WriteU16(0x50, 0xCAFE); err == nil {
		t.Fatalf("WriteU16(0x50) after RemoveComponent = nil error, want InvalidAddressError")
	}
}

// TestBusReadWritePrimitiveTypes is a table-driven rendition of bus_test.cpp's
// ReadPrimitiveTypes/WritePrimitiveTypes: every typed accessor must read back
// whatever it last wrote at the same address.
func TestBusReadWritePrimitiveTypes(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	cases := []struct {
		name        string
		write, read func(t *testing.T)
	}{
		{
			name: "U8",
			write: func(t *testing.T) {
				if err := bus.WriteU8(0x50, 0x12); err != nil {
					t.Fatalf("WriteU8: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadU8(0x50)
				if err != nil || v != 0x12 {
					t.Fatalf("ReadU8=%d,%v, want 0x12,nil", v, err)
				}
			},
		},
		{
			name: "I8",
			write: func(t *testing.T) {
				if err := bus.WriteI8(0x50, 0x34); err != nil {
					t.Fatalf("WriteI8: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadI8(0x50)
				if err != nil || v != 0x34 {
					t.Fatalf("ReadI8=%d,%v, want 0x34,nil", v, err)
				}
			},
		},
		{
			name: "U16",
			write: func(t *testing.T) {
				if err := bus.WriteU16(0x50, 0x1234); err != nil {
					t.Fatalf("WriteU16: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadU16(0x50)
				if err != nil || v != 0x1234 {
					t.Fatalf("ReadU16=%#x,%v, want 0x1234,nil", v, err)
				}
			},
		},
		{
			name: "I16",
			write: func(t *testing.T) {
				if err := bus.WriteI16(0x50, 0x5678); err != nil {
					t.Fatalf("WriteI16: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadI16(0x50)
				if err != nil || v != 0x5678 {
					t.Fatalf("ReadI16=%#x,%v, want 0x5678,nil", v, err)
				}
			},
		},
		{
			name: "U32",
			write: func(t *testing.T) {
				if err := bus.WriteU32(0x50, 0x12345678); err != nil {
					t.Fatalf("WriteU32: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadU32(0x50)
				if err != nil || v != 0x12345678 {
					t.Fatalf("ReadU32=%#x,%v, want 0x12345678,nil", v, err)
				}
			},
		},
		{
			name: "I32",
			write: func(t *testing.T) {
				if err := bus.WriteI32(0x50, -2023406815); err != nil { // 0x87654321
					t.Fatalf("WriteI32: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadI32(0x50)
				if err != nil || v != -2023406815 {
					t.Fatalf("ReadI32=%#x,%v, want 0x87654321,nil", v, err)
				}
			},
		},
		{
			name: "F32",
			write: func(t *testing.T) {
				if err := bus.WriteF32(0x50, 3.5); err != nil {
					t.Fatalf("WriteF32: %v", err)
				}
			},
			read: func(t *testing.T) {
				v, err := bus.ReadF32(0x50)
				if err != nil || v != 3.5 {
					t.Fatalf("ReadF32=%v,%v, want 3.5,nil", v, err)
				}
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.write(t)
			c.read(t)
		})
	}
}

// TestBusReadOnlyWriteFails exercises invariant #2: a write to a
// MemoryReadOnly block fails rather than mutating storage, mirroring
// memory_test.cpp's AccessReadOnlyMemory.
func TestBusReadOnlyWriteFails(t *testing.T) {
	bus := NewBus(nil)
	rom := NewMemory("rom", ComponentMemory, MemoryReadOnly, 0, 32)
	if err := rom.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	if v, err := bus.ReadU8(0); err != nil || v != 0 {
		t.Fatalf("ReadU8(0)=%d,%v, want 0,nil", v, err)
	}

	err := bus.WriteU8(0, 0x12)
	if err == nil {
		t.Fatalf("WriteU8 to read-only block succeeded, want ReadOnlyViolationError")
	}
	if _, ok := err.(*ReadOnlyViolationError); !ok {
		t.Fatalf("WriteU8 error = %T, want *ReadOnlyViolationError", err)
	}
}

// TestBusMultiMappedEcho mirrors multimappedmemory_test.cpp's
// ReadWriteToMultiMapped: a write through any alias is visible through every
// alias (invariant #3).
func TestBusMultiMappedEcho(t *testing.T) {
	bus := NewBus(nil)
	mm := NewMultiMappedMemory("mm", ComponentMemory, 0x1000, []uint64{0x00000, 0x10000})
	if err := mm.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	const addr = 0x50
	if err := bus.WriteU8(addr, 0x12); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	if v, err := bus.ReadU8(addr); err != nil || v != 0x12 {
		t.Fatalf("ReadU8(primary)=%d,%v, want 0x12,nil", v, err)
	}
	if v, err := bus.ReadU8(0x10000 + addr); err != nil || v != 0x12 {
		t.Fatalf("ReadU8(alias)=%d,%v, want 0x12,nil", v, err)
	}

	if err := bus.WriteU8(0x10000+addr, 0x34); err != nil {
		t.Fatalf("WriteU8(alias): %v", err)
	}
	if v, err := bus.ReadU8(addr); err != nil || v != 0x34 {
		t.Fatalf("ReadU8(primary) after alias write=%d,%v, want 0x34,nil", v, err)
	}
	if v, err := bus.ReadU8(0x10000 + addr); err != nil || v != 0x34 {
		t.Fatalf("ReadU8(alias) after alias write=%d,%v, want 0x34,nil", v, err)
	}
}

// TestBusWatchpointFiresOncePerAccess covers invariant #9: only the starting
// address of an access is checked against the watchpoint set, so a 16-bit
// write spanning two watched bytes must still invoke the callback exactly
// once.
func TestBusWatchpointFiresOncePerAccess(t *testing.T) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		t.Fatalf("AttachToBus: %v", err)
	}

	var hits []uint64
	bus.RegisterMemoryWatchCallback(func(b *Bus, addr uint64, isWrite bool) {
		hits = append(hits, addr)
	})
	bus.AddMemoryWatchPoint(0x50)
	bus.AddMemoryWatchPoint(0x51)

	if err := bus.WriteU16(0x50, 0xCAFE); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}

	if len(hits) != 1 || hits[0] != 0x50 {
		t.Fatalf("watch hits=%v, want exactly [0x50]", hits)
	}
}

func TestBusAddMemoryWatchPointDuplicateIsNoop(t *testing.T) {
	bus := NewBus(nil)
	bus.AddMemoryWatchPoint(0x10)
	bus.AddMemoryWatchPoint(0x10)

	got := bus.Watchpoints()
	if len(got) != 1 || got[0] != 0x10 {
		t.Fatalf("Watchpoints()=%v, want exactly [0x10]", got)
	}
}

// BenchmarkBusReadU8Direct mirrors cpu_benchmark_test.go's
// Benchmark6502_Memory_Read_Direct shape: a tight loop over the bus's fast
// dispatch path for a single owning component.
func BenchmarkBusReadU8Direct(b *testing.B) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		b.Fatalf("AttachToBus: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := bus.ReadU8(0x50); err != nil {
			b.Fatalf("ReadU8: %v", err)
		}
	}
}

func BenchmarkBusWriteU8Direct(b *testing.B) {
	bus := NewBus(nil)
	ram := newTestRAM("ram", 0, 1024)
	if err := ram.AttachToBus(bus); err != nil {
		b.Fatalf("AttachToBus: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bus.WriteU8(0x50, byte(i)); err != nil {
			b.Fatalf("WriteU8: %v", err)
		}
	}
}
