// chip8_debug.go - Chip8-system adapter implementing DebugInterface

package main

import "strings"

const hexDigits = "0123456789abcdef"

var chip8RegisterTable = func() []string {
	names := make([]string, 0, 19)
	for i := 0; i < 16; i++ {
		names = append(names, "v"+string(hexDigits[i]))
	}
	return append(names, "i", "pc", "sp")
}()

// Chip8Debugger is the Chip8 system's DebugInterface implementation.
type Chip8Debugger struct {
	cpu *Chip8CPU

	stopped       bool
	stepRemaining int
	stepCallback  func()

	watchAddr uint64
}

func NewChip8Debugger(cpu *Chip8CPU) *Chip8Debugger {
	return &Chip8Debugger{cpu: cpu, stopped: true}
}

func (d *Chip8Debugger) Name() string { return "chip8" }

func (d *Chip8Debugger) IsStopped() bool { return d.stopped }

func (d *Chip8Debugger) HandleSignal(sig uint8) { d.stopped = true }

func (d *Chip8Debugger) CurrentPID() uint32 { return 1 }

func (d *Chip8Debugger) PtrSize() uint32 { return 2 }

func (d *Chip8Debugger) RegisterInfo(n int) (RegisterInfo, bool) {
	if n < 0 || n >= len(chip8RegisterTable) {
		return RegisterInfo{}, false
	}
	info := NewRegisterInfo(chip8RegisterTable[n])
	info.Offset = uint(n * 2)
	switch chip8RegisterTable[n] {
	case "pc":
		info.BitSize = 16
		info.Generic = GenericPC
	case "sp":
		info.BitSize = 8
		info.Generic = GenericSP
	case "i":
		info.BitSize = 16
	default:
		info.BitSize = 8
	}
	info.Group = "chip8"
	return info, true
}

func (d *Chip8Debugger) ReadRegister(name string) (uint64, bool) {
	switch name {
	case "i":
		return uint64(d.cpu.i), true
	case "pc":
		return uint64(d.cpu.pc), true
	case "sp":
		return uint64(d.cpu.sp), true
	}
	if len(name) == 2 && name[0] == 'v' {
		if idx := strings.IndexByte(hexDigits, name[1]); idx >= 0 {
			return uint64(d.cpu.v[idx]), true
		}
	}
	return 0, false
}

func (d *Chip8Debugger) WriteRegister(name string, v uint64) bool {
	switch name {
	case "i":
		d.cpu.i = uint16(v)
		return true
	case "pc":
		d.cpu.pc = uint16(v)
		return true
	case "sp":
		d.cpu.sp = uint8(v)
		return true
	}
	if len(name) == 2 && name[0] == 'v' {
		if idx := strings.IndexByte(hexDigits, name[1]); idx >= 0 {
			d.cpu.v[idx] = uint8(v)
			return true
		}
	}
	return false
}

func (d *Chip8Debugger) ReadMemory(addr uint64, length *int) []byte {
	want := *length
	out := make([]byte, 0, want)
	for i := 0; i < want; i++ {
		if addr+uint64(i) >= uint64(len(d.cpu.mem)) {
			break
		}
		out = append(out, d.cpu.mem[addr+uint64(i)])
	}
	*length = len(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (d *Chip8Debugger) WriteMemory(addr uint64, data []byte) bool {
	if addr+uint64(len(data)) > uint64(len(d.cpu.mem)) {
		return false
	}
	copy(d.cpu.mem[addr:], data)
	return true
}

func (d *Chip8Debugger) StepCPU(n int, onComplete func()) {
	d.stepRemaining = n
	d.stepCallback = onComplete
	d.stopped = false
}

func (d *Chip8Debugger) RunCPU() {
	d.stopped = false
	d.stepRemaining = 0
	d.stepCallback = nil
}

func (d *Chip8Debugger) ShutdownCPU() {
	d.cpu.fail(&ProtocolError{Details: "shutdown requested by remote debugger"})
}

func (d *Chip8Debugger) Notify(kind NotificationKind, payload any) {
	if kind != NotifyCPUStep || d.stepRemaining <= 0 {
		return
	}
	d.stepRemaining--
	if d.stepRemaining == 0 {
		d.stopped = true
		if cb := d.stepCallback; cb != nil {
			d.stepCallback = nil
			cb()
		}
	}
}

func (d *Chip8Debugger) WatchAddress() uint64 { return d.watchAddr }
