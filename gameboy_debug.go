// gameboy_debug.go - GameBoy-system adapter implementing DebugInterface

package main

// gbRegisterTable orders the six GameBoy registers for remote-debug register
// numbering; all are reported as 16-bit regardless of the half-register
// accessors the CPU exposes internally.
var gbRegisterTable = []struct {
	name string
	reg  gbRegister
	gen  RegisterGeneric
}{
	{"af", regAF, GenericFlags},
	{"bc", regBC, GenericNone},
	{"de", regDE, GenericNone},
	{"hl", regHL, GenericNone},
	{"sp", regSP, GenericSP},
	{"pc", regPC, GenericPC},
}

// GameBoyDebugger is the GameBoy system's DebugInterface implementation: it
// drives the CPU's step mode and reports register/memory state to the
// remote-debug server.
type GameBoyDebugger struct {
	cpu     *GameBoyCPU
	display *Display

	stopped       bool
	stepRemaining int
	stepCallback  func()

	watchAddr uint64
}

// NewGameBoyDebugger constructs a debugger bound to cpu, starting in the
// stopped state so a remote client can set breakpoints before execution
// begins.
func NewGameBoyDebugger(cpu *GameBoyCPU, display *Display) *GameBoyDebugger {
	return &GameBoyDebugger{cpu: cpu, display: display, stopped: true}
}

func (d *GameBoyDebugger) Name() string { return "gameboy" }

func (d *GameBoyDebugger) IsStopped() bool { return d.stopped }

func (d *GameBoyDebugger) HandleSignal(sig uint8) {
	d.stopped = true
}

func (d *GameBoyDebugger) CurrentPID() uint32 { return 1 }

func (d *GameBoyDebugger) PtrSize() uint32 { return 2 }

func (d *GameBoyDebugger) RegisterInfo(n int) (RegisterInfo, bool) {
	if n < 0 || n >= len(gbRegisterTable) {
		return RegisterInfo{}, false
	}
	entry := gbRegisterTable[n]
	info := NewRegisterInfo(entry.name)
	info.BitSize = 16
	info.Offset = uint(n * 2)
	info.Group = "gameboy"
	info.Generic = entry.gen
	return info, true
}

func (d *GameBoyDebugger) ReadRegister(name string) (uint64, bool) {
	for _, entry := range gbRegisterTable {
		if entry.name == name {
			return uint64(d.cpu.GetRegister(entry.reg)), true
		}
	}
	return 0, false
}

func (d *GameBoyDebugger) WriteRegister(name string, v uint64) bool {
	for _, entry := range gbRegisterTable {
		if entry.name == name {
			d.cpu.SetRegister(entry.reg, uint16(v))
			return true
		}
	}
	return false
}

// ReadMemory reads up to *length bytes starting at addr, stopping at the
// first bus error and reporting the actual count read.
func (d *GameBoyDebugger) ReadMemory(addr uint64, length *int) []byte {
	want := *length
	out := make([]byte, 0, want)
	for i := 0; i < want; i++ {
		v, err := d.cpu.bus.ReadU8(addr + uint64(i))
		if err != nil {
			break
		}
		out = append(out, v)
	}
	*length = len(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (d *GameBoyDebugger) WriteMemory(addr uint64, data []byte) bool {
	for i, b := range data {
		if err := d.cpu.bus.WriteU8(addr+uint64(i), b); err != nil {
			return false
		}
	}
	return true
}

// StepCPU arms single-step mode for n instruction boundaries; onComplete
// fires and the interface returns to the stopped state once the count is
// exhausted.
func (d *GameBoyDebugger) StepCPU(n int, onComplete func()) {
	d.stepRemaining = n
	d.stepCallback = onComplete
	d.stopped = false
}

func (d *GameBoyDebugger) RunCPU() {
	d.stopped = false
	d.stepRemaining = 0
	d.stepCallback = nil
}

func (d *GameBoyDebugger) ShutdownCPU() {
	d.cpu.fail(&ProtocolError{Details: "shutdown requested by remote debugger"})
}

func (d *GameBoyDebugger) Notify(kind NotificationKind, payload any) {
	if kind != NotifyCPUStep {
		return
	}
	if d.stepRemaining <= 0 {
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

func (d *GameBoyDebugger) WatchAddress() uint64 { return d.watchAddr }

// onMemoryWatch is registered with the bus so a watchpoint hit stops
// execution and records the real address (fixing the hardcoded-zero TODO
// the reference debug server stubbed out).
func (d *GameBoyDebugger) onMemoryWatch(bus *Bus, addr uint64, isWrite bool) {
	d.watchAddr = addr
	d.stopped = true
}
