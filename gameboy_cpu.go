// gameboy_cpu.go - Sharp LR35902 register file, microcode queue, and fetch/decode/execute loop

package main

import "log"

// TCycleToMCycle is the number of bus ticks (T-cycles) per machine cycle.
const TCycleToMCycle = 4

// gbRegister names one of the CPU's six 16-bit register-file cells, or one
// of its addressable halves.
type gbRegister int

const (
	regAF gbRegister = iota
	regA
	regF
	regBC
	regB
	regC
	regDE
	regD
	regE
	regHL
	regH
	regL
	regSP
	regPC
)

// gbFlag names one of the four flag bits living in F's high nibble.
type gbFlag int

const (
	flagZ gbFlag = iota
	flagN
	flagH
	flagC
)

var flagBit = [4]uint16{flagZ: 0x80, flagN: 0x40, flagH: 0x20, flagC: 0x10}

// microcodeAction is one M-cycle's worth of work, grounded on the source's
// MicroCode closure but carrying no heap-allocated scratch of its own: any
// operand that must survive across M-cycles lives in the CPU's scratch
// fields instead, which removes the leak risk the source's per-closure
// `new`/`delete` scratch pattern carried.
type microcodeAction func(cpu *GameBoyCPU)

const microcodeCapacity = 32

// GameBoyCPU is a cycle-accurate Sharp LR35902 interpreter: it consumes one
// microcode action per M-cycle and fetches/decodes the next opcode in the
// same M-cycle the prior instruction's queue empties.
type GameBoyCPU struct {
	baseComponent

	logger *log.Logger

	registers [6]uint16 // AF, BC, DE, HL, SP, PC

	microcode       [microcodeCapacity]microcodeAction
	microcodeLen    int
	tcycles         int // per-instance T-cycle countdown; never shared across CPUs

	scratch8  uint8
	scratch16 uint16

	halted          bool
	haltErr         error
	waitingForInput bool

	debugger DebugInterface

	romData []byte
}

// NewGameBoyCPU constructs a GameBoy CPU with PC at 0x0000 (the boot ROM
// entry point); callers that skip the boot ROM should SetRegister(PC,...)
// before powering on.
func NewGameBoyCPU(name string, logger *log.Logger) *GameBoyCPU {
	return &GameBoyCPU{
		baseComponent: baseComponent{name: name, kind: ComponentCPU},
		logger:        logger,
		tcycles:       TCycleToMCycle,
	}
}

// SetDebugger attaches the debug interface the CPU reports step
// notifications to.
func (c *GameBoyCPU) SetDebugger(d DebugInterface) { c.debugger = d }

// GetRegister reads a register or half-register.
func (c *GameBoyCPU) GetRegister(r gbRegister) uint16 {
	switch r {
	case regAF:
		return c.registers[0]
	case regA:
		return c.registers[0] >> 8
	case regF:
		return c.registers[0] & 0xFF
	case regBC:
		return c.registers[1]
	case regB:
		return c.registers[1] >> 8
	case regC:
		return c.registers[1] & 0xFF
	case regDE:
		return c.registers[2]
	case regD:
		return c.registers[2] >> 8
	case regE:
		return c.registers[2] & 0xFF
	case regHL:
		return c.registers[3]
	case regH:
		return c.registers[3] >> 8
	case regL:
		return c.registers[3] & 0xFF
	case regSP:
		return c.registers[4]
	case regPC:
		return c.registers[5]
	}
	return 0
}

// SetRegister writes a register or half-register. A and F are distinct
// halves of AF: A sets the high byte, F sets the low byte (masked so that
// bits 0-3 are always zero, per the AF invariant). The source's duplicated
// A/F branch, which accidentally aliased the F setter onto A, is not
// reproduced here.
func (c *GameBoyCPU) SetRegister(r gbRegister, v uint16) {
	switch r {
	case regAF:
		c.registers[0] = v & 0xFFF0
	case regA:
		c.registers[0] = (c.registers[0] & 0x00FF) | (v << 8)
	case regF:
		c.registers[0] = (c.registers[0] & 0xFF00) | (v & 0x00F0)
	case regBC:
		c.registers[1] = v
	case regB:
		c.registers[1] = (c.registers[1] & 0x00FF) | (v << 8)
	case regC:
		c.registers[1] = (c.registers[1] & 0xFF00) | (v & 0x00FF)
	case regDE:
		c.registers[2] = v
	case regD:
		c.registers[2] = (c.registers[2] & 0x00FF) | (v << 8)
	case regE:
		c.registers[2] = (c.registers[2] & 0xFF00) | (v & 0x00FF)
	case regHL:
		c.registers[3] = v
	case regH:
		c.registers[3] = (c.registers[3] & 0x00FF) | (v << 8)
	case regL:
		c.registers[3] = (c.registers[3] & 0xFF00) | (v & 0x00FF)
	case regSP:
		c.registers[4] = v
	case regPC:
		c.registers[5] = v
	}
}

func (c *GameBoyCPU) AddRegister(r gbRegister, v uint16) { c.SetRegister(r, c.GetRegister(r)+v) }
func (c *GameBoyCPU) SubRegister(r gbRegister, v uint16) { c.SetRegister(r, c.GetRegister(r)-v) }

// GetFlag reads one of Z/N/H/C from F.
func (c *GameBoyCPU) GetFlag(f gbFlag) bool { return c.registers[0]&flagBit[f] != 0 }

// SetFlag writes one of Z/N/H/C in F.
func (c *GameBoyCPU) SetFlag(f gbFlag, v bool) {
	if v {
		c.registers[0] |= flagBit[f]
	} else {
		c.registers[0] &^= flagBit[f]
	}
}

// PushMicrocode appends one action to the end of the queue. OnTick pops
// from the end, so actions must be pushed in reverse execution order (the
// last M-cycle's action is pushed first).
func (c *GameBoyCPU) PushMicrocode(action microcodeAction) {
	if c.microcodeLen >= microcodeCapacity {
		c.fail(&StackOverflowError{Details: "microcode queue full"})
		return
	}
	c.microcode[c.microcodeLen] = action
	c.microcodeLen++
}

func (c *GameBoyCPU) fail(err error) {
	c.halted = true
	c.haltErr = err
	c.LogStacktrace()
	if c.logger != nil {
		c.logger.Printf("[GameBoyCPU] fatal: %v", err)
	}
	if c.bus != nil && c.bus.system != nil {
		c.bus.system.SetStatus(StatusStopping)
	}
}

// HaltError returns the error that halted the CPU, if any.
func (c *GameBoyCPU) HaltError() error { return c.haltErr }

// OnTick implements the per-M-cycle step described in the component design:
// pop and execute one microcode action if present, then (if the queue is
// now empty) fetch and decode the next opcode in the same M-cycle.
func (c *GameBoyCPU) OnTick() {
	if c.halted {
		return
	}
	c.tcycles--
	if c.tcycles > 0 {
		return
	}
	c.tcycles = TCycleToMCycle

	if c.microcodeLen > 0 {
		c.microcodeLen--
		action := c.microcode[c.microcodeLen]
		c.microcode[c.microcodeLen] = nil
		if action != nil {
			action(c)
		}
	}

	if c.microcodeLen == 0 {
		if c.waitingForInput {
			return
		}
		if c.debugger != nil {
			if c.debugger.IsStopped() {
				return
			}
			c.debugger.Notify(NotifyCPUStep, nil)
			if c.debugger.IsStopped() {
				return
			}
		}

		pc := c.GetRegister(regPC)
		opcode, err := c.bus.ReadU8(uint64(pc))
		if err != nil {
			c.fail(err)
			return
		}
		c.AddRegister(regPC, 1)
		c.decodeOpcode(opcode)
	}
}

func (c *GameBoyCPU) PowerOn() {}

func (c *GameBoyCPU) PowerOff() {
	c.microcodeLen = 0
	for i := range c.microcode {
		c.microcode[i] = nil
	}
	for i := range c.registers {
		c.registers[i] = 0
	}
}

// AttachToBus registers the CPU's two owned MMIO windows, skipping the
// PPU-controlled registers at 0xFF40-0xFF4F.
func (c *GameBoyCPU) AttachToBus(b *Bus) error {
	if err := b.RegisterComponentAddressRange(c, 0xFF00, 0xFF3F); err != nil {
		return err
	}
	if err := b.RegisterComponentAddressRange(c, 0xFF50, 0xFF6F); err != nil {
		return err
	}
	c.bus = b
	return nil
}

func (c *GameBoyCPU) LogStacktrace() {
	if c.logger == nil {
		return
	}
	c.logger.Printf("[GameBoyCPU] AF: %04X   BC: %04X", c.GetRegister(regAF), c.GetRegister(regBC))
	c.logger.Printf("[GameBoyCPU] DE: %04X   HL: %04X", c.GetRegister(regDE), c.GetRegister(regHL))
	c.logger.Printf("[GameBoyCPU] SP: %04X   PC: %04X", c.GetRegister(regSP), c.GetRegister(regPC))
}

// LoadROM copies up to 0x4000 bytes into the bank-0 cartridge memory block
// and the remainder into the switchable-bank block (ROM-only cartridge).
// Bank 0's boot-ROM/cartridge context swap mirrors the source: cartridge
// data is installed as context 1, and context 0 (the boot image) is kept
// live until the 0xFF50 disable write reveals the cartridge.
func (c *GameBoyCPU) LoadROM(data []byte) {
	c.romData = append([]byte(nil), data...)

	size := uint64(len(data))
	loadSize := min64(size, 0x4000)

	if bank0, ok := c.bus.system.GetComponent(gbCartridge0Name).(*Memory); ok {
		bank0.OverwriteContext(1, data, loadSize)
		bank0.RestoreContext(0)
	}

	if size > loadSize {
		remaining := data[loadSize:]
		if switchable, ok := c.bus.system.GetComponent(gbCartridgeSwitchableName).(*Memory); ok {
			_ = switchable.LoadData(remaining, min64(uint64(len(remaining)), 0x4000))
		}
	}
}

// ReadTyped implements the CPU's owned MMIO window: reads return zero
// unless otherwise specified.
func (c *GameBoyCPU) ReadTyped(addr uint64, w Width) (uint32, error) { return 0, nil }

// WriteTyped implements the CPU's owned MMIO window: writes are ignored
// except the boot-ROM disable at 0xFF50 with a nonzero value.
func (c *GameBoyCPU) WriteTyped(addr uint64, w Width, v uint32) error {
	if addr == 0xFF50 && v != 0 {
		c.disableBootROM()
	}
	return nil
}

func (c *GameBoyCPU) disableBootROM() {
	sys := c.bus.system
	if sys == nil {
		return
	}
	if bank0, ok := sys.GetComponent(gbCartridge0Name).(*Memory); ok {
		bank0.RestoreContext(1)
	}
}
