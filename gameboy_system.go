// gameboy_system.go - GameBoy memory map and system composition

package main

import "log"

const (
	gbBootROMName             = "gb-boot-rom"
	gbCartridge0Name          = "gb-cartridge-bank0"
	gbCartridgeSwitchableName = "gb-cartridge-switchable"
	gbVRAMName                = "gb-vram"
	gbExternalRAMName         = "gb-external-ram"
	gbWRAMName                = "gb-wram"
	gbEchoRAMName             = "gb-echo-ram"
	gbOAMName                 = "gb-oam"
	gbHRAMName                = "gb-hram"
)

// gbBootROMSize is the length of the standard 256-byte DMG boot image. The
// system installs a zero-filled image of this size as context 0 of the
// cartridge bank-0 block.
const gbBootROMSize = 0x100

// gbKeyNames labels the eight DMG joypad keys, in P1 bit order.
var gbKeyNames = [8]string{"right", "left", "up", "down", "a", "b", "select", "start"}

// NewGameBoySystem assembles a complete DMG-compatible system: CPU, the
// boot-ROM/cartridge memory blocks (with the context-swap relationship
// gameboy_cpu.go's LoadROM drives), VRAM, external and work RAM (with work
// RAM echoed per the hardware's address-line aliasing), OAM, HRAM, a 160x144
// display standing in for the PPU's framebuffer, an eight-button input pad,
// and a DIV timer.
func NewGameBoySystem(logger *log.Logger) *System {
	cpu := NewGameBoyCPU("gb-cpu", logger)

	cart0 := NewMemory(gbCartridge0Name, ComponentMemory, MemoryReadOnly, 0x0000, 0x4000)
	cartSwitchable := NewMemory(gbCartridgeSwitchableName, ComponentMemory, MemoryReadOnly, 0x4000, 0x4000)
	vram := NewMemory(gbVRAMName, ComponentMemory, MemoryReadWrite, 0x8000, 0x2000)
	extRAM := NewMemory(gbExternalRAMName, ComponentMemory, MemoryReadWrite, 0xA000, 0x2000)
	wram := NewMemory(gbWRAMName, ComponentMemory, MemoryReadWrite, 0xC000, 0x2000)
	oam := NewMemory(gbOAMName, ComponentMemory, MemoryReadWrite, 0xFE00, 0x00A0)
	hram := NewMemory(gbHRAMName, ComponentMemory, MemoryReadWrite, 0xFF80, 0x007F)

	// Echo RAM (0xE000-0xFDFF) mirrors WRAM (0xC000-0xDDFF) one-for-one, the
	// same address-line aliasing the hardware exhibits. WRAM owns the whole of
	// 0xC000-0xDFFF on the bus, so the echo block is mapped only at 0xE000 and
	// its storage is the first 0x1E00 bytes of WRAM's buffer: a write through
	// either range is visible through the other.
	echo := NewMultiMappedMemory(gbEchoRAMName, ComponentMemory, 0x1E00, []uint64{0xE000})
	echo.data = wram.data[:0x1E00]

	display := NewDisplay("gb-display", 160, 144)
	input := NewInput("gb-input")
	for i := range gbKeyNames {
		input.RegisterKey(KeyCode(i))
	}
	divTimer := NewTimer("gb-div", 0xFF)

	debugger := NewGameBoyDebugger(cpu, display)
	cpu.SetDebugger(debugger)

	sys := NewSystem("gameboy", 4194304, logger, []BusDevice{
		cart0, cartSwitchable, vram, extRAM, wram, echo, oam, hram,
		display, input, divTimer, cpu,
	}, debugger)
	sys.Bus().RegisterMemoryWatchCallback(debugger.onMemoryWatch)

	// Boot ROM and cartridge bank 0 alias the same address window: the boot
	// image is installed as context 0 (visible at reset) and the cartridge,
	// once loaded, is installed as context 1 and revealed by writing 0xFF50
	// (see gameboy_cpu.go's disableBootROM).
	cart0.OverwriteContext(0, make([]byte, gbBootROMSize), gbBootROMSize)
	cart0.RestoreContext(0)

	sys.RegisterFrontendFunction("reset", func(fe *FrontendInterface) {
		sys.PowerOff()
		sys.PowerOn()
	})

	return sys
}
