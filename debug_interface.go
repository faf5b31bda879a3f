// debug_interface.go - per-system adapter translating debugger commands into CPU/bus mutations

package main

import "fmt"

// SignalTrap is the POSIX signal number the remote-debug protocol reports
// for a breakpoint/step trap.
const SignalTrap = 5

// RegisterGeneric classifies a register's role for the remote-debug
// protocol's "generic" register-info field.
type RegisterGeneric int

const (
	GenericNone RegisterGeneric = iota
	GenericPC
	GenericSP
	GenericFP
	GenericRA
	GenericFlags
	GenericArg1
	GenericArg2
	GenericArg3
	GenericArg4
	GenericArg5
	GenericArg6
	GenericArg7
	GenericArg8
)

func (g RegisterGeneric) String() string {
	switch g {
	case GenericPC:
		return "pc"
	case GenericSP:
		return "sp"
	case GenericFP:
		return "fp"
	case GenericRA:
		return "ra"
	case GenericFlags:
		return "flags"
	case GenericArg1:
		return "arg1"
	case GenericArg2:
		return "arg2"
	case GenericArg3:
		return "arg3"
	case GenericArg4:
		return "arg4"
	case GenericArg5:
		return "arg5"
	case GenericArg6:
		return "arg6"
	case GenericArg7:
		return "arg7"
	case GenericArg8:
		return "arg8"
	default:
		return ""
	}
}

// RegisterEncoding is the register's numeric encoding.
type RegisterEncoding int

const (
	EncodingUint RegisterEncoding = iota
	EncodingSint
	EncodingFloat
)

func (e RegisterEncoding) String() string {
	switch e {
	case EncodingSint:
		return "sint"
	case EncodingFloat:
		return "ieee754"
	default:
		return "uint"
	}
}

// RegisterFormat is the register's preferred display format.
type RegisterFormat int

const (
	FormatHex RegisterFormat = iota
	FormatBinary
	FormatDecimal
	FormatFloat
)

func (f RegisterFormat) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatDecimal:
		return "decimal"
	case FormatFloat:
		return "float"
	default:
		return "hex"
	}
}

// RegisterInfo describes one register for the remote-debug protocol's
// qRegisterInfo response.
type RegisterInfo struct {
	Name, AltName string
	Generic       RegisterGeneric
	Encoding      RegisterEncoding
	Format        RegisterFormat
	BitSize       uint
	Offset        uint
	Group         string
}

// NewRegisterInfo returns a RegisterInfo with the reference defaults:
// uint encoding, hex format, 32-bit width, no generic role.
func NewRegisterInfo(name string) RegisterInfo {
	return RegisterInfo{
		Name:     name,
		Encoding: EncodingUint,
		Format:   FormatHex,
		BitSize:  32,
	}
}

// String renders the wire form:
// name:…;alt-name:…;bitsize:…;offset:…;encoding:…;format:…;set:…[;generic:…]
func (r RegisterInfo) String() string {
	s := fmt.Sprintf("name:%s;alt-name:%s;bitsize:%d;offset:%d;encoding:%s;format:%s;set:%s",
		r.Name, r.AltName, r.BitSize, r.Offset, r.Encoding, r.Format, r.Group)
	if r.Generic != GenericNone {
		s += fmt.Sprintf(";generic:%s", r.Generic)
	}
	return s
}

// NotificationKind enumerates the events a CPU reports to its debug
// interface.
type NotificationKind int

const (
	NotifyCPUStep NotificationKind = iota
)

// DebugInterface is the per-system adapter every emulated system implements
// so the remote-debug server can drive it uniformly.
type DebugInterface interface {
	Name() string

	IsStopped() bool
	HandleSignal(sig uint8)

	CurrentPID() uint32
	PtrSize() uint32

	RegisterInfo(n int) (RegisterInfo, bool)
	ReadRegister(name string) (uint64, bool)
	WriteRegister(name string, v uint64) bool

	// ReadMemory reads up to length bytes at addr. On partial failure it
	// returns the successfully-read prefix and updates length to the actual
	// count; on complete failure it returns nil and length=0.
	ReadMemory(addr uint64, length *int) []byte
	WriteMemory(addr uint64, data []byte) bool

	// StepCPU arms single-step mode: after n instruction boundaries,
	// onComplete is invoked and the interface re-enters the stopped state.
	StepCPU(n int, onComplete func())
	RunCPU()
	ShutdownCPU()

	// Notify is called by the CPU with NotifyCPUStep at each instruction
	// boundary; step mode counts these calls.
	Notify(kind NotificationKind, payload any)

	// WatchAddress returns the address of the most recent watchpoint hit,
	// used to populate T<sig>watch:<addr> signal packets.
	WatchAddress() uint64
}
