// debug_server.go - remote-debug protocol dispatcher (GDB remote serial protocol subset)

package main

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
)

// connState is the per-connection state machine.
type connState int

const (
	statePreConnect connState = iota
	stateHandshake
	stateRunning
	stateShutdown
	stateFatalError
)

const qRegisterInfoPrefixLen = len("qRegisterInfo") // exactly 13

// DebugServer dispatches remote-debug protocol packets against one system's
// DebugInterface. It serves one client at a time, per the wire transport's
// single-client design.
type DebugServer struct {
	sys       *System
	debugger  DebugInterface
	logger    *log.Logger
	vendor    string
	noAckMode bool
}

// NewDebugServer constructs a dispatcher bound to sys's registered debug
// interface.
func NewDebugServer(sys *System, logger *log.Logger) *DebugServer {
	return &DebugServer{sys: sys, debugger: sys.GetDebugger(), logger: logger, vendor: "retroconsole"}
}

// Serve drives one connection end-to-end through the state machine until
// Shutdown or the peer disconnects.
func (s *DebugServer) Serve(conn net.Conn) {
	defer conn.Close()
	s.noAckMode = false
	state := statePreConnect
	r := bufio.NewReader(conn)

	for state != stateShutdown && state != stateFatalError {
		payload, err := readRSPPacket(r)
		if err != nil {
			return // read error, checksum mismatch, or remote close
		}
		if state == statePreConnect {
			state = stateHandshake
		}

		if payload == "\x03" {
			s.emitSignal(conn, SignalTrap, "")
			state = stateRunning
			continue
		}

		if !s.noAckMode {
			conn.Write([]byte{rspAck})
		}

		reply, next := s.dispatch(payload, state)
		state = next
		if reply != "" {
			conn.Write([]byte(encodeRSPPacket(reply)))
		}
		if state == stateFatalError {
			if s.logger != nil {
				s.logger.Printf("[debug-server] malformed packet: %q", payload)
			}
		}
	}
}

func (s *DebugServer) dispatch(payload string, state connState) (reply string, next connState) {
	switch {
	case payload == "?":
		s.debugger.HandleSignal(SignalTrap)
		return fmt.Sprintf("S%02x", SignalTrap), stateRunning
	case payload == "QStartNoAckMode":
		s.noAckMode = true
		return "OK", stateHandshake
	case payload == "QThreadSuffixSupported":
		return "OK", state // does not touch no-ack mode
	case payload == "qHostInfo":
		return "hostname:emulator;vendor:" + s.vendor, state
	case payload == "qProcessInfo":
		return fmt.Sprintf("pid:%d;vendor:%s", s.debugger.CurrentPID(), s.vendor), state
	case payload == "qGetWorkingDir":
		return "2f", state
	case strings.HasPrefix(payload, "qSupported"):
		return s.handleQSupported(payload), state
	case payload == "vCont?":
		return "", state
	case payload == "QEnableErrorStrings" || payload == "qVAttachOrWaitSupported":
		return "", state
	case payload == "qfThreadInfo":
		if s.debugger.IsStopped() {
			return "l", state
		}
		return "m1", state
	case payload == "qsThreadInfo":
		return "l", state
	case payload == "qC":
		return fmt.Sprintf("QC %x", s.debugger.CurrentPID()), state
	case strings.HasPrefix(payload, "qRegisterInfo"):
		return s.handleRegisterInfo(payload), stateRunning
	case payload == "k":
		s.debugger.ShutdownCPU()
		return "", stateShutdown
	case payload == "c":
		s.debugger.RunCPU()
		return "OK", stateRunning
	case payload == "s":
		s.stepAndReply(nil)
		return "", stateRunning
	case strings.HasPrefix(payload, "vCont;"):
		return s.handleVCont(payload), stateRunning
	case strings.HasPrefix(payload, "m"):
		return s.handleReadMemory(payload), stateRunning
	case strings.HasPrefix(payload, "x"):
		return s.handleReadMemoryBinary(payload), stateRunning
	case strings.HasPrefix(payload, "M"):
		return s.handleWriteMemory(payload), stateRunning
	case strings.HasPrefix(payload, "p"):
		return s.handleReadRegisterN(payload), stateRunning
	case strings.HasPrefix(payload, "P"):
		return s.handleWriteRegisterN(payload), stateRunning
	case payload == "g":
		return s.handleReadAllRegisters(), stateRunning
	case strings.HasPrefix(payload, "G"):
		return s.handleWriteAllRegisters(payload), stateRunning
	case strings.HasPrefix(payload, "Z"):
		return s.handleAddBreakpoint(payload), stateRunning
	case strings.HasPrefix(payload, "z"):
		return s.handleRemoveBreakpoint(payload), stateRunning
	default:
		return "", stateFatalError
	}
}

// handleQSupported echoes each client-offered feature with '+' if the server
// supports it (only hwbreak) or '-' otherwise, then appends the server's own
// advertised features that were not already echoed, in a fixed order — the
// source used an unordered_map here, which made its qSupported reply
// nondeterministic across runs.
func (s *DebugServer) handleQSupported(payload string) string {
	supported := map[string]bool{"hwbreak": true}
	echoed := make(map[string]bool)
	var parts []string
	body := strings.TrimPrefix(payload, "qSupported")
	body = strings.TrimPrefix(body, ":")
	if body != "" {
		for _, feat := range strings.Split(body, ";") {
			if feat == "" {
				continue
			}
			name := strings.TrimRight(feat, "+-")
			echoed[name] = true
			if supported[name] {
				parts = append(parts, name+"+")
			} else {
				parts = append(parts, name+"-")
			}
		}
	}
	for _, feat := range []string{
		"QStartNoAckMode+",
		"hwbreak+",
		"qXfer:memory-map:read+",
		"qXfer:osdata:read+",
		"qXfer:features:read+",
		"fork-",
		"vfork-",
		"multiprocess-",
	} {
		if !echoed[strings.TrimRight(feat, "+-")] {
			parts = append(parts, feat)
		}
	}
	return strings.Join(parts, ";")
}

func (s *DebugServer) handleRegisterInfo(payload string) string {
	if len(payload) < qRegisterInfoPrefixLen {
		return "E01"
	}
	hexN := payload[qRegisterInfoPrefixLen:]
	n, err := strconv.ParseInt(hexN, 16, 32)
	if err != nil {
		return "E01"
	}
	info, ok := s.debugger.RegisterInfo(int(n))
	if !ok {
		return "E01"
	}
	return info.String()
}

func (s *DebugServer) stepAndReply(conn net.Conn) {
	s.debugger.StepCPU(1, func() {})
}

func (s *DebugServer) handleVCont(payload string) string {
	body := strings.TrimPrefix(payload, "vCont;")
	action := strings.SplitN(body, ":", 2)[0]
	switch {
	case strings.HasPrefix(action, "c"):
		s.debugger.RunCPU()
	case strings.HasPrefix(action, "s"):
		s.debugger.StepCPU(1, func() {})
	case strings.HasPrefix(action, "t"):
		s.debugger.HandleSignal(SignalTrap)
	}
	return "OK"
}

// handleReadMemory implements m<addr>,<len>. A failed read (nil data) always
// short-circuits to an error response — the reference server's equivalent
// handler fell through into hex-encoding a nil slice (encoding as the empty
// string with no visible error) instead of returning.
func (s *DebugServer) handleReadMemory(payload string) string {
	addr, length, ok := parseAddrLen(payload[1:])
	if !ok {
		return "E01"
	}
	n := length
	data := s.debugger.ReadMemory(addr, &n)
	if data == nil {
		return "E01"
	}
	return hexEncode(data)
}

func (s *DebugServer) handleReadMemoryBinary(payload string) string {
	addr, length, ok := parseAddrLen(payload[1:])
	if !ok {
		return "E01"
	}
	n := length
	data := s.debugger.ReadMemory(addr, &n)
	if data == nil {
		return "E01"
	}
	return "b " + hexEncode(data)
}

func (s *DebugServer) handleWriteMemory(payload string) string {
	rest := payload[1:]
	idx := strings.IndexByte(rest, ':')
	if idx < 0 {
		return "E01"
	}
	addr, _, ok := parseAddrLen(rest[:idx])
	if !ok {
		return "E01"
	}
	data, err := hexDecode(rest[idx+1:])
	if err != nil {
		return "E01"
	}
	if !s.debugger.WriteMemory(addr, data) {
		return "E01"
	}
	return "OK"
}

func (s *DebugServer) handleReadRegisterN(payload string) string {
	n, err := strconv.ParseInt(payload[1:], 16, 32)
	if err != nil {
		return "E01"
	}
	info, ok := s.debugger.RegisterInfo(int(n))
	if !ok {
		return "E01"
	}
	v, ok := s.debugger.ReadRegister(info.Name)
	if !ok {
		return "E01"
	}
	return encodeRegisterValue(v, info.BitSize)
}

func (s *DebugServer) handleWriteRegisterN(payload string) string {
	rest := payload[1:]
	idx := strings.IndexByte(rest, '=')
	if idx < 0 {
		return "E01"
	}
	n, err := strconv.ParseInt(rest[:idx], 16, 32)
	if err != nil {
		return "E01"
	}
	info, ok := s.debugger.RegisterInfo(int(n))
	if !ok {
		return "E01"
	}
	v, err := decodeRegisterValue(rest[idx+1:])
	if err != nil {
		return "E01"
	}
	if !s.debugger.WriteRegister(info.Name, v) {
		return "E01"
	}
	return "OK"
}

func (s *DebugServer) handleReadAllRegisters() string {
	var sb strings.Builder
	for n := 0; ; n++ {
		info, ok := s.debugger.RegisterInfo(n)
		if !ok {
			break
		}
		v, _ := s.debugger.ReadRegister(info.Name)
		sb.WriteString(encodeRegisterValue(v, info.BitSize))
	}
	return sb.String()
}

func (s *DebugServer) handleWriteAllRegisters(payload string) string {
	data := payload[1:]
	pos := 0
	for n := 0; ; n++ {
		info, ok := s.debugger.RegisterInfo(n)
		if !ok {
			break
		}
		width := int(info.BitSize) / 4
		if pos+width > len(data) {
			break
		}
		v, err := decodeRegisterValue(data[pos : pos+width])
		if err != nil {
			return "E01"
		}
		s.debugger.WriteRegister(info.Name, v)
		pos += width
	}
	return "OK"
}

func (s *DebugServer) handleAddBreakpoint(payload string) string {
	_, addr, ok := parseBreakpoint(payload[1:])
	if !ok {
		return "E01"
	}
	s.sys.Bus().AddMemoryWatchPoint(addr)
	return "OK"
}

func (s *DebugServer) handleRemoveBreakpoint(payload string) string {
	_, addr, ok := parseBreakpoint(payload[1:])
	if !ok {
		return "E01"
	}
	s.sys.Bus().RemoveMemoryWatchPoint(addr)
	return "OK"
}

// emitSignal sends a stop-reply packet and stops the CPU before the next
// tick, per the spec's "server also calls handle_signal" rule.
func (s *DebugServer) emitSignal(conn net.Conn, sig uint8, kind string) {
	s.debugger.HandleSignal(sig)
	var reply string
	switch kind {
	case "hwbreak":
		reply = fmt.Sprintf("T%02xhwbreak:", sig)
	case "watch":
		reply = fmt.Sprintf("T%02xwatch:%x;", sig, s.debugger.WatchAddress())
	default:
		reply = fmt.Sprintf("S%02x", sig)
	}
	conn.Write([]byte(encodeRSPPacket(reply)))
}

// --- wire-format helpers ---

func parseAddrLen(s string) (addr uint64, length int, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseInt(parts[1], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return a, int(l), true
}

func parseBreakpoint(s string) (kind int, addr uint64, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	k, err := strconv.ParseInt(parts[0], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	a, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	return int(k), a, true
}

func hexEncode(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, &ProtocolError{Details: "odd-length hex payload"}
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = uint8(v)
	}
	return out, nil
}

func encodeRegisterValue(v uint64, bitSize uint) string {
	bytes := int(bitSize) / 8
	var sb strings.Builder
	for i := 0; i < bytes; i++ {
		fmt.Fprintf(&sb, "%02x", uint8(v>>(8*i)))
	}
	return sb.String()
}

func decodeRegisterValue(s string) (uint64, error) {
	data, err := hexDecode(s)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i, b := range data {
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// RunDebugServer blocks serving connections until stop is closed.
func RunDebugServer(sys *System, logger *log.Logger, addr string, stop <-chan struct{}) error {
	sockSrv, err := NewDebugSocketServer(addr, logger)
	if err != nil {
		return err
	}
	disp := NewDebugServer(sys, logger)

	go func() {
		<-stop
		sockSrv.Shutdown()
	}()

	sockSrv.Serve(disp.Serve)
	return nil
}
