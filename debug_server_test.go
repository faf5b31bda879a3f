package main

import "testing"

func newDebugServerTestRig() (*System, *DebugServer) {
	sys := NewGameBoySystem(nil)
	return sys, NewDebugServer(sys, nil)
}

func TestDebugServerQStartNoAckModeEnablesNoAck(t *testing.T) {
	_, s := newDebugServerTestRig()

	reply, next := s.dispatch("QStartNoAckMode", statePreConnect)
	if reply != "OK" || next != stateHandshake {
		t.Fatalf("QStartNoAckMode reply=%q next=%v, want OK/handshake", reply, next)
	}
	if !s.noAckMode {
		t.Fatalf("noAckMode not enabled after QStartNoAckMode")
	}
}

// QThreadSuffixSupported must never itself flip no-ack mode: a prior source
// bug coupled the two.
func TestDebugServerQThreadSuffixDoesNotEnableNoAck(t *testing.T) {
	_, s := newDebugServerTestRig()

	reply, _ := s.dispatch("QThreadSuffixSupported", statePreConnect)
	if reply != "OK" {
		t.Fatalf("reply=%q, want OK", reply)
	}
	if s.noAckMode {
		t.Fatalf("noAckMode incorrectly enabled by QThreadSuffixSupported")
	}
}

func TestDebugServerQSupportedDeterministicOrder(t *testing.T) {
	_, s := newDebugServerTestRig()

	first := s.handleQSupported("qSupported:multiprocess+;swbreak+")
	second := s.handleQSupported("qSupported:multiprocess+;swbreak+")
	if first != second {
		t.Fatalf("qSupported reply is nondeterministic:\n%q\n%q", first, second)
	}
}

func TestDebugServerRegisterInfoPrefixSkip(t *testing.T) {
	_, s := newDebugServerTestRig()

	reply := s.handleRegisterInfo("qRegisterInfo0")
	if reply == "E01" {
		t.Fatalf("expected a valid register-info reply for register 0, got E01")
	}
}

func TestDebugServerReadMemoryShortCircuitsOnNilData(t *testing.T) {
	sys, s := newDebugServerTestRig()
	sys.UseDebugger(true)

	// An address far outside any registered component range fails ReadMemory
	// and must short-circuit to an error, not hex-encode an empty/nil slice.
	reply := s.handleReadMemory("m" + "ffffffff" + ",4")
	if reply != "E01" {
		t.Fatalf("reply=%q, want E01 for a failed memory read", reply)
	}
}

func TestDebugServerWatchSignalReportsRealAddress(t *testing.T) {
	sys := NewGameBoySystem(nil)
	debugger := sys.GetDebugger().(*GameBoyDebugger)

	debugger.onMemoryWatch(sys.Bus(), 0xC010, true)

	if got := debugger.WatchAddress(); got != 0xC010 {
		t.Fatalf("WatchAddress()=%#x, want 0xc010", got)
	}
	if !debugger.IsStopped() {
		t.Fatalf("debugger should stop the CPU on a watchpoint hit")
	}
}

func TestDebugServerUnknownPacketIsFatal(t *testing.T) {
	_, s := newDebugServerTestRig()

	_, next := s.dispatch("this-is-not-a-known-packet", stateRunning)
	if next != stateFatalError {
		t.Fatalf("next state=%v, want stateFatalError for an unrecognized packet", next)
	}
}
