// debug_packet.go - GDB remote serial protocol packet framing

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

const (
	rspAck = '+'
	rspNak = '-'
)

// rspChecksum is the mod-256 sum of every payload byte, per the wire
// protocol's `$<payload>#<checksum>` framing.
func rspChecksum(payload []byte) uint8 {
	var sum uint8
	for _, b := range payload {
		sum += b
	}
	return sum
}

// encodeRSPPacket wraps payload as `$<payload>#<hex-checksum>`.
func encodeRSPPacket(payload string) string {
	sum := rspChecksum([]byte(payload))
	return fmt.Sprintf("$%s#%02x", payload, sum)
}

// readRSPPacket reads one frame from r: it skips ack/nak bytes and any
// stray bytes before '$', then reads and verifies the checksum, returning
// the payload with the trailing "#xx" removed. A frame whose checksum does
// not match fails with ProtocolError. It does not itself send an ack; the
// caller decides based on no-ack mode.
func readRSPPacket(r *bufio.Reader) (string, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		switch b {
		case rspAck, rspNak:
			continue
		case '$':
			payload, err := r.ReadString('#')
			if err != nil {
				return "", err
			}
			payload = payload[:len(payload)-1] // drop trailing '#'
			// Two checksum hex digits follow, in either case.
			var trailer [2]byte
			if _, err := io.ReadFull(r, trailer[:]); err != nil {
				return "", err
			}
			sum, err := strconv.ParseUint(string(trailer[:]), 16, 8)
			if err != nil || uint8(sum) != rspChecksum([]byte(payload)) {
				return "", &ProtocolError{Details: "packet checksum mismatch"}
			}
			return payload, nil
		case 0x03:
			return "\x03", nil // Ctrl-C: request an async interrupt
		default:
			// Unexpected byte outside a frame: drop it and keep scanning.
		}
	}
}
