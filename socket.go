// socket.go - TCP transport for the remote-debug server
//
// Grounded on runtime_ipc.go's accept-loop/shutdown-channel shape, adapted
// from a Unix-socket single-instance IPC listener to a TCP, one-client-at-a-
// time debug transport with a bounded accept-poll timeout.

package main

import (
	"log"
	"net"
	"time"
)

const debugAcceptTimeout = 1 * time.Second

// DebugSocketServer accepts exactly one debug-client connection at a time on
// a TCP listener, dispatching each to Serve's handler until Shutdown is called.
type DebugSocketServer struct {
	listener net.Listener
	logger   *log.Logger
	done     chan struct{}
}

// NewDebugSocketServer binds addr (e.g. "127.0.0.1:1234") and returns an
// unstarted server.
func NewDebugSocketServer(addr string, logger *log.Logger) (*DebugSocketServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &DebugSocketServer{listener: ln, logger: logger, done: make(chan struct{})}, nil
}

// Addr returns the bound local address, useful when addr was ":0".
func (s *DebugSocketServer) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until Shutdown is called, handling them
// serially: the remote-debug protocol is not designed for concurrent
// clients, so a second connection waits for the first to close.
func (s *DebugSocketServer) Serve(handle func(net.Conn)) {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		if tl, ok := s.listener.(*net.TCPListener); ok {
			tl.SetDeadline(time.Now().Add(debugAcceptTimeout))
		}
		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.done:
				return
			default:
				if s.logger != nil {
					s.logger.Printf("[debug-socket] accept error: %v", err)
				}
				continue
			}
		}
		handle(conn)
	}
}

// Shutdown stops Serve and closes the listener.
func (s *DebugSocketServer) Shutdown() {
	close(s.done)
	s.listener.Close()
}
