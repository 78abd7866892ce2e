package tcp

import (
	"errors"
	"net"
	"sync"
)

var ErrShutdown = errors.New("server is shut down")

type OnConnection func(net.Conn)

type Server struct {
	sock     net.Listener
	onConn   OnConnection
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	shutdown bool
}

func NewServer(sock net.Listener, onConn OnConnection) *Server {
	return &Server{
		sock:   sock,
		onConn: onConn,
		conns:  map[net.Conn]struct{}{},
	}
}

// Start runs the accept loop, handling every connection in its own goroutine. It returns
// ErrShutdown after Stop or GracefulShutdown, when all the handlers are done.
func (s *Server) Start() error {
	wg := new(sync.WaitGroup)

	for {
		conn, err := s.sock.Accept()
		if err != nil {
			wg.Wait()

			if s.isShutdown() {
				return ErrShutdown
			}

			return err
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		wg.Add(1)
		go s.connHandler(wg, conn)
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.sock.Addr()
}

func (s *Server) stopListener() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	return s.sock.Close()
}

// Stop shuts listener and ALL the connections down
func (s *Server) Stop() error {
	if err := s.stopListener(); err != nil {
		return err
	}

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// GracefulShutdown stops a listener, but leaving all the connections free to end their
// lives peacefully
func (s *Server) GracefulShutdown() error {
	return s.stopListener()
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.shutdown
}

func (s *Server) connHandler(wg *sync.WaitGroup, conn net.Conn) {
	defer wg.Done()

	s.onConn(conn)
	_ = conn.Close()

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}
