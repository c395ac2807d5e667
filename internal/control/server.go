// Package control provides the server-side daemon logic to accept client
// commands on unix sockets or TCP listeners and answer them through a
// dispatcher.
package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/mfulz/launchgeist/dispatch"
	"github.com/mfulz/launchgeist/internal/configd"
	"github.com/mfulz/launchgeist/internal/logging"
	"github.com/mfulz/launchgeist/protocol"
)

// Server serves one control instance.
type Server struct {
	instance   configd.ControlInstance
	dispatcher *dispatch.Dispatcher

	mu       sync.Mutex
	listener net.Listener
	active   map[net.Conn]struct{}
	conns    sync.WaitGroup
}

// NewServer creates a Server for instance.
func NewServer(instance configd.ControlInstance, d *dispatch.Dispatcher) *Server {
	return &Server{instance: instance, dispatcher: d, active: map[net.Conn]struct{}{}}
}

// Listen opens the listener of a control instance. A stale unix socket is removed first.
func Listen(instance configd.ControlInstance) (net.Listener, error) {
	switch instance.Mode {
	case "unix":
		if _, err := os.Stat(instance.Listen); err == nil {
			_ = os.Remove(instance.Listen)
		}
		l, err := net.Listen("unix", instance.Listen)
		if err != nil {
			return nil, fmt.Errorf("failed to bind unix socket: %w", err)
		}
		return l, nil
	case "tcp":
		l, err := net.Listen("tcp", instance.Listen)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", instance.Listen, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported control mode %q", instance.Mode)
	}
}

// Start opens the listener and serves it in the background until ctx is
// done or Close is called.
func (s *Server) Start(ctx context.Context) error {
	l, err := Listen(s.instance)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	logging.Log.Infof("[control] %s listening on %s %s", s.instance.Name, s.instance.Mode, l.Addr())

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	go s.serve(l)
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting connections, closes open ones and waits for their
// handlers to return.
func (s *Server) Close() error {
	s.mu.Lock()
	l := s.listener
	s.listener = nil
	if l != nil {
		for c := range s.active {
			_ = c.Close()
		}
	}
	s.mu.Unlock()
	if l == nil {
		return nil
	}
	err := l.Close()
	s.conns.Wait()
	return err
}

// track adds or removes an open connection. Adding fails once the server is closed.
func (s *Server) track(c net.Conn, open bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !open {
		delete(s.active, c)
		return true
	}
	if s.listener == nil {
		return false
	}
	s.active[c] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *Server) serve(l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Log.Warnf("[control] %s accept error: %v", s.instance.Name, err)
			continue
		}
		if !s.track(conn, true) {
			_ = conn.Close()
			return
		}
		go func() {
			defer s.conns.Done()
			defer s.track(conn, false)
			s.handleConn(conn)
		}()
	}
}

// handleConn answers requests until the client hangs up.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for {
		req, err := protocol.ReadRequest(reader)
		if err != nil {
			if !malformed(err) {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					logging.Log.Debugf("[control] %s read failed: %v", s.instance.Name, err)
				}
				return
			}
			logging.Log.Debugf("[control] %s bad request: %v", s.instance.Name, err)
			if err := protocol.WriteResponse(conn, dispatch.Error(err.Error())); err != nil {
				return
			}
			continue
		}

		resp := s.dispatcher.Dispatch(req)
		if err := protocol.WriteResponse(conn, resp); err != nil {
			logging.Log.Debugf("[control] %s write failed: %v", s.instance.Name, err)
			return
		}
	}
}

// malformed reports whether err is a decode error of a complete line.
func malformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// StartAll starts a Server for every enabled instance. On error the
// servers started so far are closed.
func StartAll(ctx context.Context, instances []configd.ControlInstance, d *dispatch.Dispatcher) ([]*Server, error) {
	var servers []*Server
	for _, inst := range instances {
		if !inst.Enabled {
			continue
		}
		srv := NewServer(inst, d)
		if err := srv.Start(ctx); err != nil {
			for _, started := range servers {
				_ = started.Close()
			}
			return nil, fmt.Errorf("control instance %s: %w", inst.Name, err)
		}
		servers = append(servers, srv)
	}
	return servers, nil
}
