package service

import (
	"sync"

	"github.com/ericogr/monster-arena/internal/protocol"
)

// seat is the endpoint a host sees for one participant. Connections come
// and go behind it; while nobody is attached it reads as empty and drops
// outbound messages.
type seat struct {
	mu   sync.Mutex
	conn protocol.Endpoint
}

func (s *seat) attach(conn protocol.Endpoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return false
	}
	s.conn = conn
	return true
}

func (s *seat) attached() protocol.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *seat) detach() protocol.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.conn
	s.conn = nil
	return c
}

func (s *seat) Send(msg protocol.Outbound) {
	if c := s.attached(); c != nil {
		c.Send(msg)
	}
}

func (s *seat) Receive() (protocol.Inbound, protocol.Status) {
	c := s.attached()
	if c == nil {
		return protocol.Inbound{}, protocol.Empty
	}
	msg, st := c.Receive()
	if st == protocol.Disconnected {
		s.mu.Lock()
		if s.conn == c {
			s.conn = nil
		}
		s.mu.Unlock()
	}
	return msg, st
}
