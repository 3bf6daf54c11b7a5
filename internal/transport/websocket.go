// Package transport carries protocol messages over websocket connections.
package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ericogr/monster-arena/internal/constants"
	"github.com/ericogr/monster-arena/internal/logging"
	"github.com/ericogr/monster-arena/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 64 * 1024
)

// Conn is a protocol.Endpoint backed by a websocket. Reads and writes run
// on their own goroutines so the host never blocks on the network.
type Conn struct {
	ws   *websocket.Conn
	in   *protocol.Queue[protocol.Inbound]
	out  *protocol.Queue[protocol.Outbound]
	done chan struct{}
	once sync.Once
	// fields tag log lines with the battle and participant.
	fields logging.Fields
}

// NewConn starts the read and write pumps for ws.
func NewConn(ws *websocket.Conn, battleID, participantID string) *Conn {
	c := &Conn{
		ws:     ws,
		in:     protocol.NewQueue[protocol.Inbound](),
		out:    protocol.NewQueue[protocol.Outbound](),
		done:   make(chan struct{}),
		fields: logging.Fields{constants.LogFieldBattleID: battleID, constants.LogFieldParticipantID: participantID},
	}
	go c.readPump()
	go c.writePump()
	return c
}

// Send queues msg for writing. Messages sent after the connection dropped
// are discarded.
func (c *Conn) Send(msg protocol.Outbound) { c.out.Push(msg) }

func (c *Conn) Receive() (protocol.Inbound, protocol.Status) {
	msg, ok, closed := c.in.Pop()
	switch {
	case ok:
		return msg, protocol.Received
	case closed:
		return protocol.Inbound{}, protocol.Disconnected
	}
	return protocol.Inbound{}, protocol.Empty
}

// Done is closed once the connection is gone.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		c.in.Close()
		c.out.Close()
		_ = c.ws.Close()
	})
}

// Reject closes the connection with a policy-violation frame carrying
// reason.
func (c *Conn) Reject(reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.Close()
}

func (c *Conn) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(maxMessage)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket read failed", c.with(constants.LogFieldReason, err.Error()))
			}
			return
		}
		var msg protocol.Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Debug("dropping undecodable frame", c.with(constants.LogFieldReason, err.Error()))
			continue
		}
		c.in.Push(msg)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.out.Ready():
			for _, msg := range c.out.Drain() {
				_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.ws.WriteJSON(msg); err != nil {
					logging.Warn("websocket write failed", c.with(constants.LogFieldReason, err.Error()))
					return
				}
			}
		}
	}
}

func (c *Conn) with(k string, v interface{}) logging.Fields {
	f := make(logging.Fields, len(c.fields)+1)
	for key, val := range c.fields {
		f[key] = val
	}
	f[k] = v
	return f
}
