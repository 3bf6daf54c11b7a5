package protocol

import "sync"

type Status int

const (
	// Empty means nothing is waiting; Receive never blocks.
	Empty Status = iota
	Received
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Received:
		return "received"
	case Disconnected:
		return "disconnected"
	}
	return "empty"
}

// Endpoint is the host side of a participant connection. Both methods
// return immediately.
type Endpoint interface {
	Send(msg Outbound)
	Receive() (Inbound, Status)
}

// Queue is an unbounded FIFO safe for one producer and one consumer
// running on different goroutines.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

// Push appends v. It reports false once the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest item. closed is true when the queue is closed
// and fully drained.
func (q *Queue[T]) Pop() (v T, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return v, false, q.closed
	}
	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true, false
}

// Drain removes and returns every queued item.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Ready is signalled after a Push or Close.
func (q *Queue[T]) Ready() <-chan struct{} { return q.ready }

func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pipe is an in-memory connection: the host uses it as an Endpoint and a
// local participant (test, bot) drives it through its Client methods.
type Pipe struct {
	in  *Queue[Inbound]
	out *Queue[Outbound]
}

func NewPipe() *Pipe {
	return &Pipe{in: NewQueue[Inbound](), out: NewQueue[Outbound]()}
}

func (p *Pipe) Send(msg Outbound) { p.out.Push(msg) }

func (p *Pipe) Receive() (Inbound, Status) {
	msg, ok, closed := p.in.Pop()
	switch {
	case ok:
		return msg, Received
	case closed:
		return Inbound{}, Disconnected
	}
	return Inbound{}, Empty
}

// Submit queues a request from the participant side.
func (p *Pipe) Submit(msg Inbound) bool { return p.in.Push(msg) }

// Messages drains everything the host has sent so far.
func (p *Pipe) Messages() []Outbound { return p.out.Drain() }

// Close disconnects the participant side. Requests already submitted are
// still delivered before Receive reports Disconnected.
func (p *Pipe) Close() { p.in.Close() }
