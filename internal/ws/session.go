package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the ephemeral binding of one live connection. Username and
// RoomCode stay empty until a join succeeds and are cleared again on leave.
// Only the hub loop touches the bindings; the connection pumps read the
// outbound channel and the force-close signal.
type Session struct {
	ID   uuid.UUID
	Addr string // connection-origin address

	Username string
	RoomCode string

	out        chan []byte
	forceClose chan struct{}
	closeOnce  sync.Once

	// banTimer delays the forced disconnect after a ban so the notice can
	// deliver. Stopped if the session disconnects on its own first.
	banTimer *time.Timer
}

func newSession(addr string) *Session {
	return &Session{
		ID:         uuid.New(),
		Addr:       addr,
		out:        make(chan []byte, 256),
		forceClose: make(chan struct{}),
	}
}

// Joined reports whether the session is bound to a room.
func (s *Session) Joined() bool {
	return s.Username != "" && s.RoomCode != ""
}

// send queues an outbound frame without blocking. Frames are dropped when
// the receiver is too slow; this keeps the reactor responsive.
func (s *Session) send(b []byte) {
	select {
	case s.out <- b:
	default:
	}
}

// Out returns the outbound frame channel for the connection write pump.
func (s *Session) Out() <-chan []byte { return s.out }

// ForceClose signals the connection pumps to terminate. Idempotent.
func (s *Session) ForceClose() {
	s.closeOnce.Do(func() { close(s.forceClose) })
}

// Closing returns a channel closed when a forced disconnect was requested.
func (s *Session) Closing() <-chan struct{} { return s.forceClose }
