package redconn

import "sync/atomic"

// connState mirrors the teacher's own connection-lifecycle constants:
// a small state machine held in an atomic int32 so the dispatcher, the
// reconnect loop and Close can all observe and transition it without a
// lock.
type connState int32

const (
	connDisconnected connState = iota
	connConnecting
	connConnected
	connClosed
)

func (s connState) String() string {
	switch s {
	case connDisconnected:
		return "disconnected"
	case connConnecting:
		return "connecting"
	case connConnected:
		return "connected"
	case connClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type stateBox struct {
	v int32
}

func (b *stateBox) load() connState      { return connState(atomic.LoadInt32(&b.v)) }
func (b *stateBox) store(s connState)    { atomic.StoreInt32(&b.v, int32(s)) }
func (b *stateBox) cas(old, new connState) bool {
	return atomic.CompareAndSwapInt32(&b.v, int32(old), int32(new))
}
