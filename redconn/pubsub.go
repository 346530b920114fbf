package redconn

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/basegate/redex/redis"
	"github.com/basegate/redex/resp"
)

// PubSub is a subscription session. While one is active on a Client, the
// connection is in pub/sub mode: ordinary Exec/Pipeline/Transaction calls
// are rejected, and the wire carries only (P)SUBSCRIBE/(P)UNSUBSCRIBE/PING
// requests plus the server's asynchronous push messages. Pub/sub mode
// holds exactly as long as the membership sets are non-empty: the
// session ends on its own, without a Close call, the moment an
// (P)UNSUBSCRIBE confirmation drains the last channel and pattern - see
// exitOnEmpty.
type PubSub struct {
	c *Client

	writeMu sync.Mutex

	events chan redis.Event
	errCh  chan error

	mu       sync.Mutex
	channels map[string]struct{}
	patterns map[string]struct{}

	closeOnce sync.Once
	doneCh    chan struct{}
}

// Subscribe enters pub/sub mode on c and subscribes to channels. Only one
// PubSub session may be active on a Client at a time.
func (c *Client) Subscribe(channels ...string) (*PubSub, error) {
	return c.startPubSub(channels, nil)
}

// PSubscribe enters pub/sub mode on c and subscribes to patterns.
func (c *Client) PSubscribe(patterns ...string) (*PubSub, error) {
	return c.startPubSub(nil, patterns)
}

func (c *Client) startPubSub(channels, patterns []string) (*PubSub, error) {
	if c.state.load() == connClosed {
		return nil, redis.NewErr(redis.ErrKindMode, redis.ErrClientClosed)
	}
	if !atomic.CompareAndSwapInt32(&c.pubsubFlag, 0, 1) {
		return nil, redis.NewErrMsg(redis.ErrKindMode, redis.ErrNotInPubSub,
			"a pub/sub session is already active on this connection")
	}

	ps := &PubSub{
		c:        c,
		events:   make(chan redis.Event, 64),
		errCh:    make(chan error, 1),
		channels: map[string]struct{}{},
		patterns: map[string]struct{}{},
		doneCh:   make(chan struct{}),
	}
	c.pubsub = ps
	go ps.readLoop()

	if len(channels) > 0 {
		if err := ps.Subscribe(channels...); err != nil {
			ps.Close()
			return nil, err
		}
	}
	if len(patterns) > 0 {
		if err := ps.PSubscribe(patterns...); err != nil {
			ps.Close()
			return nil, err
		}
	}
	return ps, nil
}

// Events returns the channel of incoming messages and membership
// confirmations. It is closed when the session ends, either through
// Close or a wire error - check Err() afterward to tell the two apart.
func (ps *PubSub) Events() <-chan redis.Event { return ps.events }

// Err returns the error that ended the session, if it ended abnormally.
func (ps *PubSub) Err() error {
	select {
	case err := <-ps.errCh:
		return err
	default:
		return nil
	}
}

func (ps *PubSub) write(cmd redis.Command) error {
	ps.writeMu.Lock()
	defer ps.writeMu.Unlock()

	wc := ps.c.wc
	if wc == nil {
		return redis.NewErr(redis.ErrKindConnection, redis.ErrNotConnected)
	}
	buf, err := resp.EncodeCommand(nil, cmd)
	if err != nil {
		return err
	}
	if _, err := wc.bw.Write(buf); err != nil {
		return redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	return wc.bw.Flush()
}

// Subscribe adds channels to this session's subscriptions.
func (ps *PubSub) Subscribe(channels ...string) error {
	args := make([]interface{}, len(channels))
	for i, ch := range channels {
		args[i] = ch
	}
	return ps.write(redis.Command{Name: "SUBSCRIBE", Args: args})
}

// PSubscribe adds patterns to this session's subscriptions.
func (ps *PubSub) PSubscribe(patterns ...string) error {
	args := make([]interface{}, len(patterns))
	for i, p := range patterns {
		args[i] = p
	}
	return ps.write(redis.Command{Name: "PSUBSCRIBE", Args: args})
}

// Unsubscribe drops channels from this session's subscriptions. With no
// arguments it unsubscribes from all channels.
func (ps *PubSub) Unsubscribe(channels ...string) error {
	args := make([]interface{}, len(channels))
	for i, ch := range channels {
		args[i] = ch
	}
	return ps.write(redis.Command{Name: "UNSUBSCRIBE", Args: args})
}

// PUnsubscribe drops patterns from this session's subscriptions. With no
// arguments it unsubscribes from all patterns.
func (ps *PubSub) PUnsubscribe(patterns ...string) error {
	args := make([]interface{}, len(patterns))
	for i, p := range patterns {
		args[i] = p
	}
	return ps.write(redis.Command{Name: "PUNSUBSCRIBE", Args: args})
}

// closeDrainTimeout bounds how long Close waits for the server to
// confirm a drop-everything UNSUBSCRIBE/PUNSUBSCRIBE before giving up
// and forcing the session closed anyway (the connection is presumed
// dead at that point).
const closeDrainTimeout = 2 * time.Second

// Close ends the session. If any subscriptions are still active, it
// first sends UNSUBSCRIBE and/or PUNSUBSCRIBE with no arguments - only
// for whichever of channels/patterns is actually non-empty, so it never
// asks the server to confirm an unsubscribe that has nothing to drop -
// to clear every channel and pattern server-side before releasing the
// connection: a real Redis server keeps rejecting ordinary commands on
// a connection for as long as it believes any subscription is open, so
// tearing down the client side without telling the server would desync
// the two. It then waits for trackMembership/exitOnEmpty to observe the
// resulting confirmations and end the session on their own, falling
// back to a forced teardown if the server never answers. Close is
// idempotent, and a no-op if the session already ended (explicit
// Unsubscribe/PUnsubscribe already drained membership to empty, or a
// wire error already killed the session).
func (ps *PubSub) Close() error {
	select {
	case <-ps.doneCh:
		return nil
	default:
	}

	ps.mu.Lock()
	hasChannels := len(ps.channels) > 0
	hasPatterns := len(ps.patterns) > 0
	ps.mu.Unlock()

	sent := false
	if hasChannels && ps.write(redis.Command{Name: "UNSUBSCRIBE"}) == nil {
		sent = true
	}
	if hasPatterns && ps.write(redis.Command{Name: "PUNSUBSCRIBE"}) == nil {
		sent = true
	}
	if !sent {
		// Nothing left to unsubscribe from, or the connection is
		// already gone - no confirmation will ever arrive either way.
		ps.forceExit()
		return nil
	}

	select {
	case <-ps.doneCh:
	case <-time.After(closeDrainTimeout):
		ps.forceExit()
	}
	return nil
}

// exitOnEmpty ends the session from inside readLoop itself, once
// trackMembership reports both membership sets are empty. It skips
// forceExit's read-deadline nudge: readLoop is not blocked in a read
// when this runs (it just returned from one), so there is nothing to
// interrupt, and setting one here would wrongly persist onto the
// connection's next ordinary read once it's back in normal dispatch.
func (ps *PubSub) exitOnEmpty() {
	ps.closeOnce.Do(func() {
		close(ps.doneCh)
		atomic.StoreInt32(&ps.c.pubsubFlag, 0)
		ps.c.pubsub = nil
	})
}

// forceExit ends the session unconditionally, waking a read loop that's
// presumed still blocked in a Read syscall via an expired deadline.
// Used by Close when the server never confirms the drop-everything
// unsubscribe (most likely because the connection is already broken).
func (ps *PubSub) forceExit() {
	ps.closeOnce.Do(func() {
		close(ps.doneCh)
		if wc := ps.c.wc; wc != nil {
			wc.conn.SetReadDeadline(time.Now())
		}
		atomic.StoreInt32(&ps.c.pubsubFlag, 0)
		ps.c.pubsub = nil
	})
}

// readLoop is the dedicated goroutine that owns wire reads while pub/sub
// mode is active: server pushes arrive unprompted, so there is no
// request to pair a reply against and no dispatcher hand-off needed.
func (ps *PubSub) readLoop() {
	defer close(ps.events)
	for {
		select {
		case <-ps.doneCh:
			return
		default:
		}

		wc := ps.c.wc
		if wc == nil {
			ps.fail(redis.NewErr(redis.ErrKindConnection, redis.ErrNotConnected))
			return
		}
		r, err := resp.Decode(wc.br)
		if err != nil {
			select {
			case <-ps.doneCh:
				// Close woke us up via the read deadline; clear it so
				// the connection goes back to blocking indefinitely for
				// ordinary request/reply traffic.
				wc.conn.SetReadDeadline(time.Time{})
			default:
				ps.fail(err)
			}
			return
		}
		evt, ok := parseEvent(r)
		if !ok {
			continue
		}
		empty := ps.trackMembership(evt)
		select {
		case ps.events <- evt:
		case <-ps.doneCh:
			return
		}
		// in_pubsub_mode holds exactly as long as some membership
		// remains; once both sets drain, the session ends on its own
		// and the connection is free for ordinary Exec/Pipeline again.
		if empty {
			ps.exitOnEmpty()
			return
		}
	}
}

func (ps *PubSub) fail(err error) {
	select {
	case ps.errCh <- err:
	default:
	}
	ps.c.state.store(connDisconnected)
	ps.closeOnce.Do(func() {
		close(ps.doneCh)
		atomic.StoreInt32(&ps.c.pubsubFlag, 0)
		ps.c.pubsub = nil
	})
}

// trackMembership updates the subscription sets for evt and reports
// whether both are now empty, which per the mode invariant
// (in_pubsub_mode iff |channels|+|patterns| > 0) means the session
// should end. Events that don't affect membership (message/pmessage)
// leave the invariant untouched and always report false.
func (ps *PubSub) trackMembership(evt redis.Event) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	switch evt.Kind {
	case redis.EventSubscribe:
		ps.channels[evt.Channel] = struct{}{}
	case redis.EventUnsubscribe:
		delete(ps.channels, evt.Channel)
	case redis.EventPSubscribe:
		ps.patterns[evt.Pattern] = struct{}{}
	case redis.EventPUnsubscribe:
		delete(ps.patterns, evt.Pattern)
	default:
		return false
	}
	return len(ps.channels) == 0 && len(ps.patterns) == 0
}

// parseEvent converts a server push array into an Event. ok is false for
// any reply shape that isn't a recognized push (shouldn't happen once in
// pub/sub mode, but a malformed frame here is silently dropped rather
// than tearing down the session).
func parseEvent(r resp.Reply) (redis.Event, bool) {
	items, ok := r.Elems()
	if !ok || len(items) < 3 {
		return redis.Event{}, false
	}
	kindStr, ok := items[0].Bytes()
	if !ok {
		return redis.Event{}, false
	}
	switch string(kindStr) {
	case "message":
		ch, _ := items[1].Bytes()
		payload, _ := items[2].Bytes()
		return redis.Event{Kind: redis.EventMessage, Channel: string(ch), Payload: payload}, true
	case "pmessage":
		if len(items) < 4 {
			return redis.Event{}, false
		}
		pat, _ := items[1].Bytes()
		ch, _ := items[2].Bytes()
		payload, _ := items[3].Bytes()
		return redis.Event{Kind: redis.EventPMessage, Pattern: string(pat), Channel: string(ch), Payload: payload}, true
	case "subscribe", "unsubscribe", "psubscribe", "punsubscribe":
		name, _ := items[1].Bytes()
		count, _ := items[2].Int()
		var kind redis.EventKind
		switch string(kindStr) {
		case "subscribe":
			kind = redis.EventSubscribe
		case "unsubscribe":
			kind = redis.EventUnsubscribe
		case "psubscribe":
			kind = redis.EventPSubscribe
		case "punsubscribe":
			kind = redis.EventPUnsubscribe
		}
		evt := redis.Event{Kind: kind, Count: count}
		if kind == redis.EventSubscribe || kind == redis.EventUnsubscribe {
			evt.Channel = string(name)
		} else {
			evt.Pattern = string(name)
		}
		return evt, true
	default:
		return redis.Event{}, false
	}
}
