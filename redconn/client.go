package redconn

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basegate/redex/redis"
	"github.com/basegate/redex/resp"
)

// controlInterval is how often the background pinger sends a PING,
// whether or not other traffic ran in between, giving a broken socket a
// chance to be noticed and repaired before a caller's command has to pay
// for it.
const controlInterval = 30 * time.Second

// Client is a single-connection RESP client. It owns exactly one TCP (or
// TLS) connection at a time and serializes every request/reply exchange
// through one dispatcher goroutine, so at most one exchange is ever in
// flight on the wire.
type Client struct {
	opts Opts

	state stateBox

	wc          *wireConn
	reconnectMu sync.Mutex

	submitCh chan *job
	closeCh  chan struct{}
	closeOne sync.Once

	pubsubFlag int32 // atomic bool: connection is in pub/sub mode
	pubsub     *PubSub
}

// Connect dials host:port, runs the AUTH/SELECT/CLIENT SETNAME handshake
// per o, and starts the client's background goroutines. The returned
// Client is ready to use immediately.
func Connect(ctx context.Context, o Opts) (*Client, error) {
	if ctx == nil {
		return nil, redis.NewErr(redis.ErrKindOpts, redis.ErrContextIsNil)
	}
	o, err := o.normalize()
	if err != nil {
		return nil, err
	}

	wc, err := dial(ctx, o)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:     o,
		wc:       wc,
		submitCh: make(chan *job),
		closeCh:  make(chan struct{}),
	}
	c.state.store(connConnected)

	go c.dispatchLoop()
	go c.control()

	return c, nil
}

// control periodically pings a connected client so a break is
// caught by the reconnect machinery instead of waiting for the next
// caller-submitted command to fail.
func (c *Client) control() {
	t := time.NewTicker(controlInterval)
	defer t.Stop()
	for {
		select {
		case <-c.closeCh:
			return
		case <-t.C:
			if c.state.load() != connConnected || c.inPubSub() {
				continue
			}
			if _, err := c.submit(context.Background(), []redis.Command{redis.Cmd("PING")}); err != nil {
				c.opts.Logger.Debug("redconn: background ping failed", "err", err)
			}
		}
	}
}

// Exec sends cmd and waits for its reply. It is equivalent to
// ExecContext(context.Background(), cmd).
func (c *Client) Exec(cmd redis.Command) (resp.Reply, error) {
	return c.ExecContext(context.Background(), cmd)
}

// ExecContext sends cmd and waits for its reply, or for ctx to be done.
func (c *Client) ExecContext(ctx context.Context, cmd redis.Command) (resp.Reply, error) {
	replies, err := c.submit(ctx, []redis.Command{cmd})
	if err != nil {
		return resp.Reply{}, err
	}
	return replies[0], nil
}

// IsConnected reports whether the client currently holds a live
// connection.
func (c *Client) IsConnected() bool { return c.state.load() == connConnected }

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool { return c.state.load() == connClosed }

// Addr returns the configured server address.
func (c *Client) Addr() string {
	port, _ := c.opts.port()
	return c.opts.Host + ":" + port
}

// RemoteAddr returns the live socket's remote address string, or "" if
// not currently connected.
func (c *Client) RemoteAddr() string {
	wc := c.wc
	if wc == nil || !c.IsConnected() {
		return ""
	}
	return wc.conn.RemoteAddr().String()
}

// Close shuts the client down: any in-flight or queued submissions fail
// with ErrClientClosed, the background goroutines exit, and the socket is
// closed. Close is idempotent.
func (c *Client) Close() error {
	c.closeOne.Do(func() {
		c.state.store(connClosed)
		close(c.closeCh)
		if c.wc != nil {
			c.wc.conn.Close()
		}
	})
	return nil
}

func (c *Client) inPubSub() bool { return atomic.LoadInt32(&c.pubsubFlag) == 1 }
