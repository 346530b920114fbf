package redconn

import (
	"context"

	"github.com/basegate/redex/redis"
	"github.com/basegate/redex/resp"
)

// job is one unit of work handed to the dispatcher: an ordered batch of
// commands (a single Exec is a batch of one, a Pipeline a batch of many)
// that must be written and read back as one atomic exchange on the wire.
type job struct {
	ctx      context.Context
	cmds     []redis.Command
	resultCh chan jobResult
}

type jobResult struct {
	replies []resp.Reply
	err     error
}

// submit hands cmds to the single dispatcher goroutine and blocks for its
// reply, honoring ctx cancellation on both ends of the wait. Exactly one
// exchange is ever in flight on the wire at a time - that invariant is
// what lets replies be paired with requests by plain arrival order.
func (c *Client) submit(ctx context.Context, cmds []redis.Command) ([]resp.Reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.state.load() == connClosed {
		return nil, redis.NewErr(redis.ErrKindMode, redis.ErrClientClosed)
	}
	if c.inPubSub() {
		return nil, redis.NewErr(redis.ErrKindMode, redis.ErrNotInPubSub)
	}

	j := &job{ctx: ctx, cmds: cmds, resultCh: make(chan jobResult, 1)}

	select {
	case c.submitCh <- j:
	case <-ctx.Done():
		return nil, redis.NewErr(redis.ErrKindRequest, redis.ErrRequestCancelled).Wrap(ctx.Err())
	case <-c.closeCh:
		return nil, redis.NewErr(redis.ErrKindMode, redis.ErrClientClosed)
	}

	select {
	case res := <-j.resultCh:
		return res.replies, res.err
	case <-ctx.Done():
		return nil, redis.NewErr(redis.ErrKindRequest, redis.ErrRequestCancelled).Wrap(ctx.Err())
	}
}

// dispatchLoop is the single goroutine that owns the wire for
// request/reply traffic. It drains submitCh strictly in order, so FIFO
// arrival on the channel is what guarantees FIFO pairing on the wire.
func (c *Client) dispatchLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		case j, ok := <-c.submitCh:
			if !ok {
				return
			}
			c.handleJob(j)
		}
	}
}

func (c *Client) handleJob(j *job) {
	if c.state.load() == connClosed {
		j.resultCh <- jobResult{err: redis.NewErr(redis.ErrKindMode, redis.ErrClientClosed)}
		return
	}
	if err := j.ctx.Err(); err != nil {
		// Cancelled while still queued: the command is never written.
		j.resultCh <- jobResult{err: redis.NewErr(redis.ErrKindRequest, redis.ErrRequestCancelled).Wrap(err)}
		return
	}

	replies, err := c.exchange(j.cmds)
	if err == nil {
		j.resultCh <- jobResult{replies: replies}
		return
	}

	rerr, isConnErr := err.(*redis.Error)
	if isConnErr && rerr.Kind == redis.ErrKindResponse && c.wc != nil {
		// A malformed reply may leave the wire desynchronized, so the
		// socket is dropped rather than read from again.
		c.wc.conn.Close()
		c.state.cas(connConnected, connDisconnected)
	}
	if !isConnErr || rerr.Kind != redis.ErrKindIO {
		j.resultCh <- jobResult{err: err}
		return
	}
	if c.state.load() == connClosed {
		j.resultCh <- jobResult{err: redis.NewErr(redis.ErrKindMode, redis.ErrClientClosed)}
		return
	}

	c.state.store(connDisconnected)
	c.logJobIOFailure(j, err)

	if c.opts.MaxRetryCount <= 0 {
		// MaxRetryCount == 0 means no self-healing at all: the failure
		// is reported immediately and the client stays disconnected;
		// nothing redials it.
		j.resultCh <- jobResult{err: err}
		return
	}

	if rerr2 := c.reconnect(j.ctx); rerr2 != nil {
		j.resultCh <- jobResult{err: rerr2}
		return
	}

	// Exactly-once resubmission of the job that surfaced the break.
	replies, err = c.exchange(j.cmds)
	j.resultCh <- jobResult{replies: replies, err: err}
}

// exchange writes cmds as one batch, flushes once, then reads back
// exactly len(cmds) replies in order. It runs only on the dispatcher
// goroutine, so wc access here needs no lock.
func (c *Client) exchange(cmds []redis.Command) ([]resp.Reply, error) {
	wc := c.wc
	if wc == nil {
		return nil, redis.NewErr(redis.ErrKindConnection, redis.ErrNotConnected)
	}

	var buf []byte
	for _, cmd := range cmds {
		var err error
		buf, err = resp.EncodeCommand(buf, cmd)
		if err != nil {
			return nil, err
		}
	}
	if _, err := wc.bw.Write(buf); err != nil {
		return nil, redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	if err := wc.bw.Flush(); err != nil {
		return nil, redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}

	replies := make([]resp.Reply, len(cmds))
	for i := range cmds {
		r, err := resp.Decode(wc.br)
		if err != nil {
			return nil, err
		}
		replies[i] = r
	}
	return replies, nil
}

// logJobIOFailure reports which command broke the connection, including
// its routing key when the first command in the batch has one in the
// conventional position - useful for spotting a hot key behind a string
// of reconnects, since the batch itself carries no other identifying
// context by the time it reaches the logs.
func (c *Client) logJobIOFailure(j *job, err error) {
	if len(j.cmds) == 0 {
		return
	}
	cmd := j.cmds[0]
	if key, ok := cmd.Key(); ok {
		c.opts.Logger.Warn("redconn: command failed with a connection error",
			"cmd", cmd.Name, "key", key, "err", err)
		return
	}
	c.opts.Logger.Warn("redconn: command failed with a connection error",
		"cmd", cmd.Name, "err", err)
}
