package redconn

import (
	"context"

	"github.com/basegate/redex/redis"
	"github.com/basegate/redex/resp"
)

// Pipeline is a locally-buffered batch of commands: Enqueue appends to
// the buffer, Flush writes every buffered command in one batch and reads
// back N replies in order. It is not atomic on the server - purely a
// wire-level optimization over issuing the same commands one at a time.
//
// A Pipeline is not safe for concurrent use; Enqueue and Flush from a
// single goroutine.
type Pipeline struct {
	c    *Client
	cmds []redis.Command
}

// Pipeline returns a new, empty Pipeline bound to c.
func (c *Client) Pipeline() *Pipeline {
	return &Pipeline{c: c}
}

// Enqueue appends one command to the buffer without touching the wire.
func (p *Pipeline) Enqueue(name string, args ...interface{}) {
	p.cmds = append(p.cmds, redis.Cmd(name, args...))
}

// Flush is FlushContext with context.Background().
func (p *Pipeline) Flush() ([]resp.Reply, error) {
	return p.FlushContext(context.Background())
}

// FlushContext writes every buffered command as one batch and returns
// their replies in order, consuming the buffer. Calling Flush again
// afterward with nothing enqueued returns (nil, nil).
func (p *Pipeline) FlushContext(ctx context.Context) ([]resp.Reply, error) {
	cmds := p.cmds
	p.cmds = nil
	if len(cmds) == 0 {
		return nil, nil
	}
	return p.c.submit(ctx, cmds)
}

// Transaction is a locally-buffered batch of commands sent wrapped in
// MULTI/EXEC on Flush: Enqueue appends to the buffer, Flush submits
// MULTI, the buffered commands, and EXEC as one exchange, then validates
// and unwraps the EXEC reply into the per-command results.
//
// A Transaction is not safe for concurrent use; Enqueue and Flush from a
// single goroutine.
type Transaction struct {
	c    *Client
	cmds []redis.Command
}

// Tx returns a new, empty Transaction bound to c.
func (c *Client) Tx() *Transaction {
	return &Transaction{c: c}
}

// Enqueue appends one command to the buffer without touching the wire.
func (t *Transaction) Enqueue(name string, args ...interface{}) {
	t.cmds = append(t.cmds, redis.Cmd(name, args...))
}

// Flush is FlushContext with context.Background().
func (t *Transaction) Flush() ([]resp.Reply, error) {
	return t.FlushContext(context.Background())
}

// FlushContext wraps the buffered commands in MULTI/EXEC, submits them as
// one exchange, and unwraps the result, consuming the buffer. An empty
// buffer is a malformed-transaction error rather than a silent no-op,
// since MULTI/EXEC around zero commands isn't a meaningful transaction.
func (t *Transaction) FlushContext(ctx context.Context) ([]resp.Reply, error) {
	cmds := t.cmds
	t.cmds = nil
	if len(cmds) == 0 {
		return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction, "empty transaction")
	}

	batch := make([]redis.Command, 0, len(cmds)+2)
	batch = append(batch, redis.Cmd("MULTI"))
	batch = append(batch, cmds...)
	batch = append(batch, redis.Cmd("EXEC"))

	replies, err := t.c.submit(ctx, batch)
	if err != nil {
		return nil, err
	}

	// replies[0] is MULTI's +OK, replies[1:len-1] are the +QUEUED
	// acknowledgements, replies[len-1] is EXEC's reply.
	if !replies[0].IsStatus() {
		return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction, "MULTI was not acknowledged")
	}
	for _, r := range replies[1 : len(replies)-1] {
		if err := resp.QueuedResponse(r); err != nil {
			return nil, err
		}
	}
	return resp.TransactionResponse(replies[len(replies)-1], len(cmds))
}

// PipelineExec is a convenience for the common case of a batch known up
// front: it enqueues cmds on a fresh Pipeline and flushes immediately.
func (c *Client) PipelineExec(cmds ...redis.Command) ([]resp.Reply, error) {
	return c.PipelineExecContext(context.Background(), cmds...)
}

// PipelineExecContext is PipelineExec with a caller-supplied context.
func (c *Client) PipelineExecContext(ctx context.Context, cmds ...redis.Command) ([]resp.Reply, error) {
	p := c.Pipeline()
	for _, cmd := range cmds {
		p.cmds = append(p.cmds, cmd)
	}
	return p.FlushContext(ctx)
}

// TransactionExec is a convenience for the common case of a transaction
// known up front: it enqueues cmds on a fresh Transaction and flushes
// immediately.
func (c *Client) TransactionExec(cmds ...redis.Command) ([]resp.Reply, error) {
	return c.TransactionExecContext(context.Background(), cmds...)
}

// TransactionExecContext is TransactionExec with a caller-supplied
// context.
func (c *Client) TransactionExecContext(ctx context.Context, cmds ...redis.Command) ([]resp.Reply, error) {
	t := c.Tx()
	t.cmds = append(t.cmds, cmds...)
	return t.FlushContext(ctx)
}
