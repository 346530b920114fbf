package redconn

import (
	"context"

	"github.com/cenkalti/backoff/v5"

	"github.com/basegate/redex/redis"
)

// reconnect implements the corrected contract for a broken connection:
// probe the existing socket first with a single PING (the break may have
// been a one-off read timeout the peer already recovered from), and only
// if that fails, redial from scratch through a bounded, fixed-interval
// retry loop. The attempt counter always resets to zero on success, so a
// later, unrelated break gets the full MaxRetryCount attempts again
// rather than inheriting a stale count.
func (c *Client) reconnect(ctx context.Context) *redis.Error {
	c.reconnectMu.Lock()
	defer c.reconnectMu.Unlock()

	if c.state.load() == connConnected {
		// Another job already repaired the connection while we waited
		// for the lock.
		return nil
	}

	if c.wc != nil && ping(c.wc) == nil {
		c.state.store(connConnected)
		return nil
	}

	c.state.store(connConnecting)
	c.opts.Logger.Warn("redconn: connection lost, attempting reconnect",
		"host", c.opts.Host, "maxRetries", c.opts.MaxRetryCount)

	attempts := 0
	op := func() (*wireConn, error) {
		attempts++
		wc, err := dial(ctx, c.opts)
		if err != nil {
			c.opts.Logger.Debug("redconn: reconnect attempt failed", "attempt", attempts, "err", err)
			return nil, err
		}
		return wc, nil
	}

	wc, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.opts.RetryInterval)),
		backoff.WithMaxTries(uint(c.opts.MaxRetryCount)),
	)
	if err != nil {
		c.state.store(connDisconnected)
		decorated := wrapConnErr(err, c.opts.Host, attempts)
		return redis.NewErr(redis.ErrKindConnection, redis.ErrReconnectExhausted).Wrap(decorated)
	}

	if c.wc != nil {
		c.wc.conn.Close()
	}
	c.wc = wc
	c.state.store(connConnected)
	c.opts.Logger.Info("redconn: reconnected", "host", c.opts.Host, "attempts", attempts)
	return nil
}
