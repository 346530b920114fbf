package redconn

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/basegate/redex/redis"
	"github.com/basegate/redex/resp"
)

// readBufferSize matches resp.maxHeaderLine: a status/error/integer/bulk
// or array length line must fit inside a single buffered read, or
// bufio.Reader.ReadSlice reports ErrBufferFull instead of the line.
const readBufferSize = 64 * 1024

// wireConn bundles the socket with the buffered reader the dispatcher
// reads replies from. Writes go straight to conn (through bufio.Writer
// bw) since requests are framed and flushed as whole units.
type wireConn struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// dial opens the TCP (optionally TLS) connection and runs the connect
// handshake: AUTH, SELECT, CLIENT SETNAME, each only if configured. The
// handshake requests are batched onto the wire in one write and then read
// back sequentially, the same batched-write/sequential-read technique the
// teacher's own connect path uses to avoid a round trip per step.
func dial(ctx context.Context, o Opts) (*wireConn, error) {
	deadline := time.Now().Add(o.DialTimeout)
	if dctx, ok := ctx.Deadline(); !ok || dctx.After(deadline) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	port, err := o.port()
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", net.JoinHostPort(o.Host, port))
	if err != nil {
		return nil, redis.NewErr(redis.ErrKindConnection, redis.ErrDial).Wrap(err)
	}

	if o.TLSConfig != nil {
		tc := tls.Client(nc, o.TLSConfig)
		if err := tc.HandshakeContext(ctx); err != nil {
			nc.Close()
			return nil, redis.NewErr(redis.ErrKindConnection, redis.ErrTLSHandshake).Wrap(err)
		}
		nc = tc
	}

	if dl, ok := ctx.Deadline(); ok {
		nc.SetDeadline(dl)
	}

	wc := &wireConn{
		conn: nc,
		br:   bufio.NewReaderSize(nc, readBufferSize),
		bw:   bufio.NewWriter(nc),
	}

	if err := handshake(wc, o); err != nil {
		nc.Close()
		return nil, err
	}

	nc.SetDeadline(time.Time{})
	return wc, nil
}

func handshake(wc *wireConn, o Opts) error {
	var buf []byte
	steps := 0

	if o.Password != "" {
		var err error
		buf, err = resp.EncodeCommand(buf, redis.Cmd("AUTH", o.Password))
		if err != nil {
			return err
		}
		steps++
	}
	if o.DB != 0 {
		var err error
		buf, err = resp.EncodeCommand(buf, redis.Cmd("SELECT", o.DB))
		if err != nil {
			return err
		}
		steps++
	}
	if o.Name != "" {
		var err error
		buf, err = resp.EncodeCommand(buf, redis.Cmd("CLIENT", "SETNAME", o.Name))
		if err != nil {
			return err
		}
		steps++
	}
	if steps == 0 {
		return nil
	}

	if _, err := wc.bw.Write(buf); err != nil {
		return redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	if err := wc.bw.Flush(); err != nil {
		return redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}

	if o.Password != "" {
		r, err := resp.Decode(wc.br)
		if err != nil {
			return err
		}
		if r.IsError() {
			txt, _ := r.ErrorText()
			return redis.NewErrMsg(redis.ErrKindConnection, redis.ErrAuth, txt)
		}
	}
	if o.DB != 0 {
		r, err := resp.Decode(wc.br)
		if err != nil {
			return err
		}
		if r.IsError() {
			txt, _ := r.ErrorText()
			return redis.NewErrMsg(redis.ErrKindConnection, redis.ErrConnSetup, txt)
		}
	}
	if o.Name != "" {
		r, err := resp.Decode(wc.br)
		if err != nil {
			return err
		}
		if r.IsError() {
			txt, _ := r.ErrorText()
			return redis.NewErrMsg(redis.ErrKindConnection, redis.ErrConnSetup, txt)
		}
	}
	return nil
}

// ping issues a bare PING on wc and validates the "PONG" status reply.
// Used by reconnect's probe-before-redial step; the periodic control()
// loop sends its PING through the dispatcher instead.
func ping(wc *wireConn) error {
	buf, err := resp.EncodeCommand(nil, redis.Cmd("PING"))
	if err != nil {
		return err
	}
	if _, err := wc.bw.Write(buf); err != nil {
		return redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	if err := wc.bw.Flush(); err != nil {
		return redis.NewErr(redis.ErrKindIO, redis.ErrIO).Wrap(err)
	}
	r, err := resp.Decode(wc.br)
	if err != nil {
		return err
	}
	if s, ok := r.Str(); !ok || s != "PONG" {
		return redis.NewErr(redis.ErrKindResponse, redis.ErrPing)
	}
	return nil
}
