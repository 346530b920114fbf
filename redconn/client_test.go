package redconn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basegate/redex/redis"
)

func dialFakeServer(t *testing.T, s *fakeServer, extra func(*Opts)) *Client {
	t.Helper()
	host, port := s.addr()
	o := Opts{Host: host, Port: port, DialTimeout: 2 * time.Second}
	if extra != nil {
		extra(&o)
	}
	c, err := Connect(context.Background(), o)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnectAndPing(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()

	c := dialFakeServer(t, s, nil)
	assert.True(t, c.IsConnected())

	r, err := c.Exec(redis.Cmd("PING"))
	require.NoError(t, err)
	str, ok := r.Str()
	assert.True(t, ok)
	assert.Equal(t, "PONG", str)
}

func TestExecSetGet(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)

	_, err := c.Exec(redis.Cmd("SET", "foo", "bar"))
	require.NoError(t, err)

	r, err := c.Exec(redis.Cmd("GET", "foo"))
	require.NoError(t, err)
	b, ok := r.Bytes()
	require.True(t, ok)
	assert.Equal(t, "bar", string(b))
}

func TestExecGetMissingKeyIsNilBulk(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)

	r, err := c.Exec(redis.Cmd("GET", "missing"))
	require.NoError(t, err)
	assert.True(t, r.IsNil())
}

func TestConnectWithAuthFailure(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	host, port := s.addr()
	_, err := Connect(context.Background(), Opts{
		Host: host, Port: port, Password: "wrongpass", DialTimeout: 2 * time.Second,
	})
	require.Error(t, err)
	rerr, ok := err.(*redis.Error)
	require.True(t, ok)
	assert.Equal(t, redis.ErrAuth, rerr.Code)
}

func TestConnectRequiresHost(t *testing.T) {
	_, err := Connect(context.Background(), Opts{})
	require.Error(t, err)
	rerr := err.(*redis.Error)
	assert.Equal(t, redis.ErrNoAddressProvided, rerr.Code)
}

func TestConnectRequiresContext(t *testing.T) {
	_, err := Connect(nil, Opts{Host: "127.0.0.1"})
	require.Error(t, err)
	rerr := err.(*redis.Error)
	assert.Equal(t, redis.ErrContextIsNil, rerr.Code)
}

func TestCloseIsIdempotentAndRejectsFurtherExec(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())

	_, err := c.Exec(redis.Cmd("PING"))
	require.Error(t, err)
}

func TestExecContextCancellation(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ExecContext(ctx, redis.Cmd("PING"))
	require.Error(t, err)
	rerr := err.(*redis.Error)
	assert.Equal(t, redis.ErrRequestCancelled, rerr.Code)
}

func TestAddrReflectsConfiguredHost(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)
	host, port := s.addr()
	assert.Equal(t, host+":"+port, c.Addr())
}
