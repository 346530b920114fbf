package redconn

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basegate/redex/redis"
)

func TestReconnectResubmitsExactlyOnceAfterServerDrop(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()

	c := dialFakeServer(t, s, func(o *Opts) {
		o.MaxRetryCount = 3
		o.RetryInterval = 20 * time.Millisecond
	})

	_, err := c.Exec(redis.Cmd("PING"))
	require.NoError(t, err)

	s.dropLatestConn()
	// Give the OS time to surface the close as a read/write error on
	// the client's side before the next exchange runs into it.
	time.Sleep(50 * time.Millisecond)

	r, err := c.Exec(redis.Cmd("PING"))
	require.NoError(t, err)
	str, _ := r.Str()
	assert.Equal(t, "PONG", str)
	assert.True(t, c.IsConnected())
}

func TestNoReconnectWhenMaxRetryCountIsZero(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()

	c := dialFakeServer(t, s, nil) // MaxRetryCount defaults to zero

	_, err := c.Exec(redis.Cmd("PING"))
	require.NoError(t, err)

	s.dropLatestConn()
	time.Sleep(50 * time.Millisecond)

	_, err = c.Exec(redis.Cmd("PING"))
	require.Error(t, err)
	assert.False(t, c.IsConnected())
}

// TestFIFOOrderingUnderConcurrentSubmission drives many concurrent
// Exec calls, each with a payload unique to its goroutine, so a reply
// delivered to the wrong caller - the one failure mode strict FIFO
// pairing exists to prevent - shows up as a mismatched payload rather
// than passing unnoticed because every caller expected the same thing.
func TestFIFOOrderingUnderConcurrentSubmission(t *testing.T) {
	s := newFakeServer(t)
	defer s.close()
	c := dialFakeServer(t, s, nil)

	const n = 20
	results := make(chan struct{ want, got string }, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			want := "msg-" + strconv.Itoa(i)
			r, err := c.Exec(redis.Cmd("ECHO", want))
			if err != nil {
				results <- struct{ want, got string }{want, "ERR:" + err.Error()}
				return
			}
			b, _ := r.Bytes()
			results <- struct{ want, got string }{want, string(b)}
		}(i)
	}
	for i := 0; i < n; i++ {
		res := <-results
		assert.Equal(t, res.want, res.got)
	}
}
