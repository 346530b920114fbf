package redconn

import (
	"crypto/tls"
	"strconv"
	"time"

	"github.com/basegate/redex/redis"
)

// defaultDialTimeout bounds dial, TLS handshake, and the AUTH/SELECT/
// SETNAME handshake as one unit. It is never applied to steady-state
// command traffic - a blocking command like BLPOP with a zero timeout
// must be allowed to sit on the wire indefinitely.
const defaultDialTimeout = 10 * time.Second

// defaultRetryInterval is the fixed-interval reconnect backoff used when
// Opts.RetryInterval is left zero, per the spec's stated 1.2s default.
const defaultRetryInterval = 1200 * time.Millisecond

// Opts configures a Client, mirroring the teacher's own Opts pattern: a
// plain struct with a normalize() pass rather than functional options.
type Opts struct {
	// Host is the server hostname or IP. Required.
	Host string
	// Port is the TCP port, either an int or a decimal string.
	Port interface{}
	// TLSConfig, if non-nil, dials over TLS with this configuration.
	TLSConfig *tls.Config
	// Password, if non-empty, is sent via AUTH right after connecting.
	Password string
	// DB selects a logical database via SELECT after AUTH.
	DB int
	// Name, if non-empty, is surfaced to the server through
	// CLIENT SETNAME during the connect handshake.
	Name string
	// DialTimeout bounds dial + TLS handshake + AUTH/SELECT/SETNAME.
	// Defaults to defaultDialTimeout.
	DialTimeout time.Duration
	// MaxRetryCount is the number of reconnect attempts made after the
	// connection drops. Zero disables automatic reconnection entirely:
	// the client reports the failure and never tries again on its own.
	MaxRetryCount int
	// RetryInterval is the fixed delay between reconnect attempts.
	// Defaults to 1.2s.
	RetryInterval time.Duration
	// Logger receives the client's diagnostic events. Defaults to a
	// zap-backed logger if left nil.
	Logger Logger
}

func (o Opts) port() (string, error) {
	switch v := o.Port.(type) {
	case nil:
		return "6379", nil
	case int:
		return strconv.Itoa(v), nil
	case string:
		if v == "" {
			return "6379", nil
		}
		if _, err := strconv.Atoi(v); err != nil {
			return "", redis.NewErr(redis.ErrKindOpts, redis.ErrInvalidPort).With("port", v)
		}
		return v, nil
	default:
		return "", redis.NewErr(redis.ErrKindOpts, redis.ErrInvalidPort).With("port", v)
	}
}

// normalize validates o and fills in defaults, returning the effective
// options to use.
func (o Opts) normalize() (Opts, error) {
	if o.Host == "" {
		return o, redis.NewErr(redis.ErrKindOpts, redis.ErrNoAddressProvided)
	}
	if _, err := o.port(); err != nil {
		return o, err
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = defaultRetryInterval
	}
	if o.Logger == nil {
		o.Logger = defaultLogger()
	}
	return o, nil
}
