package redis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrDefaultMessage(t *testing.T) {
	err := NewErr(ErrKindMode, ErrClientClosed)
	assert.Equal(t, "client already closed (ErrClientClosed)", err.Error())
}

func TestNewErrMsgOverridesDefault(t *testing.T) {
	err := NewErrMsg(ErrKindResult, ErrResult, "WRONGTYPE Operation against a key")
	assert.Contains(t, err.Error(), "WRONGTYPE")
}

func TestNewErrWrapUsesCauseMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewErrWrap(ErrKindConnection, ErrDial, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, err.Cause())
}

func TestWithIsImmutable(t *testing.T) {
	base := NewErr(ErrKindOpts, ErrInvalidPort)
	withHost := base.With("host", "example.com")
	assert.Nil(t, base.Get("host"))
	assert.Equal(t, "example.com", withHost.Get("host"))
}

func TestHardErrorDistinguishesResultKind(t *testing.T) {
	resultErr := NewErr(ErrKindResult, ErrResult)
	ioErr := NewErr(ErrKindIO, ErrIO)
	assert.False(t, resultErr.HardError())
	assert.True(t, ioErr.HardError())
}

func TestHardErrorNilReceiver(t *testing.T) {
	var e *Error
	assert.False(t, e.HardError())
}

func TestErrorIncludesStructuredContext(t *testing.T) {
	err := NewErr(ErrKindConnection, ErrReconnectExhausted).With("host", "10.0.0.1").With("attempts", 3)
	s := err.Error()
	assert.Contains(t, s, "host: 10.0.0.1")
	assert.Contains(t, s, "attempts: 3")
}

func TestAsRedisError(t *testing.T) {
	var v interface{} = NewErr(ErrKindIO, ErrIO)
	require.NotNil(t, AsRedisError(v))
	assert.Nil(t, AsRedisError("not an error"))
}

func TestKindAndCodeString(t *testing.T) {
	assert.Equal(t, "ErrKindResult", ErrKindResult.String())
	assert.Equal(t, "ErrResult", ErrResult.String())
}

func TestToMapIncludesKindAndCode(t *testing.T) {
	err := NewErr(ErrKindMode, ErrNotInPubSub)
	m := err.ToMap()
	assert.Equal(t, ErrKindMode, m["kind"])
	assert.Equal(t, ErrNotInPubSub, m["code"])
}
