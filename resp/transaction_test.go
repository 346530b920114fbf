package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basegate/redex/redis"
)

func TestQueuedResponseOK(t *testing.T) {
	err := QueuedResponse(Status("QUEUED"))
	assert.NoError(t, err)
}

func TestQueuedResponseWrongStatus(t *testing.T) {
	err := QueuedResponse(Status("OK"))
	require.Error(t, err)
}

func TestQueuedResponseServerError(t *testing.T) {
	err := QueuedResponse(ErrorReply("ERR wrong number of arguments"))
	require.Error(t, err)
	rerr := err.(*redis.Error)
	assert.Equal(t, redis.ErrMalformedTransaction, rerr.Code)
}

func TestTransactionResponseOK(t *testing.T) {
	exec := Array([]Reply{Status("OK"), Integer(1)})
	items, err := TransactionResponse(exec, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestTransactionResponseAborted(t *testing.T) {
	_, err := TransactionResponse(NullArray(), 2)
	require.Error(t, err)
}

func TestTransactionResponseLengthMismatch(t *testing.T) {
	exec := Array([]Reply{Status("OK")})
	_, err := TransactionResponse(exec, 2)
	require.Error(t, err)
}

func TestTransactionResponseNotArray(t *testing.T) {
	_, err := TransactionResponse(Status("OK"), 1)
	require.Error(t, err)
}
