package resp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStr(t *testing.T, s string) Reply {
	t.Helper()
	r, err := Decode(bufio.NewReader(strings.NewReader(s)))
	require.NoError(t, err)
	return r
}

func TestDecodeStatus(t *testing.T) {
	r := decodeStr(t, "+OK\r\n")
	require.True(t, r.IsStatus())
	s, ok := r.Str()
	assert.True(t, ok)
	assert.Equal(t, "OK", s)
}

func TestDecodeError(t *testing.T) {
	r := decodeStr(t, "-ERR unknown command\r\n")
	require.True(t, r.IsError())
	msg, ok := r.ErrorText()
	assert.True(t, ok)
	assert.Equal(t, "ERR unknown command", msg)
}

func TestDecodeInteger(t *testing.T) {
	r := decodeStr(t, ":1000\r\n")
	require.True(t, r.IsInteger())
	n, ok := r.Int()
	assert.True(t, ok)
	assert.EqualValues(t, 1000, n)
}

func TestDecodeNegativeInteger(t *testing.T) {
	r := decodeStr(t, ":-1\r\n")
	n, ok := r.Int()
	assert.True(t, ok)
	assert.EqualValues(t, -1, n)
}

func TestDecodeBulk(t *testing.T) {
	r := decodeStr(t, "$6\r\nfoobar\r\n")
	require.True(t, r.IsBulk())
	require.False(t, r.IsNil())
	b, ok := r.Bytes()
	assert.True(t, ok)
	assert.Equal(t, []byte("foobar"), b)
}

func TestDecodeEmptyBulk(t *testing.T) {
	r := decodeStr(t, "$0\r\n\r\n")
	require.True(t, r.IsBulk())
	require.False(t, r.IsNil())
	b, ok := r.Bytes()
	assert.True(t, ok)
	assert.Equal(t, []byte{}, b)
}

func TestDecodeNullBulk(t *testing.T) {
	r := decodeStr(t, "$-1\r\n")
	require.True(t, r.IsBulk())
	assert.True(t, r.IsNil())
}

func TestDecodeArray(t *testing.T) {
	r := decodeStr(t, "*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	require.True(t, r.IsArray())
	items, ok := r.Elems()
	require.True(t, ok)
	require.Len(t, items, 2)
	b0, _ := items[0].Bytes()
	b1, _ := items[1].Bytes()
	assert.Equal(t, "foo", string(b0))
	assert.Equal(t, "bar", string(b1))
}

func TestDecodeNullArray(t *testing.T) {
	r := decodeStr(t, "*-1\r\n")
	require.True(t, r.IsArray())
	assert.True(t, r.IsNil())
}

func TestDecodeNestedArray(t *testing.T) {
	r := decodeStr(t, "*2\r\n:1\r\n*2\r\n:2\r\n:3\r\n")
	items, _ := r.Elems()
	require.Len(t, items, 2)
	n, _ := items[0].Int()
	assert.EqualValues(t, 1, n)
	inner, ok := items[1].Elems()
	require.True(t, ok)
	require.Len(t, inner, 2)
}

func TestDecodeEmptyArray(t *testing.T) {
	r := decodeStr(t, "*0\r\n")
	items, ok := r.Elems()
	require.True(t, ok)
	assert.Len(t, items, 0)
}

func TestDecodeUnknownHeaderByte(t *testing.T) {
	_, err := Decode(bufio.NewReader(strings.NewReader("?nope\r\n")))
	require.Error(t, err)
}

func TestDecodeMissingCRLF(t *testing.T) {
	_, err := Decode(bufio.NewReader(strings.NewReader("+OK\n")))
	require.Error(t, err)
}

func TestDecodeMultipleRepliesSequentially(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("+OK\r\n:5\r\n$3\r\nfoo\r\n"))
	r1, err := Decode(br)
	require.NoError(t, err)
	assert.True(t, r1.IsStatus())
	r2, err := Decode(br)
	require.NoError(t, err)
	assert.True(t, r2.IsInteger())
	r3, err := Decode(br)
	require.NoError(t, err)
	assert.True(t, r3.IsBulk())
}
