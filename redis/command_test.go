package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCmdBuildsCommand(t *testing.T) {
	c := Cmd("SET", "foo", "bar")
	assert.Equal(t, "SET", c.Name)
	assert.Equal(t, []interface{}{"foo", "bar"}, c.Args)
}

func TestKeyOrdinaryCommand(t *testing.T) {
	k, ok := Cmd("GET", "mykey").Key()
	assert.True(t, ok)
	assert.Equal(t, "mykey", k)
}

func TestKeyBytesArg(t *testing.T) {
	k, ok := Cmd("GET", []byte("mykey")).Key()
	assert.True(t, ok)
	assert.Equal(t, "mykey", k)
}

func TestKeyEvalLooksAtNumkeysPosition(t *testing.T) {
	// Position n=1 for EVAL is the numkeys argument, not the key itself;
	// Key() only recognizes string/[]byte there, so a numeric numkeys
	// argument correctly yields no key rather than misreporting one.
	_, ok := Cmd("EVAL", "return 1", 1, "onlykey").Key()
	assert.False(t, ok)
}

func TestKeyBitopUsesDestKeyPosition(t *testing.T) {
	k, ok := Cmd("BITOP", "AND", "dest", "src1", "src2").Key()
	assert.True(t, ok)
	assert.Equal(t, "dest", k)
}

func TestKeyRandomkeyHasNone(t *testing.T) {
	_, ok := Cmd("RANDOMKEY").Key()
	assert.False(t, ok)
}

func TestKeyMissingArgs(t *testing.T) {
	_, ok := Cmd("GET").Key()
	assert.False(t, ok)
}
