package redis

// Command is an ordered sequence of byte-string tokens: a command name
// plus its arguments. Args may hold any of the types EncodeCommand (in the
// resp package) knows how to turn into a bulk string; anything else fails
// at encode time with ErrArgumentType.
type Command struct {
	Name string
	Args []interface{}
}

// Cmd is a convenience constructor, mirrored on the teacher's redis.Req.
func Cmd(name string, args ...interface{}) Command {
	return Command{Name: name, Args: args}
}

// Key extracts the key argument used to route this command, when one
// exists in the conventional first-argument position. RANDOMKEY has none
// at all. For EVAL/EVALSHA/BITOP it looks at the second argument instead:
// for BITOP that is the destination key; for EVAL/EVALSHA it is numkeys,
// so an integer numkeys yields no key and a string one is returned as
// if it were the key. This
// core doesn't route by key (no cluster support) but keeps the helper
// because higher layers built on top of Client commonly need it.
func (c Command) Key() (string, bool) {
	if c.Name == "RANDOMKEY" {
		return "", false
	}
	n := 0
	if c.Name == "EVAL" || c.Name == "EVALSHA" || c.Name == "BITOP" {
		n = 1
	}
	if len(c.Args) <= n {
		return "", false
	}
	switch v := c.Args[n].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
