// Package resp implements the wire format: framing and parsing of the
// five RESP2 reply types, and encoding of the inline multi-bulk request
// form. It is deliberately the only package in this module that knows
// what a '\r\n' is.
package resp

import (
	"fmt"

	"github.com/basegate/redex/redis"
)

// Type tags which of the five RESP2 shapes a Reply holds.
type Type uint8

const (
	TypeStatus Type = iota
	TypeError
	TypeInteger
	TypeBulk
	TypeArray
)

func (t Type) String() string {
	switch t {
	case TypeStatus:
		return "status"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulk:
		return "bulk"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Reply is the single tagged value produced by Decode. Exactly one of its
// payload fields is meaningful, selected by Type. Bulk and Array both have
// a nil representation distinct from empty, tracked by the *Null flags.
type Reply struct {
	typ      Type
	text     string // status text, or raw error text (without leading '-')
	integer  int64
	bulk     []byte
	bulkNull bool
	array    []Reply
	arrNull  bool
}

// Status builds a simple-string reply.
func Status(s string) Reply { return Reply{typ: TypeStatus, text: s} }

// ErrorReply builds an error reply from the raw text the server sent
// (without the leading '-').
func ErrorReply(msg string) Reply { return Reply{typ: TypeError, text: msg} }

// Integer builds an integer reply.
func Integer(v int64) Reply { return Reply{typ: TypeInteger, integer: v} }

// Bulk builds a bulk-string reply. A nil slice is a genuinely empty
// (non-nil) bulk string; use NullBulk for the wire's $-1 case.
func Bulk(b []byte) Reply {
	if b == nil {
		b = []byte{}
	}
	return Reply{typ: TypeBulk, bulk: b}
}

// NullBulk builds the nil bulk-string reply ($-1).
func NullBulk() Reply { return Reply{typ: TypeBulk, bulkNull: true} }

// Array builds an array reply from its already-decoded elements.
func Array(items []Reply) Reply {
	if items == nil {
		items = []Reply{}
	}
	return Reply{typ: TypeArray, array: items}
}

// NullArray builds the nil array reply (*-1).
func NullArray() Reply { return Reply{typ: TypeArray, arrNull: true} }

// Type reports which of the five RESP2 shapes this reply holds.
func (r Reply) Type() Type { return r.typ }

func (r Reply) IsStatus() bool  { return r.typ == TypeStatus }
func (r Reply) IsError() bool   { return r.typ == TypeError }
func (r Reply) IsInteger() bool { return r.typ == TypeInteger }
func (r Reply) IsBulk() bool    { return r.typ == TypeBulk }
func (r Reply) IsArray() bool   { return r.typ == TypeArray }

// IsNil reports whether this reply is a nil bulk string or nil array -
// the two shapes RESP2 uses to mean "no value".
func (r Reply) IsNil() bool {
	return (r.typ == TypeBulk && r.bulkNull) || (r.typ == TypeArray && r.arrNull)
}

// Str returns the status text. ok is false if r is not a status reply.
func (r Reply) Str() (string, bool) {
	if r.typ != TypeStatus {
		return "", false
	}
	return r.text, true
}

// ErrorText returns the raw server error text. ok is false if r is not an
// error reply.
func (r Reply) ErrorText() (string, bool) {
	if r.typ != TypeError {
		return "", false
	}
	return r.text, true
}

// Int returns the integer value. ok is false if r is not an integer reply.
func (r Reply) Int() (int64, bool) {
	if r.typ != TypeInteger {
		return 0, false
	}
	return r.integer, true
}

// Bytes returns the bulk payload. ok is false if r is not a bulk reply.
// A nil bulk reply returns (nil, true) - callers that must distinguish
// nil from empty should also check IsNil.
func (r Reply) Bytes() ([]byte, bool) {
	if r.typ != TypeBulk {
		return nil, false
	}
	if r.bulkNull {
		return nil, true
	}
	return r.bulk, true
}

// Elems returns the array's elements. ok is false if r is not an array
// reply. A nil array returns (nil, true).
func (r Reply) Elems() ([]Reply, bool) {
	if r.typ != TypeArray {
		return nil, false
	}
	if r.arrNull {
		return nil, true
	}
	return r.array, true
}

// AsServerError converts an error-typed reply into the redis package's
// error taxonomy. Returns nil for any other Type.
func (r Reply) AsServerError() *redis.Error {
	if r.typ != TypeError {
		return nil
	}
	return redis.NewErrMsg(redis.ErrKindResult, redis.ErrResult, r.text)
}

// String renders a debug form; not the wire encoding.
func (r Reply) String() string {
	switch r.typ {
	case TypeStatus:
		return fmt.Sprintf("Status(%q)", r.text)
	case TypeError:
		return fmt.Sprintf("Error(%q)", r.text)
	case TypeInteger:
		return fmt.Sprintf("Integer(%d)", r.integer)
	case TypeBulk:
		if r.bulkNull {
			return "Bulk(nil)"
		}
		return fmt.Sprintf("Bulk(%q)", r.bulk)
	case TypeArray:
		if r.arrNull {
			return "Array(nil)"
		}
		return fmt.Sprintf("Array(%v)", r.array)
	default:
		return "Reply(?)"
	}
}
