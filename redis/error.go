// Package redis holds the wire-independent vocabulary shared by the resp
// codec and the redconn client: commands, the error taxonomy, and the
// pub/sub event shapes. It has no knowledge of bufio, net, or the wire
// format itself.
package redis

import (
	"fmt"
	"strings"
)

// ErrorKind classifies an Error into one of the taxonomy buckets a caller
// can safely branch on: is this local, transient, fatal to the connection,
// or just a redis-side failure that leaves the connection healthy.
type ErrorKind uint32

// ErrorCode further refines an ErrorKind.
type ErrorCode uint32

const (
	// ErrKindOpts - connect options are malformed. Raised at Connect time.
	ErrKindOpts ErrorKind = iota + 1
	// ErrKindConnection - dial, TLS handshake, AUTH, SELECT or SETNAME
	// failed while establishing or re-establishing the connection.
	ErrKindConnection
	// ErrKindIO - a read/write/flush on the transport failed, or the
	// connection was closed while an exchange was in flight. It is not
	// known whether the request was processed by the server.
	ErrKindIO
	// ErrKindRequest - the request failed as a request: an argument
	// couldn't be serialized, a transaction was empty, rejected or
	// answered with an unexpected shape, or the caller's context was
	// cancelled before the reply was delivered.
	ErrKindRequest
	// ErrKindResponse - the server's reply did not parse as valid RESP,
	// or had an unexpected shape (EXEC not an array, and so on). Fatal to
	// the connection: the wire may be desynchronized.
	ErrKindResponse
	// ErrKindMode - a command was rejected locally, before any wire
	// traffic, because it is not legal in the connection's current mode
	// (pub/sub active, or the client already closed).
	ErrKindMode
	// ErrKindResult - a well-formed `-ERR ...` reply from the server.
	// Non-fatal: the connection stays open.
	ErrKindResult
)

var kindName = map[ErrorKind]string{
	ErrKindOpts:       "ErrKindOpts",
	ErrKindConnection: "ErrKindConnection",
	ErrKindIO:         "ErrKindIO",
	ErrKindRequest:    "ErrKindRequest",
	ErrKindResponse:   "ErrKindResponse",
	ErrKindMode:       "ErrKindMode",
	ErrKindResult:     "ErrKindResult",
}

func (k ErrorKind) String() string {
	if s, ok := kindName[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrKindUnknown%d", uint32(k))
}

const (
	// ErrContextIsNil - a nil context.Context was passed to Connect.
	// (ErrKindOpts)
	ErrContextIsNil ErrorCode = iota + 1
	// ErrNoAddressProvided - hostname was empty.
	// (ErrKindOpts)
	ErrNoAddressProvided
	// ErrInvalidPort - port option was neither a valid integer nor a
	// numeric string.
	// (ErrKindOpts)
	ErrInvalidPort

	// ErrNotConnected - a command was submitted while no connection is
	// currently established (and no in-flight retry will resurrect it).
	// (ErrKindConnection)
	ErrNotConnected
	// ErrDial - TCP/TLS dial failed.
	// (ErrKindConnection)
	ErrDial
	// ErrTLSHandshake - TLS handshake failed.
	// (ErrKindConnection)
	ErrTLSHandshake
	// ErrAuth - AUTH was rejected by the server.
	// (ErrKindConnection)
	ErrAuth
	// ErrConnSetup - SELECT or CLIENT SETNAME failed, or the connect-time
	// handshake produced an unexpected reply shape.
	// (ErrKindConnection)
	ErrConnSetup
	// ErrReconnectExhausted - the bounded reconnect loop ran out of
	// attempts. Non-recoverable: the client will not try again on its own.
	// (ErrKindConnection)
	ErrReconnectExhausted

	// ErrIO - a read, write or flush on the transport failed.
	// (ErrKindIO)
	ErrIO
	// ErrClosed - the client was explicitly closed.
	// (ErrKindIO)
	ErrClosed

	// ErrArgumentType - a command argument's type has no wire encoding.
	// (ErrKindRequest)
	ErrArgumentType
	// ErrMalformedTransaction - a transaction buffer was empty, a queued
	// command was not acknowledged with +QUEUED, or the EXEC reply was an
	// error, nil, not an array, or of the wrong length.
	// (ErrKindRequest)
	ErrMalformedTransaction
	// ErrRequestCancelled - the caller's context was done before the reply
	// was delivered: either before the dispatcher started the exchange (the
	// command is never written) or while it was in flight (the command
	// still completes on the wire and its reply is discarded). Both cases
	// use this same code.
	// (ErrKindRequest)
	ErrRequestCancelled

	// ErrHeaderlineTooLarge - a reply header line exceeded the reader's
	// line buffer, or a bulk length exceeded the decoder's size cap.
	// (ErrKindResponse)
	ErrHeaderlineTooLarge
	// ErrHeaderlineEmpty - a reply header line was empty.
	// (ErrKindResponse)
	ErrHeaderlineEmpty
	// ErrIntegerParsing - an integer header or payload did not parse as
	// a signed decimal integer.
	// (ErrKindResponse)
	ErrIntegerParsing
	// ErrNoFinalRN - a reply line or a bulk string payload was not
	// terminated by \r\n.
	// (ErrKindResponse)
	ErrNoFinalRN
	// ErrUnknownHeaderType - the reply's leading byte is not one of
	// + - : $ *.
	// (ErrKindResponse)
	ErrUnknownHeaderType
	// ErrResponseUnexpected - the reply parsed fine but its shape did not
	// match what the caller expected (EXEC's array, a SCAN pair, ...).
	// (ErrKindResponse)
	ErrResponseUnexpected
	// ErrPing - the liveness PING did not reply with a "PONG" status.
	// (ErrKindResponse)
	ErrPing

	// ErrNotInPubSub - (P)SUBSCRIBE/(P)UNSUBSCRIBE/PING/QUIT is the only
	// legal command set while the connection is in pub/sub mode.
	// (ErrKindMode)
	ErrNotInPubSub
	// ErrPubSubOnly - the reverse of ErrNotInPubSub: a pub/sub-only
	// operation was attempted while not subscribed to anything.
	// (ErrKindMode)
	ErrPubSubOnly
	// ErrClientClosed - a write was attempted on an explicitly closed
	// client.
	// (ErrKindMode)
	ErrClientClosed

	// ErrResult - a plain `-ERR ...` server reply.
	// (ErrKindResult)
	ErrResult
)

var codeName = map[ErrorCode]string{
	ErrContextIsNil:       "ErrContextIsNil",
	ErrNoAddressProvided:  "ErrNoAddressProvided",
	ErrInvalidPort:        "ErrInvalidPort",
	ErrNotConnected:       "ErrNotConnected",
	ErrDial:               "ErrDial",
	ErrTLSHandshake:       "ErrTLSHandshake",
	ErrAuth:               "ErrAuth",
	ErrConnSetup:          "ErrConnSetup",
	ErrReconnectExhausted: "ErrReconnectExhausted",
	ErrIO:                 "ErrIO",
	ErrClosed:             "ErrClosed",
	ErrArgumentType:       "ErrArgumentType",
	ErrMalformedTransaction: "ErrMalformedTransaction",
	ErrRequestCancelled:   "ErrRequestCancelled",
	ErrHeaderlineTooLarge: "ErrHeaderlineTooLarge",
	ErrHeaderlineEmpty:    "ErrHeaderlineEmpty",
	ErrIntegerParsing:     "ErrIntegerParsing",
	ErrNoFinalRN:          "ErrNoFinalRN",
	ErrUnknownHeaderType:  "ErrUnknownHeaderType",
	ErrResponseUnexpected: "ErrResponseUnexpected",
	ErrPing:               "ErrPing",
	ErrNotInPubSub:        "ErrNotInPubSub",
	ErrPubSubOnly:         "ErrPubSubOnly",
	ErrClientClosed:       "ErrClientClosed",
	ErrResult:             "ErrResult",
}

func (c ErrorCode) String() string {
	if s, ok := codeName[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrUnknown%d", uint32(c))
}

var defMessage = map[ErrorCode]string{
	ErrContextIsNil:         "context is not set",
	ErrNoAddressProvided:    "hostname is required",
	ErrInvalidPort:          "port is not a valid number",
	ErrNotConnected:         "connection is not established",
	ErrDial:                 "could not connect",
	ErrTLSHandshake:         "TLS handshake failed",
	ErrAuth:                 "AUTH rejected",
	ErrConnSetup:            "connection setup unsuccessful",
	ErrReconnectExhausted:   "reconnect attempts exhausted",
	ErrIO:                   "io error",
	ErrClosed:               "client is closed",
	ErrArgumentType:         "command argument type not supported",
	ErrMalformedTransaction: "transaction failed or had an unexpected shape",
	ErrRequestCancelled:     "request was cancelled",
	ErrHeaderlineTooLarge:   "reply header line too large",
	ErrHeaderlineEmpty:      "reply header line is empty",
	ErrIntegerParsing:       "integer is malformed",
	ErrNoFinalRN:            "bulk payload missing trailing \\r\\n",
	ErrUnknownHeaderType:    "reply type byte is not recognized",
	ErrResponseUnexpected:   "reply shape did not match expectations",
	ErrPing:                 "PING did not reply PONG",
	ErrNotInPubSub:          "command not allowed while subscribed",
	ErrPubSubOnly:           "no active subscriptions",
	ErrClientClosed:         "client already closed",
	ErrResult:               "",
}

// Error is the single error type this package produces. Kind/Code classify
// it; a singly-linked kv list carries structured context (added with With)
// without allocating a map on the hot path.
type Error struct {
	Kind ErrorKind
	Code ErrorCode
	*kv
}

type kv struct {
	name  string
	value interface{}
	next  *kv
}

func (kv *kv) Get(name string) interface{} {
	for kv != nil {
		if kv.name == name {
			return kv.value
		}
		kv = kv.next
	}
	return nil
}

// NewErr builds a bare Error carrying only its classification.
func NewErr(kind ErrorKind, code ErrorCode) *Error {
	return &Error{Kind: kind, Code: code}
}

// NewErrMsg builds an Error with an explicit message, typically the raw
// text of a server reply.
func NewErrMsg(kind ErrorKind, code ErrorCode, msg string) *Error {
	return Error{Kind: kind, Code: code}.With("message", msg)
}

// NewErrWrap builds an Error wrapping a lower-level cause (a net.Error, a
// TLS failure, ...).
func NewErrWrap(kind ErrorKind, code ErrorCode, err error) *Error {
	return Error{Kind: kind, Code: code}.With("cause", err)
}

// With returns a copy of e carrying one more piece of structured context.
// Copying (rather than mutating) matters because a single Error value may
// be built up from several goroutines delivering the same failure to
// different queued callers.
func (e Error) With(name string, value interface{}) *Error {
	e.kv = &kv{name: name, value: value, next: e.kv}
	return &e
}

// WithMsg attaches an explicit message.
func (e Error) WithMsg(msg string) *Error {
	return e.With("message", msg)
}

// Wrap attaches a lower-level cause.
func (e Error) Wrap(err error) *Error {
	return e.With("cause", err)
}

// HardError reports whether e is fatal to the connection as opposed to a
// plain server-side result failure.
func (e *Error) HardError() bool {
	return e != nil && e.Kind != ErrKindResult
}

// Get looks up a piece of structured context attached with With.
func (e *Error) Get(name string) interface{} {
	if e == nil {
		return nil
	}
	return e.kv.Get(name)
}

// Msg returns the human-readable message for e: an explicit message if
// one was attached, else the cause's message, else the code's default.
func (e Error) Msg() string {
	if msg, ok := e.Get("message").(string); ok {
		return msg
	}
	if cause := e.Cause(); cause != nil {
		return cause.Error()
	}
	if msg := defMessage[e.Code]; msg != "" {
		return msg
	}
	return "redis error"
}

// Cause returns the wrapped lower-level error, if any.
func (e Error) Cause() error {
	if ierr, ok := e.Get("cause").(error); ok {
		return ierr
	}
	return nil
}

func (e Error) restAsString() string {
	var parts []string
	for kv := e.kv; kv != nil; kv = kv.next {
		if kv.name != "message" && kv.name != "cause" {
			parts = append(parts, fmt.Sprintf("%s: %v", kv.name, kv.value))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (e Error) Error() string {
	msg := e.Msg()
	if rest := e.restAsString(); rest != "" {
		return fmt.Sprintf("%s (%s %s)", msg, e.Code, rest)
	}
	return fmt.Sprintf("%s (%s)", msg, e.Code)
}

// ToMap flattens the kv chain, useful for structured logging sinks.
func (e Error) ToMap() map[string]interface{} {
	res := map[string]interface{}{"kind": e.Kind, "code": e.Code}
	for kv := e.kv; kv != nil; kv = kv.next {
		if _, ok := res[kv.name]; !ok {
			res[kv.name] = kv.value
		}
	}
	return res
}

// AsError type-asserts v (typically a Reply's error accessor result) to
// error, returning nil if v isn't one.
func AsError(v interface{}) error {
	e, _ := v.(error)
	return e
}

// AsRedisError type-asserts v to *Error specifically.
func AsRedisError(v interface{}) *Error {
	e, _ := v.(*Error)
	return e
}
