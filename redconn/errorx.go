package redconn

import "github.com/joomcode/errorx"

// connectionErrors is the errorx namespace/type used to decorate
// connection failures with structured properties, the same
// RegisterProperty pattern the teacher's own redisconn package uses for
// its EKConnection/EKDb traits.
var connectionNamespace = errorx.NewNamespace("redconn.connection")
var connectionErrors = connectionNamespace.NewType("connectionFailure")

// PropHost and PropAttempt carry the address and reconnect-attempt number
// on connection-kind errors, so a caller building alerts or metrics can
// pull them out without parsing the error string.
var (
	PropHost    = errorx.RegisterProperty("host")
	PropAttempt = errorx.RegisterProperty("attempt")
)

// wrapConnErr decorates err with host/attempt context using errorx,
// giving callers a structured way to inspect a reconnect failure.
func wrapConnErr(err error, host string, attempt int) *errorx.Error {
	if err == nil {
		return nil
	}
	return connectionErrors.Wrap(err, "connection failure").
		WithProperty(PropHost, host).
		WithProperty(PropAttempt, attempt)
}
