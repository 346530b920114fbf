// Package redconn is a single-connection RESP client. It owns one TCP
// connection, serializes every request/reply exchange through a single
// dispatcher goroutine, and layers pipelining, transactions, pub/sub and
// bounded reconnect-with-resubmit on top.
//
// Unlike a connection pool or an auto-pipelining multiplexer, redconn
// makes no attempt to have more than one exchange in flight: callers that
// want concurrency should run multiple Clients.
package redconn
