// Package redex is a RESP (REdis Serialization Protocol) client library.
// It talks to a single server over one connection, exposing typed
// replies, pipelines, MULTI/EXEC transactions, pub/sub subscriptions and
// bounded auto-reconnect.
//
// The library itself lives in three packages:
//
//	redis   - commands, the error taxonomy, and pub/sub event shapes
//	resp    - the wire codec: encoding requests, decoding replies
//	redconn - the connection: dialing, the executor, pipelines,
//	          transactions, pub/sub, reconnect
//
// A typical program only imports redconn and redis:
//
//	c, err := redconn.Connect(ctx, redconn.Opts{Host: "127.0.0.1"})
//	if err != nil { ... }
//	defer c.Close()
//	reply, err := c.Exec(redis.Cmd("GET", "mykey"))
package redex
