package resp

import "github.com/basegate/redex/redis"

// TransactionResponse validates the shape of an EXEC reply against the
// number of commands queued inside MULTI/EXEC and unwraps it into the
// per-command replies. A nil array means the transaction was aborted
// (WATCH key touched, or a queued command was rejected) and is reported
// as an error rather than silently returned as an empty result.
func TransactionResponse(exec Reply, queued int) ([]Reply, error) {
	if !exec.IsArray() {
		if exec.IsError() {
			txt, _ := exec.ErrorText()
			return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction, txt)
		}
		return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction,
			"EXEC reply was not an array")
	}
	if exec.IsNil() {
		return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction,
			"transaction aborted")
	}
	items, _ := exec.Elems()
	if len(items) != queued {
		return nil, redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction,
			"EXEC reply length did not match queued command count").
			With("queued", queued).With("got", len(items))
	}
	return items, nil
}

// QueuedResponse checks that a reply queued inside MULTI is the expected
// "+QUEUED" status, and reports a malformed-transaction error otherwise -
// including when the server rejected the queue attempt with an error
// reply (a syntax error inside MULTI aborts the whole transaction).
func QueuedResponse(r Reply) error {
	if r.IsStatus() {
		if s, _ := r.Str(); s == "QUEUED" {
			return nil
		}
	}
	if r.IsError() {
		txt, _ := r.ErrorText()
		return redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction, txt)
	}
	return redis.NewErrMsg(redis.ErrKindRequest, redis.ErrMalformedTransaction,
		"expected +QUEUED while inside MULTI")
}
