package resp

import "github.com/basegate/redex/redis"

// PairsToMap converts an HGETALL/CONFIG GET/XINFO-shaped Array reply -
// a flat array of alternating key/value Bulk items - into an ordered
// mapping, per spec.md §3's pairs_to_map. It is a thin instantiation of
// redis.PairsToMap over Reply, since the generic conversion itself has
// no dependency on the wire format and lives in redis to stay importable
// from anywhere in the module.
func PairsToMap(array Reply) (*redis.PairsMap[Reply], error) {
	items, ok := array.Elems()
	if !ok {
		return nil, redis.NewErrMsg(redis.ErrKindResponse, redis.ErrResponseUnexpected, "pairs_to_map requires an array reply")
	}
	return redis.PairsToMap(items, func(r Reply) ([]byte, bool) {
		return r.Bytes()
	})
}
