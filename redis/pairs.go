package redis

// Pair is one key/value entry as it appeared in a flat array reply,
// preserving server order.
type Pair[V any] struct {
	Key   []byte
	Value V
}

// PairsMap is the ordered mapping PairsToMap builds: it keeps the
// insertion order of the original flat array (as returned by HGETALL,
// CONFIG GET, XINFO and similar commands) while still offering O(1)
// lookup by key. The zero value is not usable; construct one with
// PairsToMap.
type PairsMap[V any] struct {
	pairs []Pair[V]
	index map[string]int
}

// PairsToMap converts a flat array of alternating key/value items - the
// shape every HGETALL/CONFIG GET/XINFO-style reply arrives in - into an
// ordered mapping. keyOf extracts the raw key bytes from an item; it
// reports false if the item can't serve as a key (a nested array, for
// instance), which PairsToMap surfaces as ErrResponseUnexpected. A
// repeated key overwrites the earlier value in place, matching how a
// real map assignment would behave, while keeping the first occurrence's
// position in iteration order.
func PairsToMap[V any](items []V, keyOf func(V) ([]byte, bool)) (*PairsMap[V], error) {
	if len(items)%2 != 0 {
		return nil, NewErrMsg(ErrKindResponse, ErrResponseUnexpected, "pairs array has odd length")
	}
	m := &PairsMap[V]{
		pairs: make([]Pair[V], 0, len(items)/2),
		index: make(map[string]int, len(items)/2),
	}
	for i := 0; i < len(items); i += 2 {
		key, ok := keyOf(items[i])
		if !ok {
			return nil, NewErrMsg(ErrKindResponse, ErrResponseUnexpected, "pairs array key is not scalar")
		}
		value := items[i+1]
		if idx, exists := m.index[string(key)]; exists {
			m.pairs[idx].Value = value
			continue
		}
		m.index[string(key)] = len(m.pairs)
		m.pairs = append(m.pairs, Pair[V]{Key: key, Value: value})
	}
	return m, nil
}

// Get looks up value by key, reporting whether it was present.
func (m *PairsMap[V]) Get(key string) (V, bool) {
	idx, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.pairs[idx].Value, true
}

// Len returns the number of distinct keys.
func (m *PairsMap[V]) Len() int { return len(m.pairs) }

// Range calls fn for each pair in the order it first appeared in the
// source array, stopping early if fn returns false.
func (m *PairsMap[V]) Range(fn func(key []byte, value V) bool) {
	for _, p := range m.pairs {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}
