package sample

import (
	"cmp"
	"maps"
	"math"
	"slices"
)

// Table maps keys to non-negative integer weights.
//
// Keys keep their insertion order, which fixes the layout of the cumulative
// distribution used by DrawOne. The sum of all weights never exceeds
// math.MaxInt: a weight that would push it further is clamped to the room
// left. A Table is not safe for concurrent mutation; sampling only reads it.
type Table[K comparable] struct {
	keys    []K
	weights map[K]int
	total   int
}

// NewTable returns an empty table.
func NewTable[K comparable]() *Table[K] {
	return &Table[K]{weights: make(map[K]int)}
}

// TableFromMap builds a table from m, ordering keys ascending. Weights are
// added in key order, so any clamping falls on the largest keys.
func TableFromMap[K cmp.Ordered](m map[K]int) *Table[K] {
	t := &Table[K]{weights: make(map[K]int, len(m))}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		t.Set(k, m[k])
	}
	return t
}

// Set assigns weight w to k. Negative weights are stored as 0, and a weight
// larger than the room left under math.MaxInt is clamped. An existing key
// keeps its position.
func (t *Table[K]) Set(k K, w int) *Table[K] {
	if t.weights == nil {
		t.weights = make(map[K]int)
	}
	old, ok := t.weights[k]
	if !ok {
		t.keys = append(t.keys, k)
	}
	t.total -= old
	w = min(max(w, 0), math.MaxInt-t.total)
	t.weights[k] = w
	t.total += w
	return t
}

// Weight returns the weight of k, or 0 when k is absent.
func (t *Table[K]) Weight(k K) int {
	return t.weights[k]
}

// Remove deletes k from the table.
func (t *Table[K]) Remove(k K) {
	if _, ok := t.weights[k]; !ok {
		return
	}
	t.total -= t.weights[k]
	delete(t.weights, k)
	if i := slices.Index(t.keys, k); i >= 0 {
		t.keys = slices.Delete(t.keys, i, i+1)
	}
}

// Len returns the number of keys, including zero-weight ones.
func (t *Table[K]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in table order.
func (t *Table[K]) Keys() []K {
	return slices.Clone(t.keys)
}

// Total returns the sum of all weights.
func (t *Table[K]) Total() int {
	if t == nil {
		return 0
	}
	return t.total
}

// Clone returns an independent copy of t.
func (t *Table[K]) Clone() *Table[K] {
	return &Table[K]{
		keys:    slices.Clone(t.keys),
		weights: maps.Clone(t.weights),
		total:   t.total,
	}
}

// DrawOne picks one key with probability proportional to its weight.
//
// It returns the zero key and false when t is empty or every weight is 0.
func DrawOne[K comparable](s *Sampler, t *Table[K]) (K, bool) {
	var zero K
	if t.Len() == 0 {
		return zero, false
	}

	total := t.Total()
	if total <= 0 {
		return zero, false
	}

	r := s.Intn(total)
	cum := 0
	for _, k := range t.keys {
		cum += t.weights[k]
		if cum > r {
			return k, true
		}
	}
	return zero, false
}

// DrawMany picks up to count distinct keys without replacement, in draw
// order. It stops early once no selectable key remains, so a count larger
// than the table returns every key with a positive weight. t is not modified.
func DrawMany[K comparable](s *Sampler, t *Table[K], count int) []K {
	if count <= 0 || t.Len() == 0 {
		return []K{}
	}

	work := t.Clone()
	out := make([]K, 0, min(count, work.Len()))
	for len(out) < count {
		k, ok := DrawOne(s, work)
		if !ok {
			break
		}
		out = append(out, k)
		work.Remove(k)
	}
	return out
}
