package store

import (
	"bytes"

	"github.com/google/btree"
)

// pendingRange returns the entries with a key in [start, end) in
// ascending order. A nil limit is open.
func pendingRange(bt *btree.BTree, start, end []byte) []entry {
	var res []entry
	visit := func(item btree.Item) bool {
		res = append(res, item.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(visit)
	case start == nil:
		bt.AscendLessThan(entry{key: end}, visit)
	case end == nil:
		bt.AscendGreaterOrEqual(entry{key: start}, visit)
	default:
		bt.AscendRange(entry{key: start}, entry{key: end}, visit)
	}
	return res
}

// merge joins pending entries with the parent content, both sorted in
// the same direction. A pending entry replaces the parent value of the
// same key, tombstones drop it.
func merge(ours []entry, parent []Model, descending bool) []Model {
	res := make([]Model, 0, len(ours)+len(parent))
	order := func(a, b []byte) int {
		if descending {
			return bytes.Compare(b, a)
		}
		return bytes.Compare(a, b)
	}
	take := func(e entry) {
		if !e.deleted {
			res = append(res, Pair(e.key, e.value))
		}
	}

	for len(ours) > 0 && len(parent) > 0 {
		switch c := order(ours[0].key, parent[0].Key); {
		case c > 0:
			res = append(res, parent[0])
			parent = parent[1:]
		case c < 0:
			take(ours[0])
			ours = ours[1:]
		default:
			take(ours[0])
			ours = ours[1:]
			parent = parent[1:]
		}
	}
	for _, e := range ours {
		take(e)
	}
	return append(res, parent...)
}
