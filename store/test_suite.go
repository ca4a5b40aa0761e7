package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/iov-one/mig/migtest/assert"
)

// Opener returns an empty store and a function releasing it.
type Opener func() (base CacheableKVStore, cleanup func())

// Suite holds checks that every CacheableKVStore implementation must pass.
// Ledger handlers rely on these properties when a failed operation
// discards its savepoint.
type Suite struct {
	open Opener
}

// NewSuite returns a suite for the stores produced by open.
func NewSuite(open Opener) *Suite {
	return &Suite{open: open}
}

// AssertValue fails unless key holds want. A nil want expects the key to
// be absent, checked through both Get and Has.
func AssertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	if !bytes.Equal(want, got) {
		t.Fatalf("%s: want %q, got %q", key, want, got)
	}
	has, err := kv.Has(key)
	assert.Nil(t, err)
	if has != (want != nil) {
		t.Fatalf("%s: has is %v", key, has)
	}
}

// Savepoints checks that writes in a cache wrap reach the parent only on
// Write, and that nested wraps can be dropped independently.
func (s *Suite) Savepoints(t *testing.T) {
	base, cleanup := s.open()
	defer cleanup()

	supply := []byte("token:MIG")
	alice := []byte("balance:MIG:alice")
	bob := []byte("balance:MIG:bob")

	AssertValue(t, base, supply, nil)
	assert.Nil(t, base.Set(supply, []byte("1000")))
	AssertValue(t, base, supply, []byte("1000"))

	op := base.CacheWrap()
	AssertValue(t, op, supply, []byte("1000"))
	assert.Nil(t, op.Set(alice, []byte("990")))
	AssertValue(t, op, alice, []byte("990"))
	AssertValue(t, base, alice, nil)

	nested := op.CacheWrap()
	assert.Nil(t, nested.Set(bob, []byte("10")))
	assert.Nil(t, nested.Delete(alice))
	AssertValue(t, nested, alice, nil)
	nested.Discard()
	AssertValue(t, op, alice, []byte("990"))
	AssertValue(t, op, bob, nil)

	assert.Nil(t, op.Write())
	AssertValue(t, base, alice, []byte("990"))
	AssertValue(t, base, bob, nil)

	failed := base.CacheWrap()
	assert.Nil(t, failed.Set(bob, []byte("10")))
	assert.Nil(t, failed.Delete(supply))
	failed.Discard()
	AssertValue(t, base, supply, []byte("1000"))
	AssertValue(t, base, bob, nil)

	// A wrap opened before another one writes reads through to the parent.
	early := base.CacheWrap()
	burn := base.CacheWrap()
	assert.Nil(t, burn.Set(supply, []byte("999")))
	assert.Nil(t, burn.Write())
	AssertValue(t, early, supply, []byte("999"))
}

// Overrides checks how a child wrap shadows its parent, before and after
// it is written.
func (s *Suite) Overrides(t *testing.T) {
	cases := map[string]struct {
		parent []Op
		child  []Op
		// nil values are expected to be absent
		before []Model
		after  []Model
	}{
		"overwrite": {
			parent: []Op{SetOp([]byte("stake:1"), []byte("100"))},
			child:  []Op{SetOp([]byte("stake:1"), []byte("250"))},
			before: []Model{Pair([]byte("stake:1"), []byte("100"))},
			after:  []Model{Pair([]byte("stake:1"), []byte("250"))},
		},
		"delete parent key": {
			parent: []Op{SetOp([]byte("stake:1"), []byte("100")), SetOp([]byte("stake:2"), []byte("50"))},
			child:  []Op{DelOp([]byte("stake:2"))},
			before: []Model{Pair([]byte("stake:1"), []byte("100")), Pair([]byte("stake:2"), []byte("50"))},
			after:  []Model{Pair([]byte("stake:1"), []byte("100")), Pair([]byte("stake:2"), nil)},
		},
		"delete then set again": {
			parent: []Op{SetOp([]byte("allowance:a:b"), []byte("7"))},
			child:  []Op{DelOp([]byte("allowance:a:b")), SetOp([]byte("allowance:a:b"), []byte("3"))},
			before: []Model{Pair([]byte("allowance:a:b"), []byte("7"))},
			after:  []Model{Pair([]byte("allowance:a:b"), []byte("3"))},
		},
		"set then delete new key": {
			child:  []Op{SetOp([]byte("vesting:1:a"), []byte("9")), DelOp([]byte("vesting:1:a"))},
			before: []Model{Pair([]byte("vesting:1:a"), nil)},
			after:  []Model{Pair([]byte("vesting:1:a"), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.open()
			defer cleanup()
			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			for _, m := range tc.before {
				AssertValue(t, parent, m.Key, m.Value)
			}
			for _, m := range tc.after {
				AssertValue(t, child, m.Key, m.Value)
			}
			assert.Nil(t, child.Write())
			for _, m := range tc.after {
				AssertValue(t, parent, m.Key, m.Value)
			}
		})
	}
}

// RangeScan applies random operations to a parent and a child wrap and
// compares every scan with an in memory model of the expected content.
func (s *Suite) RangeScan(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1999} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			base, cleanup := s.open()
			defer cleanup()
			r := rand.New(rand.NewSource(seed))

			parentModel := ledgerModel{}
			for _, op := range parentModel.randomOps(r, 60) {
				assert.Nil(t, op.Apply(base))
			}
			childModel := parentModel.clone()
			child := base.CacheWrap()
			for _, op := range childModel.randomOps(r, 60) {
				assert.Nil(t, op.Apply(child))
			}

			bounds := scanBounds(r)
			for _, b := range bounds {
				AssertScan(t, base.CacheWrap(), b[0], b[1], parentModel.scan(b[0], b[1]))
				AssertScan(t, child, b[0], b[1], childModel.scan(b[0], b[1]))
			}
			assert.Nil(t, child.Write())
			for _, b := range bounds {
				AssertScan(t, base.CacheWrap(), b[0], b[1], childModel.scan(b[0], b[1]))
			}
		})
	}
}

// ScanEdges covers merges of parent and child content where deletes and
// overwrites sit on the range limits.
func (s *Suite) ScanEdges(t *testing.T) {
	a, b, c, d := []byte("balance:a"), []byte("balance:b"), []byte("balance:c"), []byte("balance:d")
	one, two := []byte("1"), []byte("2")

	cases := map[string]struct {
		parent     []Op
		child      []Op
		start, end []byte
		want       []Model
	}{
		"child only": {
			child: []Op{SetOp(c, one), SetOp(a, one)},
			want:  []Model{Pair(a, one), Pair(c, one)},
		},
		"parent only": {
			parent: []Op{SetOp(b, one), SetOp(d, one)},
			want:   []Model{Pair(b, one), Pair(d, one)},
		},
		"interleaved": {
			parent: []Op{SetOp(a, one), SetOp(c, one)},
			child:  []Op{SetOp(b, two), SetOp(d, two)},
			want:   []Model{Pair(a, one), Pair(b, two), Pair(c, one), Pair(d, two)},
		},
		"child value wins": {
			parent: []Op{SetOp(a, one), SetOp(b, one)},
			child:  []Op{SetOp(b, two)},
			want:   []Model{Pair(a, one), Pair(b, two)},
		},
		"deleted first key": {
			parent: []Op{SetOp(a, one), SetOp(b, one), SetOp(c, one)},
			child:  []Op{DelOp(a)},
			start:  a,
			want:   []Model{Pair(b, one), Pair(c, one)},
		},
		"end excludes remaining key": {
			parent: []Op{SetOp(a, one), SetOp(c, one)},
			child:  []Op{DelOp(a), DelOp(b)},
			end:    c,
		},
		"everything deleted": {
			parent: []Op{SetOp(a, one), SetOp(b, one)},
			child:  []Op{DelOp(b), DelOp(a), DelOp(c)},
		},
		"empty range": {
			parent: []Op{SetOp(a, one), SetOp(b, one)},
			start:  b,
			end:    b,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.open()
			defer cleanup()
			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			AssertScan(t, child, tc.start, tc.end, tc.want)
		})
	}
}

// AssertScan fails unless iterating [start, end) yields want in
// ascending order and its reverse in descending order.
func AssertScan(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()

	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	got, err := ReadAll(it)
	assert.Nil(t, err)
	compareModels(t, fmt.Sprintf("[%q, %q)", start, end), want, got)

	it, err = kv.ReverseIterator(start, end)
	assert.Nil(t, err)
	got, err = ReadAll(it)
	assert.Nil(t, err)
	rev := make([]Model, len(want))
	for i, m := range want {
		rev[len(want)-1-i] = m
	}
	compareModels(t, fmt.Sprintf("reverse [%q, %q)", start, end), rev, got)
}

func compareModels(t testing.TB, scan string, want, got []Model) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: want %d items, got %d", scan, len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("%s: item %d is %q=%q, want %q=%q", scan, i,
				got[i].Key, got[i].Value, want[i].Key, want[i].Value)
		}
	}
}

var ledgerPrefixes = []string{"allowance", "balance", "stake"}

// ledgerKey returns a key from a small key space, so random operations
// hit the same keys often.
func ledgerKey(r *rand.Rand) []byte {
	return []byte(fmt.Sprintf("%s:%03d", ledgerPrefixes[r.Intn(len(ledgerPrefixes))], r.Intn(40)))
}

// ledgerKeys returns n distinct keys in ascending order.
func ledgerKeys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("balance:%03d", i))
	}
	return keys
}

// scanBounds returns ranges covering open ends, one prefix and a few
// random limits.
func scanBounds(r *rand.Rand) [][2][]byte {
	bounds := [][2][]byte{
		{nil, nil},
		{[]byte("balance:"), []byte("balance;")},
		{[]byte("balance:020"), nil},
		{nil, []byte("stake:")},
	}
	for i := 0; i < 4; i++ {
		lo, hi := ledgerKey(r), ledgerKey(r)
		if bytes.Compare(lo, hi) > 0 {
			lo, hi = hi, lo
		}
		bounds = append(bounds, [2][]byte{lo, hi})
	}
	return bounds
}

// ledgerModel is the expected content of a store.
type ledgerModel map[string][]byte

func (m ledgerModel) clone() ledgerModel {
	c := make(ledgerModel, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// randomOps returns n operations, about a third of them deletes, and
// applies them to the model.
func (m ledgerModel) randomOps(r *rand.Rand, n int) []Op {
	ops := make([]Op, n)
	for i := range ops {
		key := ledgerKey(r)
		if r.Intn(3) == 0 {
			ops[i] = DelOp(key)
			delete(m, string(key))
			continue
		}
		value := []byte(fmt.Sprintf("%d", r.Int63()))
		ops[i] = SetOp(key, value)
		m[string(key)] = value
	}
	return ops
}

// scan returns the model content in [start, end) in ascending order.
func (m ledgerModel) scan(start, end []byte) []Model {
	var res []Model
	for k, v := range m {
		key := []byte(k)
		if start != nil && bytes.Compare(key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(key, end) >= 0 {
			continue
		}
		res = append(res, Pair(key, v))
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}
