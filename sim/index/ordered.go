// Package index provides OrderedIndex, a comparator-ordered sequence with
// duplicate-tolerant range lookups and identity-based removal.
//
// The index is backed by a sorted slice. Searches are O(log n); inserts and
// removals shift the tail of the slice. It is not safe for concurrent use.
package index

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/sirupsen/logrus"
)

// ErrUnordered is returned by Validate when the backing sequence is not sorted
// under the comparator, which happens when the comparator is not a strict weak
// ordering or when a stored element's key was mutated after insertion.
var ErrUnordered = errors.New("index: entries out of order")

// Compare is a three-way comparator. It returns a negative number when target
// sorts before element, zero when both are equivalent and a positive number
// when target sorts after element.
type Compare[T any] func(target, element T) int

// Bias selects where a new element lands among comparator-equal neighbours.
type Bias int

const (
	// BiasAny inserts in the middle of the legal insertion range.
	BiasAny Bias = iota
	// BiasStart inserts before every equal element.
	BiasStart
	// BiasEnd inserts after every equal element (stable, FIFO among ties).
	BiasEnd
)

// OrderedIndex keeps its entries sorted under a comparator. Equal keys are
// allowed and always form one contiguous run.
type OrderedIndex[T comparable] struct {
	entries []T
	cmp     Compare[T]
	misses  int
}

// New creates an empty index ordered by cmp.
func New[T comparable](cmp Compare[T]) *OrderedIndex[T] {
	if cmp == nil {
		panic("index.New: cmp must not be nil")
	}
	return &OrderedIndex[T]{cmp: cmp}
}

// Len returns the number of stored entries.
func (o *OrderedIndex[T]) Len() int {
	return len(o.entries)
}

// At returns the entry at position i.
func (o *OrderedIndex[T]) At(i int) T {
	return o.entries[i]
}

// Entries returns the index's internal storage in sorted order.
// Callers MUST NOT modify or append to the returned slice.
func (o *OrderedIndex[T]) Entries() []T {
	return o.entries
}

// Misses returns how many identity removals could not find their item.
func (o *OrderedIndex[T]) Misses() int {
	return o.misses
}

// Clear drops every entry, keeping the allocated capacity.
func (o *OrderedIndex[T]) Clear() {
	clear(o.entries)
	o.entries = o.entries[:0]
}

// Scan calls fn for each entry in sorted order until fn returns false.
func (o *OrderedIndex[T]) Scan(fn func(i int, v T) bool) {
	for i, v := range o.entries {
		if !fn(i, v) {
			return
		}
	}
}

// InsertionIndex returns the position at which target would be inserted
// before any element equal to it (first-equal-or-greater). An empty index
// returns 0.
func (o *OrderedIndex[T]) InsertionIndex(target T) int {
	return sort.Search(len(o.entries), func(i int) bool {
		return o.cmp(target, o.entries[i]) <= 0
	})
}

// upperIndex returns the first position whose element sorts strictly after target.
func (o *OrderedIndex[T]) upperIndex(target T) int {
	return sort.Search(len(o.entries), func(i int) bool {
		return o.cmp(target, o.entries[i]) < 0
	})
}

// InsertionRange returns the closed range [first, last] of positions where
// target may legally be inserted. When no equal element exists first == last.
// middle is a position inside the range, halfway between both ends.
func (o *OrderedIndex[T]) InsertionRange(target T) (first, middle, last int) {
	first = o.InsertionIndex(target)
	last = first + sort.Search(len(o.entries)-first, func(i int) bool {
		return o.cmp(target, o.entries[first+i]) < 0
	})
	return first, first + (last-first)/2, last
}

// Insert places target inside its legal insertion range according to bias and
// returns the new size of the index.
func (o *OrderedIndex[T]) Insert(target T, bias Bias) int {
	var idx int
	switch bias {
	case BiasStart:
		idx = o.InsertionIndex(target)
	case BiasEnd:
		idx = o.upperIndex(target)
	default:
		_, idx, _ = o.InsertionRange(target)
	}
	o.entries = slices.Insert(o.entries, idx, target)
	return len(o.entries)
}

// InsertAll inserts every item with the same bias and returns the new size.
func (o *OrderedIndex[T]) InsertAll(items []T, bias Bias) int {
	for _, item := range items {
		o.Insert(item, bias)
	}
	return len(o.entries)
}

// TargetRange locates the run of entries comparator-equal to target. first and
// last bound the run (inclusive); hit is the slot a plain binary search lands
// on. ok is false when no equal entry exists.
func (o *OrderedIndex[T]) TargetRange(target T) (first, hit, last int, ok bool) {
	lo, hi := 0, len(o.entries)-1
	hit = -1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		c := o.cmp(target, o.entries[mid])
		switch {
		case c < 0:
			hi = mid - 1
		case c > 0:
			lo = mid + 1
		default:
			hit = mid
			lo = hi + 1
		}
	}
	if hit < 0 {
		return -1, -1, -1, false
	}

	first = sort.Search(hit, func(i int) bool {
		return o.cmp(target, o.entries[i]) <= 0
	})
	last = hit + sort.Search(len(o.entries)-hit, func(i int) bool {
		return o.cmp(target, o.entries[hit+i]) < 0
	}) - 1
	return first, hit, last, true
}

// RemoveByIdentity removes, for every queried item, the slots inside its equal
// run that hold exactly that value (==), not merely an equivalent one. With
// stopAtFirst at most one slot is removed per queried item. The removed values
// are returned in sorted order.
//
// Items that cannot be found are logged and counted (see Misses); they point at
// a caller-side bookkeeping problem and leave the index untouched.
func (o *OrderedIndex[T]) RemoveByIdentity(items []T, stopAtFirst bool) []T {
	if len(items) == 0 || len(o.entries) == 0 {
		o.recordMisses(len(items))
		return nil
	}

	marked := make(map[int]struct{}, len(items))
	missed := 0
	for _, item := range items {
		first, _, last, ok := o.TargetRange(item)
		found := false
		if ok {
			for i := first; i <= last; i++ {
				if o.entries[i] != item {
					continue
				}
				if _, taken := marked[i]; taken {
					continue
				}
				marked[i] = struct{}{}
				found = true
				if stopAtFirst {
					break
				}
			}
		}
		if !found {
			missed++
		}
	}
	o.recordMisses(missed)
	if len(marked) == 0 {
		return nil
	}

	removed := make([]T, 0, len(marked))
	kept := o.entries[:0]
	for i, v := range o.entries {
		if _, drop := marked[i]; drop {
			removed = append(removed, v)
			continue
		}
		kept = append(kept, v)
	}
	clear(o.entries[len(kept):])
	o.entries = kept
	return removed
}

func (o *OrderedIndex[T]) recordMisses(n int) {
	if n == 0 {
		return
	}
	o.misses += n
	logrus.WithField("missing", n).Warn("index: identity removal could not find items")
}

// RangeByKeys returns up to limit entries whose keys lie in [start, end), in
// sorted order. A limit <= 0 means no limit.
func (o *OrderedIndex[T]) RangeByKeys(start, end T, limit int) []T {
	return o.IndexRange(o.InsertionIndex(start), o.InsertionIndex(end), limit)
}

// IndexRange copies up to limit entries from positions [start, end).
// Out-of-range bounds are clamped. A limit <= 0 means no limit.
func (o *OrderedIndex[T]) IndexRange(start, end, limit int) []T {
	start = max(start, 0)
	end = min(end, len(o.entries))
	if start >= end {
		return nil
	}
	n := end - start
	if limit > 0 && n > limit {
		n = limit
	}
	return slices.Clone(o.entries[start : start+n])
}

// Validate checks that adjacent entries are ordered consistently under the
// comparator in both directions. A failure means the comparator is not a strict
// weak ordering or a stored key was mutated in place.
func (o *OrderedIndex[T]) Validate() error {
	for i := 1; i < len(o.entries); i++ {
		prev, cur := o.entries[i-1], o.entries[i]
		if o.cmp(cur, prev) < 0 || o.cmp(prev, cur) > 0 {
			return fmt.Errorf("%w at position %d", ErrUnordered, i)
		}
	}
	return nil
}
