package hier

import (
	"math/bits"
)

// ComponentSelector is a set of patch data component ids
type ComponentSelector struct {
	words []uint64
}

// NewComponentSelector returns a selector holding ids
func NewComponentSelector(ids ...int) *ComponentSelector {
	cs := &ComponentSelector{}
	for _, id := range ids {
		cs.Set(id)
	}
	return cs
}

func (cs *ComponentSelector) grow(id int) {
	for len(cs.words) <= id/64 {
		cs.words = append(cs.words, 0)
	}
}

// Set adds id; negative ids are ignored
func (cs *ComponentSelector) Set(id int) {
	if id < 0 {
		return
	}
	cs.grow(id)
	cs.words[id/64] |= 1 << uint(id%64)
}

// Clear removes id
func (cs *ComponentSelector) Clear(id int) {
	if id < 0 || id/64 >= len(cs.words) {
		return
	}
	cs.words[id/64] &^= 1 << uint(id%64)
}

// IsSet reports whether id is in the set
func (cs *ComponentSelector) IsSet(id int) bool {
	if id < 0 || id/64 >= len(cs.words) {
		return false
	}
	return cs.words[id/64]&(1<<uint(id%64)) != 0
}

// SetAll adds ids 0..n-1
func (cs *ComponentSelector) SetAll(n int) {
	for id := 0; id < n; id++ {
		cs.Set(id)
	}
}

// ClearAll empties the set
func (cs *ComponentSelector) ClearAll() {
	cs.words = cs.words[:0]
}

// Len returns the number of ids in the set
func (cs *ComponentSelector) Len() int {
	n := 0
	for _, w := range cs.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Ids returns the ids in increasing order
func (cs *ComponentSelector) Ids() []int {
	var ids []int
	for i, w := range cs.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			ids = append(ids, i*64+b)
			w &^= 1 << uint(b)
		}
	}
	return ids
}

// Union returns the ids in either selector
func (cs *ComponentSelector) Union(o *ComponentSelector) *ComponentSelector {
	out := &ComponentSelector{words: append([]uint64(nil), cs.words...)}
	for i, w := range o.words {
		out.grow(i * 64)
		out.words[i] |= w
	}
	return out
}

// Intersection returns the ids in both selectors
func (cs *ComponentSelector) Intersection(o *ComponentSelector) *ComponentSelector {
	n := min(len(cs.words), len(o.words))
	out := &ComponentSelector{words: make([]uint64, n)}
	for i := 0; i < n; i++ {
		out.words[i] = cs.words[i] & o.words[i]
	}
	return out
}
