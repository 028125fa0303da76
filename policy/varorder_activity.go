/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package policy

import "github.com/crillab/yaga/core"

// activityHeap is a decrease/increase-key binary heap over variable
// ordinals of a single kind, ordered by descending activity. Adapted
// verbatim from gophersat's solver/queue.go (itself adapted from
// MiniSat's mtl/Heap.h), generalized only in that the activity slice
// that backs it belongs to ActivityOrder rather than a Solver.
type activityHeap struct {
	activity []float64
	content  []int32
	indices  []int32 // -1 means absent
}

func newActivityHeap(activity []float64) activityHeap {
	h := activityHeap{activity: activity}
	for i := range activity {
		h.insert(int32(i))
	}
	return h
}

func (h *activityHeap) lt(i, j int32) bool { return h.activity[i] > h.activity[j] }

func left(i int32) int32   { return i*2 + 1 }
func right(i int32) int32  { return (i + 1) * 2 }
func parent(i int32) int32 { return (i - 1) >> 1 }

func (h *activityHeap) percolateUp(i int32) {
	x := h.content[i]
	p := parent(i)
	for i != 0 && h.lt(x, h.content[p]) {
		h.content[i] = h.content[p]
		h.indices[h.content[p]] = i
		i = p
		p = parent(p)
	}
	h.content[i] = x
	h.indices[x] = i
}

func (h *activityHeap) percolateDown(i int32) {
	x := h.content[i]
	for left(i) < int32(len(h.content)) {
		child := left(i)
		if right(i) < int32(len(h.content)) && h.lt(h.content[right(i)], h.content[left(i)]) {
			child = right(i)
		}
		if !h.lt(h.content[child], x) {
			break
		}
		h.content[i] = h.content[child]
		h.indices[h.content[i]] = i
		i = child
	}
	h.content[i] = x
	h.indices[x] = i
}

func (h *activityHeap) empty() bool { return len(h.content) == 0 }

func (h *activityHeap) contains(n int32) bool {
	return int(n) < len(h.indices) && h.indices[n] >= 0
}

func (h *activityHeap) update(n int32) {
	if !h.contains(n) {
		h.insert(n)
		return
	}
	h.percolateUp(h.indices[n])
	h.percolateDown(h.indices[n])
}

func (h *activityHeap) insert(n int32) {
	for int32(len(h.indices)) <= n {
		h.indices = append(h.indices, -1)
	}
	h.indices[n] = int32(len(h.content))
	h.content = append(h.content, n)
	h.percolateUp(h.indices[n])
}

func (h *activityHeap) removeMin() int32 {
	x := h.content[0]
	h.content[0] = h.content[len(h.content)-1]
	h.indices[h.content[0]] = 0
	h.indices[x] = -1
	h.content = h.content[:len(h.content)-1]
	if len(h.content) > 1 {
		h.percolateDown(0)
	}
	return x
}

const (
	activityIncInit = 1.0
	activityDecay   = 1.0 / 0.95
	activityRescale = 1e100
)

// ActivityOrder is a VSIDS-style variable order generalized across every
// registered core.Kind (original_source's Generalized_vsids.h
// generalizes the same way gophersat's per-Boolean-variable activity
// queue does not need to): one activityHeap per kind, visited in
// registration-priority order so, for example, every Boolean atom is
// decided before the solver ever picks a bare rational variable.
type ActivityOrder struct {
	kindOrder []core.Kind
	activity  map[core.Kind][]float64
	heaps     map[core.Kind]*activityHeap
	inc       float64
}

// NewActivityOrder returns an ActivityOrder visiting kinds in the given
// priority order.
func NewActivityOrder(kinds ...core.Kind) *ActivityOrder {
	o := &ActivityOrder{
		kindOrder: kinds,
		activity:  make(map[core.Kind][]float64),
		heaps:     make(map[core.Kind]*activityHeap),
		inc:       activityIncInit,
	}
	for _, k := range kinds {
		o.activity[k] = nil
		h := newActivityHeap(nil)
		o.heaps[k] = &h
	}
	return o
}

// OnVariableResize grows the activity slice and heap for kind k.
func (o *ActivityOrder) OnVariableResize(k core.Kind, n int) {
	act, ok := o.activity[k]
	if !ok {
		return
	}
	for len(act) < n {
		act = append(act, 0)
	}
	o.activity[k] = act
	h := newActivityHeap(o.activity[k])
	o.heaps[k] = &h
}

// Pick returns the highest-activity undefined variable, scanning kinds
// in priority order. MiniSat pops discard already-assigned ordinals
// permanently because it reinserts a variable the moment it becomes
// unassigned again; this order has no backtrack hook to do the same, so
// it pops candidates into a side buffer and reinserts all of them before
// returning, trading the O(1) amortized pop for an O(skipped) one.
func (o *ActivityOrder) Pick(db *core.Database, trail *core.Trail) (core.Variable, bool) {
	for _, k := range o.kindOrder {
		h := o.heaps[k]
		var skipped []int32
		var found core.Variable
		ok := false
		for !h.empty() {
			ord := h.removeMin()
			v := core.Variable{Kind: k, Ord: ord}
			if !trail.Defined(v) {
				found, ok = v, true
				break
			}
			skipped = append(skipped, ord)
		}
		for _, ord := range skipped {
			h.insert(ord)
		}
		if ok {
			h.insert(found.Ord)
			return found, true
		}
	}
	return core.Variable{}, false
}

// IsBefore orders by kind priority across kinds, then by higher decayed
// activity within a kind, with equal activity broken by lower ordinal.
func (o *ActivityOrder) IsBefore(a, b core.Variable) bool {
	if a.Kind != b.Kind {
		return o.kindIndex(a.Kind) < o.kindIndex(b.Kind)
	}
	act := o.activity[a.Kind]
	if int(a.Ord) >= len(act) || int(b.Ord) >= len(act) {
		return a.Ord < b.Ord
	}
	if act[a.Ord] != act[b.Ord] {
		return act[a.Ord] > act[b.Ord]
	}
	return a.Ord < b.Ord
}

func (o *ActivityOrder) kindIndex(k core.Kind) int {
	for i, kk := range o.kindOrder {
		if kk == k {
			return i
		}
	}
	return len(o.kindOrder)
}

// OnConflictResolved bumps the activity of every Boolean variable in the
// resolvent, the way MiniSat bumps every variable touched during
// conflict analysis.
func (o *ActivityOrder) OnConflictResolved(db *core.Database, trail *core.Trail, c *core.Clause) {
	act, ok := o.activity[core.KindBool]
	if !ok {
		return
	}
	for _, l := range c.Lits() {
		if int(l.Ord()) >= len(act) {
			continue
		}
		act[l.Ord()] += o.inc
		if act[l.Ord()] > activityRescale {
			for i := range act {
				act[i] /= activityRescale
			}
			o.inc /= activityRescale
		}
		o.heaps[core.KindBool].update(l.Ord())
	}
}

// OnLearnedClause decays the activity increment, making future bumps
// count for relatively more (MiniSat's var_decay).
func (o *ActivityOrder) OnLearnedClause(db *core.Database, trail *core.Trail, c *core.Clause) {
	o.inc *= activityDecay
}
