package regions

import "slices"

// Join computes the control-flow merge of two partitions.
//
// Two elements share a joined region iff they share a region in both inputs.
// Elements tracked on one side only stay tracked as singletons. An element's
// consumed bit is the OR over the inputs that track it; a joined region is
// consumed iff any member carries the bit.
//
// Join is the coarsest common refinement of the two equivalence relations,
// so entry partitions only ever get finer as more predecessors contribute.
func Join(p, q *Partition) *Partition {
	if p == nil {
		return q.Clone()
	}
	if q == nil {
		return p.Clone()
	}

	out := NewPartition()

	consumedAt := func(x Elt) bool {
		return p.IsConsumed(x) || q.IsConsumed(x)
	}

	// Elements tracked in both group by their (p-region, q-region) pair.
	type pair struct{ a, b Region }
	groups := make(map[pair][]Elt)
	var singles []Elt

	for _, e := range p.Elts() {
		rp := p.labels[e]
		if rq, ok := q.labels[e]; ok {
			k := pair{rp, rq}
			groups[k] = append(groups[k], e)
		} else {
			singles = append(singles, e)
		}
	}
	for _, e := range q.Elts() {
		if !p.Tracked(e) {
			singles = append(singles, e)
		}
	}

	// Deterministic region numbering: groups ordered by smallest member.
	grouped := make([][]Elt, 0, len(groups))
	for _, members := range groups {
		slices.Sort(members)
		grouped = append(grouped, members)
	}
	slices.SortFunc(grouped, func(a, b []Elt) int {
		if a[0] < b[0] {
			return -1
		}
		if a[0] > b[0] {
			return 1
		}
		return 0
	})

	for _, members := range grouped {
		r := out.newRegion()
		c := false
		for _, e := range members {
			out.labels[e] = r
			c = c || consumedAt(e)
		}
		out.consumed[r] = c
	}

	slices.Sort(singles)
	for _, e := range singles {
		r := out.newRegion()
		out.labels[e] = r
		out.consumed[r] = consumedAt(e)
	}

	return out
}

// JoinAll folds Join over all inputs; nil inputs are skipped. Returns an
// empty partition when nothing contributes.
func JoinAll(parts []*Partition) *Partition {
	var acc *Partition
	for _, p := range parts {
		if p == nil {
			continue
		}
		if acc == nil {
			acc = p.Clone()
			continue
		}
		acc = Join(acc, p)
	}
	if acc == nil {
		return NewPartition()
	}
	return acc
}
