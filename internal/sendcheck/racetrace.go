package sendcheck

import (
	"slices"

	"regionck/internal/lir"
	"regionck/internal/regions"
)

// localReasonKind classifies why an element is consumed at some point of a
// block, looking only at that block.
type localReasonKind uint8

const (
	// reasonLocalConsume: a consume op in this block did it.
	reasonLocalConsume localReasonKind = iota
	// reasonLocalImport: a merge or assign joined the element with an already
	// consumed region; blame continues through the merged-in element.
	reasonLocalImport
	// reasonNonLocal: consumed at block entry, never revived before use.
	reasonNonLocal
)

type localReason struct {
	kind localReasonKind
	op   regions.Op
	src  regions.Elt // reasonLocalImport: consumed element the op joined in
	at   int         // reasonLocalImport: op index of the import
	ok   bool        // reasonLocalImport: src was identified
}

// consumedReason collects the consume ops responsible for a consumption,
// each at the minimum dataflow distance found so far. Distance counts the
// cross-block joins and intra-join merge steps that had to chain for the
// consumption to propagate; smaller means more likely informative.
type consumedReason struct {
	dist map[regions.Op]int
}

func newConsumedReason() *consumedReason {
	return &consumedReason{dist: make(map[regions.Op]int)}
}

func (r *consumedReason) add(op regions.Op, d int) {
	if old, ok := r.dist[op]; !ok || d < old {
		r.dist[op] = d
	}
}

func (r *consumedReason) addAll(other *consumedReason, offset int) {
	for op, d := range other.dist {
		r.add(op, d+offset)
	}
}

// accumulator inverts consumedReasons: consume op -> require ops at their
// minimum distance. It feeds diagnostics directly.
type accumulator struct {
	reqs map[regions.Op]map[regions.Op]int
}

func newAccumulator() *accumulator {
	return &accumulator{reqs: make(map[regions.Op]map[regions.Op]int)}
}

func (a *accumulator) accumulate(useOp regions.Op, reason *consumedReason) {
	for op, d := range reason.dist {
		m := a.reqs[op]
		if m == nil {
			m = make(map[regions.Op]int)
			a.reqs[op] = m
		}
		if old, ok := m[useOp]; !ok || d < old {
			m[useOp] = d
		}
	}
}

// importedFrom identifies the element whose consumed region an op joined
// cid with: a co-member of cid after the op that was consumed already before
// it. The smallest such element wins, Members is sorted.
func importedFrom(before, after *regions.Partition, cid regions.Elt) (regions.Elt, bool) {
	for _, m := range after.Members(cid) {
		if m != cid && before.IsConsumed(m) {
			return m, true
		}
	}
	return 0, false
}

type reasonKey struct {
	block lir.BlockID
	elt   regions.Elt
}

// raceTracer attributes every use of a consumed region to the consume ops
// that could have caused it, searching backwards through the solved block
// states.
type raceTracer struct {
	c *checker

	entryReasons map[reasonKey]*consumedReason
	exitReasons  map[reasonKey]localReason

	acc *accumulator
}

func newRaceTracer(c *checker) *raceTracer {
	return &raceTracer{
		c:            c,
		entryReasons: make(map[reasonKey]*consumedReason),
		exitReasons:  make(map[reasonKey]localReason),
		acc:          newAccumulator(),
	}
}

// traceUse records that useOp (the op at index opIdx of its block) required
// cid while cid's region was consumed.
func (t *raceTracer) traceUse(bid lir.BlockID, opIdx int, useOp regions.Op, cid regions.Elt) {
	reason := newConsumedReason()
	t.findAndAdd(bid, cid, reason, 0, opIdx)
	t.acc.accumulate(useOp, reason)
}

// findAndAdd resolves why cid is consumed at the given point (before op
// stopAt, or at block exit when stopAt < 0) and adds the found consume ops
// to out at the given base distance.
func (t *raceTracer) findAndAdd(bid lir.BlockID, cid regions.Elt, out *consumedReason, distance, stopAt int) {
	local := t.findLocalReason(bid, cid, stopAt)
	switch local.kind {
	case reasonLocalConsume:
		out.add(local.op, distance)
	case reasonLocalImport:
		// The merge joined cid with a region consumed earlier; keep resolving
		// from the merged-in element at the point just before the import. The
		// import op sits strictly after whatever consumed src, so the chain
		// always moves backwards and terminates.
		if local.ok {
			t.findAndAdd(bid, local.src, out, distance+1, local.at)
		}
	case reasonNonLocal:
		out.addAll(t.findEntryReason(bid, cid), distance)
	}
}

// findLocalReason replays the block's ops from its entry partition looking
// for the op that leaves cid consumed at the stop point. If cid is consumed
// already at entry it is revived first: only local reasons count here.
// Exit-level queries (stopAt < 0) are cached.
func (t *raceTracer) findLocalReason(bid lir.BlockID, cid regions.Elt, stopAt int) localReason {
	key := reasonKey{block: bid, elt: cid}
	if stopAt < 0 {
		if r, ok := t.exitReasons[key]; ok {
			return r
		}
	}

	st := &t.c.states[bid]
	p := st.entry.Clone()
	if p.IsConsumed(cid) {
		p.Apply(regions.AssignFresh(cid, lir.NoInstrRef), nil)
	}

	var found *localReason
	for idx, op := range t.c.blockOps(bid) {
		if stopAt >= 0 && idx == stopAt {
			break
		}
		before := p.Clone()
		p.Apply(op, nil)
		if p.IsConsumed(cid) && found == nil {
			if op.Kind == regions.OpConsume {
				found = &localReason{kind: reasonLocalConsume, op: op}
			} else {
				found = &localReason{kind: reasonLocalImport, at: idx}
				found.src, found.ok = importedFrom(before, p, cid)
			}
		}
		if !p.IsConsumed(cid) && found != nil {
			// Revived by a reassignment; earlier reasons no longer apply.
			found = nil
		}
	}

	out := localReason{kind: reasonNonLocal}
	if found != nil {
		out = *found
	}
	if stopAt < 0 {
		t.exitReasons[key] = out
	}
	return out
}

// findEntryReason explains why cid is consumed at block entry: some
// predecessor consumed it (or consumed a value the entry join merges with
// it). Reachability over single-step join edges gives each contributing
// value a merge distance; crossing into a predecessor costs one more step.
//
// The memo entry is pre-seeded empty before the recursive walk so that CFG
// cycles bottom out instead of recursing forever; the final result then
// replaces the placeholder.
func (t *raceTracer) findEntryReason(bid lir.BlockID, cid regions.Elt) *consumedReason {
	key := reasonKey{block: bid, elt: cid}
	if r, ok := t.entryReasons[key]; ok {
		return r
	}
	t.entryReasons[key] = newConsumedReason()

	st := &t.c.states[bid]
	entryTracks := func(e regions.Elt) bool { return st.entry.Tracked(e) }

	// Elements consumed at the exit of some reached predecessor.
	consumedIn := make(map[regions.Elt][]lir.BlockID)
	// Single-step join edges: co-membership in a non-consumed region of some
	// predecessor's exit. Deliberately not transitively closed, the BFS
	// below counts how many steps a transitive merge needs.
	edges := make(map[regions.Elt]map[regions.Elt]struct{})

	for _, pred := range t.c.preds[bid] {
		ps := &t.c.states[pred]
		if !ps.reached || ps.exit == nil {
			continue
		}
		for _, e := range ps.exit.Elts() {
			if !entryTracks(e) {
				continue
			}
			if ps.exit.IsConsumed(e) {
				consumedIn[e] = append(consumedIn[e], pred)
				continue
			}
			for _, m := range ps.exit.Members(e) {
				if m == e || !entryTracks(m) {
					continue
				}
				if edges[e] == nil {
					edges[e] = make(map[regions.Elt]struct{})
				}
				edges[e][m] = struct{}{}
			}
		}
	}

	// BFS from cid over the join edges.
	dist := map[regions.Elt]int{cid: 0}
	queue := []regions.Elt{cid}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range edges[cur] {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}

	reached := make([]regions.Elt, 0, len(dist))
	for e := range dist {
		reached = append(reached, e)
	}
	slices.Sort(reached)

	reason := newConsumedReason()
	for _, e := range reached {
		for _, pred := range consumedIn[e] {
			t.findAndAdd(pred, e, reason, dist[e]+1, -1)
		}
	}
	t.entryReasons[key] = reason
	return reason
}
