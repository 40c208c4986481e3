package sendcheck

import (
	"regionck/internal/lir"
	"regionck/internal/regions"
)

// entrySeed builds the function-entry partition: all non-thread-safe
// arguments in one shared non-consumed region. The caller may alias any of
// them with any other, so they start equivalent. Argument elements are also
// marked non-consumable here.
func (c *checker) entrySeed() *regions.Partition {
	var elts []regions.Elt
	for _, p := range c.fn.Params {
		root := c.canonical(p)
		if c.threadSafe(root) {
			continue
		}
		e := c.reg.elt(root)
		c.reg.markArg(e)
		elts = append(elts, e)
	}
	return regions.EntryPartition(elts)
}

// solve runs the monotone fixpoint. Blocks are visited in program order on
// every sweep so the result is deterministic; a block is recomputed only
// while some predecessor's exit keeps changing. Failure hooks stay off
// during solving, findings are produced by the replay afterwards.
func (c *checker) solve() {
	entry := &c.states[c.fn.Entry]
	entry.entry = c.entrySeed()
	entry.needsUpdate = true

	for {
		changed := false
		for i := range c.states {
			st := &c.states[i]
			if !st.needsUpdate {
				continue
			}
			st.needsUpdate = false
			st.reached = true
			changed = true
			bid := lir.BlockID(i)

			if bid != c.fn.Entry {
				var parts []*regions.Partition
				for _, p := range c.preds[i] {
					if ps := &c.states[p]; ps.reached && ps.exit != nil {
						parts = append(parts, ps.exit)
					}
				}
				cand := regions.JoinAll(parts)
				if st.exit != nil && len(parts) > 0 && cand.Equal(st.entry) {
					continue
				}
				if c.entryHook != nil && st.entry != nil {
					c.entryHook(bid, st.entry, cand)
				}
				st.entry = cand
			}

			exit := st.entry.Clone()
			exit.ApplyAll(c.blockOps(bid), nil)
			if st.exit != nil && exit.Equal(st.exit) {
				continue
			}
			st.exit = exit
			for _, s := range c.fn.Blocks[i].Term.Successors(nil) {
				if s != lir.NoBlockID && int(s) < len(c.states) {
					c.states[s].needsUpdate = true
				}
			}
		}
		if !changed {
			return
		}
	}
}
