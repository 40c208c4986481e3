package sendcheck

import (
	"fmt"
	"time"

	"regionck/internal/lir"
	"regionck/internal/regions"
	"regionck/internal/trace"
)

// blockState is the per-block fixpoint record: the translated op list
// (computed once), the entry and exit partitions, and the worklist bits.
type blockState struct {
	ops      []regions.Op
	opsReady bool

	entry *regions.Partition
	exit  *regions.Partition

	reached     bool
	needsUpdate bool
}

// dumpStates emits one debug trace line per reached block with its entry and
// exit partitions and op count.
func (c *checker) dumpStates() {
	if c.tracer == nil || c.tracer.Level() < trace.LevelDebug {
		return
	}
	for i := range c.states {
		st := &c.states[i]
		if !st.reached {
			continue
		}
		c.tracer.Emit(&trace.Event{
			Time:  time.Now(),
			Seq:   trace.NextSeq(),
			Kind:  trace.KindPoint,
			Scope: trace.ScopeOp,
			Name:  "block_state",
			Detail: fmt.Sprintf("%s bb%d entry=%s exit=%s ops=%d",
				c.fn.Name, i, st.entry, st.exit, len(c.blockOps(lir.BlockID(i)))),
		})
	}
}
