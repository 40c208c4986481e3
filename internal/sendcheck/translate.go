package sendcheck

import (
	"fmt"
	"time"

	"regionck/internal/lir"
	"regionck/internal/regions"
	"regionck/internal/trace"
)

// blockOps returns the block's partition op list, translating it on first
// need. The cached list is replayed on every fixpoint iteration and again
// during race tracing.
func (c *checker) blockOps(bid lir.BlockID) []regions.Op {
	st := &c.states[bid]
	if st.opsReady {
		return st.ops
	}
	b := c.fn.Block(bid)
	var ops []regions.Op
	for i := range b.Instrs {
		ref := lir.InstrRef{Block: bid, Index: int32(i)}
		ops = c.translateInstr(ops, ref, &b.Instrs[i])
	}
	ops = c.translateTerm(ops, b)
	st.ops = ops
	st.opsReady = true
	return ops
}

func (c *checker) translateInstr(ops []regions.Op, ref lir.InstrRef, instr *lir.Instr) []regions.Op {
	switch instr.Kind {
	case lir.InstrAllocStack, lir.InstrAllocBox, lir.InstrAllocRef,
		lir.InstrLiteral, lir.InstrFunctionRef, lir.InstrMethodRef:
		// Fresh producers.
		res := instr.Results[0]
		if root := c.canonical(res); !c.threadSafe(root) {
			ops = append(ops, regions.AssignFresh(c.reg.elt(root), ref))
		}
		return ops

	case lir.InstrCopyValue, lir.InstrMoveValue,
		lir.InstrBeginBorrow, lir.InstrBeginAccess, lir.InstrLoad,
		lir.InstrUpcast, lir.InstrRefCast, lir.InstrConvertFunction,
		lir.InstrAddressToPointer, lir.InstrPointerToAddress,
		lir.InstrInitExistentialAddr, lir.InstrOpenExistentialAddr,
		lir.InstrStructExtract, lir.InstrTupleExtract,
		lir.InstrStructElementAddr, lir.InstrTupleElementAddr,
		lir.InstrRefElementAddr, lir.InstrRefTailAddr,
		lir.InstrProjectBox, lir.InstrIndexAddr:
		// Non-projecting single-operand assignments; self-assigns elide
		// inside translateAssign once both sides normalize to one root.
		return c.translateAssign(ops, instr.Results[0], instr.Operands[0], ref)

	case lir.InstrDestructureTuple:
		for _, res := range instr.Results {
			ops = c.translateAssign(ops, res, instr.Operands[0], ref)
		}
		return ops

	case lir.InstrStore, lir.InstrCopyAddr:
		return c.translateStore(ops, instr.Operands[1], instr.Operands[0], ref)

	case lir.InstrApply, lir.InstrPartialApply:
		return c.translateApply(ops, instr, ref)

	case lir.InstrNop,
		lir.InstrEndBorrow, lir.InstrEndAccess,
		lir.InstrDestroyValue, lir.InstrDestroyAddr,
		lir.InstrDeallocStack, lir.InstrDeallocBox,
		lir.InstrDebugValue, lir.InstrCondFail:
		return ops

	default:
		// Unknown kinds contribute no ops. This under-approximates: a racy
		// value flowing through such an instruction escapes tracking.
		c.traceUnhandled(instr)
		return ops
	}
}

func (c *checker) translateAssign(ops []regions.Op, dst, src lir.ValueID, ref lir.InstrRef) []regions.Op {
	d := c.canonical(dst)
	if c.threadSafe(d) {
		return ops
	}
	de := c.reg.elt(d)
	s := c.canonical(src)
	if c.threadSafe(s) {
		// Non-thread-safe value extracted from a thread-safe one (raw
		// bitcasts and the like): nothing to inherit, start a fresh region.
		return append(ops, regions.AssignFresh(de, ref))
	}
	se := c.reg.elt(s)
	if se == de {
		return ops
	}
	return append(ops, regions.Assign(de, se, ref))
}

func (c *checker) translateStore(ops []regions.Op, dst, src lir.ValueID, ref lir.InstrRef) []regions.Op {
	if c.uniquelyIdentified(dst) {
		// Write-through: the stored-into storage is fully rebound to the
		// source's region.
		return c.translateAssign(ops, dst, src, ref)
	}
	d := c.canonical(dst)
	s := c.canonical(src)
	if c.threadSafe(d) || c.threadSafe(s) {
		return ops
	}
	de, se := c.reg.elt(d), c.reg.elt(s)
	if de == se {
		return ops
	}
	return append(ops, regions.Merge(de, se, ref))
}

func (c *checker) translateApply(ops []regions.Op, instr *lir.Instr, ref lir.InstrRef) []regions.Op {
	var elts []regions.Elt
	collect := func(v lir.ValueID) {
		root := c.canonical(v)
		if c.threadSafe(root) {
			return
		}
		elts = append(elts, c.reg.elt(root))
	}
	if instr.Callee.Kind == lir.CalleeValue {
		collect(instr.Callee.Value)
	}
	for _, op := range instr.Operands {
		collect(op)
	}

	res := lir.NoValueID
	if len(instr.Results) > 0 {
		res = instr.Results[0]
	}
	resRoot := c.canonical(res)
	resTracked := res != lir.NoValueID && !c.threadSafe(resRoot)

	if instr.Crosses {
		// The call transfers every operand out of this isolation domain.
		// Its result is modeled as fresh: flagging non-thread-safe results
		// of crossing calls is a separate concern, and assigning them into
		// the consumed region would only cascade noise.
		for _, e := range elts {
			ops = append(ops, regions.Consume(e, ref))
		}
		if resTracked {
			ops = append(ops, regions.AssignFresh(c.reg.elt(resRoot), ref))
		}
		return ops
	}

	switch len(elts) {
	case 0:
		if resTracked {
			ops = append(ops, regions.AssignFresh(c.reg.elt(resRoot), ref))
		}
		return ops
	case 1:
		ops = append(ops, regions.Require(elts[0], ref))
	default:
		for i := 1; i < len(elts); i++ {
			ops = append(ops, regions.Merge(elts[i-1], elts[i], ref))
		}
	}
	if resTracked {
		ops = append(ops, regions.Assign(c.reg.elt(resRoot), elts[0], ref))
	}
	return ops
}

// translateTerm models terminators: returned values must not be in a
// consumed region, and branch arguments assign into the target's block
// parameters so that phis stay tracked across edges.
func (c *checker) translateTerm(ops []regions.Op, b *lir.Block) []regions.Op {
	ref := lir.InstrRef{Block: b.ID, Index: lir.TermIndex}
	switch b.Term.Kind {
	case lir.TermReturn:
		if b.Term.Return.HasValue {
			if root := c.canonical(b.Term.Return.Value); !c.threadSafe(root) {
				ops = append(ops, regions.Require(c.reg.elt(root), ref))
			}
		}
	case lir.TermGoto:
		ops = c.translateBranchArgs(ops, b.Term.Goto.Target, b.Term.Goto.Args, ref)
	case lir.TermIf:
		ops = c.translateBranchArgs(ops, b.Term.If.Then, b.Term.If.ThenArgs, ref)
		ops = c.translateBranchArgs(ops, b.Term.If.Else, b.Term.If.ElseArgs, ref)
	}
	return ops
}

func (c *checker) translateBranchArgs(ops []regions.Op, target lir.BlockID, args []lir.ValueID, ref lir.InstrRef) []regions.Op {
	tb := c.fn.Block(target)
	if tb == nil {
		return ops
	}
	for i, arg := range args {
		if i >= len(tb.Params) {
			break
		}
		ops = c.translateAssign(ops, tb.Params[i], arg, ref)
	}
	return ops
}

func (c *checker) traceUnhandled(instr *lir.Instr) {
	if c.tracer == nil || !c.tracer.Enabled() {
		return
	}
	c.tracer.Emit(&trace.Event{
		Time:   time.Now(),
		Seq:    trace.NextSeq(),
		Kind:   trace.KindPoint,
		Scope:  trace.ScopeOp,
		Name:   "unhandled_instr",
		Detail: fmt.Sprintf("%s: %s contributes no partition ops", c.fn.Name, instr.Kind),
	})
}
