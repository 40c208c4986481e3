package sendcheck

import (
	"regionck/internal/lir"
	"regionck/internal/types"
)

// canonical maps a value to the root value it stands for, so that aliases of
// the same storage share one tracked element.
//
// Non-address values peel identity-preserving wrappers (copies, borrows,
// reference casts). Address values resolve through their access storage; an
// address rooted in existential initialization or a value copy follows the
// source operand instead. Results are memoized for the function's lifetime.
func (c *checker) canonical(v lir.ValueID) lir.ValueID {
	if v == lir.NoValueID {
		return v
	}
	if r, ok := c.canon[v]; ok {
		return r
	}
	// Self entry guards against def chains malformed into a cycle.
	c.canon[v] = v
	r := c.resolveCanonical(v)
	c.canon[v] = r
	return r
}

func (c *checker) resolveCanonical(v lir.ValueID) lir.ValueID {
	val := c.fn.Value(v)
	if val == nil {
		return v
	}

	if c.isAddress(val.Type) {
		st := lir.FindAccessStorage(c.fn, v)
		if root := c.fn.Value(st.Root); root != nil && root.Kind == lir.ValueResult {
			if def := c.fn.InstrAt(root.Def); def != nil && len(def.Operands) > 0 {
				switch def.Kind {
				case lir.InstrInitExistentialAddr, lir.InstrCopyValue:
					return c.canonical(def.Operands[0])
				}
			}
		}
		if st.Root != v {
			return c.canonical(st.Root)
		}
		return v
	}

	if val.Kind == lir.ValueResult {
		if def := c.fn.InstrAt(val.Def); def != nil && len(def.Operands) > 0 {
			switch def.Kind {
			case lir.InstrCopyValue, lir.InstrMoveValue, lir.InstrBeginBorrow,
				lir.InstrUpcast, lir.InstrRefCast, lir.InstrConvertFunction:
				return c.canonical(def.Operands[0])
			}
		}
	}
	return v
}

func (c *checker) isAddress(t types.TypeID) bool {
	tt, ok := c.types.Lookup(t)
	return ok && tt.Kind == types.KindAddress
}

// threadSafe is the value-level safety oracle. Function and method references
// are always safe regardless of their declared type; everything else defers
// to the type interner.
func (c *checker) threadSafe(v lir.ValueID) bool {
	val := c.fn.Value(v)
	if val == nil {
		return true
	}
	if val.Kind == lir.ValueResult {
		if def := c.fn.InstrAt(val.Def); def != nil {
			switch def.Kind {
			case lir.InstrFunctionRef, lir.InstrMethodRef:
				return true
			}
		}
	}
	return c.types.IsThreadSafe(val.Type)
}

// uniquelyIdentified reports whether stores through the address may rebind
// its storage's region outright. Storage captured by any call loses this:
// the callee may retain the address, so later stores have to merge instead.
func (c *checker) uniquelyIdentified(v lir.ValueID) bool {
	val := c.fn.Value(v)
	if val == nil || !c.isAddress(val.Type) {
		return false
	}
	st := lir.FindAccessStorage(c.fn, v)
	if !st.UniquelyIdentified {
		return false
	}
	_, captured := c.captured[c.canonical(v)]
	return !captured
}

// markCaptured records every non-thread-safe uniquely-identified address
// passed to a call. Runs once before translation; the set never shrinks.
func (c *checker) markCaptured() {
	for bi := range c.fn.Blocks {
		b := &c.fn.Blocks[bi]
		for ii := range b.Instrs {
			instr := &b.Instrs[ii]
			switch instr.Kind {
			case lir.InstrApply, lir.InstrPartialApply:
			default:
				continue
			}
			for _, op := range instr.Operands {
				root := c.canonical(op)
				if c.threadSafe(root) {
					continue
				}
				val := c.fn.Value(op)
				if val == nil || !c.isAddress(val.Type) {
					continue
				}
				if st := lir.FindAccessStorage(c.fn, op); st.UniquelyIdentified {
					c.captured[root] = struct{}{}
				}
			}
		}
	}
}
