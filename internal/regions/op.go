// Package regions implements the partition abstract domain of the region
// analysis: value IDs grouped into equivalence classes ("regions"), each
// region carrying a consumed flag, with a small op vocabulary driving the
// transition function.
package regions

import (
	"fmt"

	"regionck/internal/lir"
)

// Elt is a dense identifier for a tracked value within one function.
// Zero is a valid Elt.
type Elt uint32

// Region is an opaque region label. Labels have no meaning across
// partitions; equality is decided by canonical relabeling.
type Region uint32

// OpKind enumerates the partition op vocabulary.
type OpKind uint8

const (
	// OpAssignFresh places an element alone in a brand-new region.
	OpAssignFresh OpKind = iota
	// OpAssign rebinds dst into src's region.
	OpAssign
	// OpMerge unions two regions.
	OpMerge
	// OpConsume marks an element's region as consumed.
	OpConsume
	// OpRequire fails iff the element's region is consumed.
	OpRequire
)

func (k OpKind) String() string {
	switch k {
	case OpAssignFresh:
		return "assign_fresh"
	case OpAssign:
		return "assign"
	case OpMerge:
		return "merge"
	case OpConsume:
		return "consume"
	case OpRequire:
		return "require"
	default:
		return "unknown"
	}
}

// Op is one partition operation. Origin addresses the LIR instruction the op
// was translated from; it is used for source locations and op identity only.
type Op struct {
	Kind   OpKind
	A, B   Elt
	Origin lir.InstrRef
}

func AssignFresh(x Elt, origin lir.InstrRef) Op {
	return Op{Kind: OpAssignFresh, A: x, Origin: origin}
}

func Assign(dst, src Elt, origin lir.InstrRef) Op {
	return Op{Kind: OpAssign, A: dst, B: src, Origin: origin}
}

func Merge(a, b Elt, origin lir.InstrRef) Op {
	return Op{Kind: OpMerge, A: a, B: b, Origin: origin}
}

func Consume(x Elt, origin lir.InstrRef) Op {
	return Op{Kind: OpConsume, A: x, Origin: origin}
}

func Require(x Elt, origin lir.InstrRef) Op {
	return Op{Kind: OpRequire, A: x, Origin: origin}
}

func (op Op) String() string {
	switch op.Kind {
	case OpAssign, OpMerge:
		return fmt.Sprintf("%s(%d, %d)", op.Kind, op.A, op.B)
	default:
		return fmt.Sprintf("%s(%d)", op.Kind, op.A)
	}
}
