package lir

import (
	"regionck/internal/source"
	"regionck/internal/types"
)

// ValueKind distinguishes how a value is introduced.
type ValueKind uint8

const (
	// ValueParam represents a function parameter.
	ValueParam ValueKind = iota
	// ValueBlockParam represents a block parameter (phi).
	ValueBlockParam
	// ValueResult represents an instruction result.
	ValueResult
)

func (k ValueKind) String() string {
	switch k {
	case ValueParam:
		return "param"
	case ValueBlockParam:
		return "blockparam"
	case ValueResult:
		return "result"
	default:
		return "unknown"
	}
}

// Value describes a single SSA value of a function.
type Value struct {
	ID   ValueID
	Kind ValueKind
	Type types.TypeID
	Name string
	Span source.Span

	// Def locates the defining instruction for ValueResult values.
	Def InstrRef
	// Block is the owning block for block parameters.
	Block BlockID
	// Index is the parameter position or the result position within Def.
	Index uint32
}
