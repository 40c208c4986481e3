package lir

import (
	"fmt"

	"fortio.org/safecast"

	"regionck/internal/source"
	"regionck/internal/types"
)

// NewFunc creates an empty function with no blocks.
func NewFunc(name string, result types.TypeID, span source.Span) *Func {
	return &Func{
		Name:   name,
		Span:   span,
		Result: result,
		Entry:  NoBlockID,
	}
}

// Builder constructs function bodies block by block. It owns value numbering,
// so all values of a function must be created through the same builder.
type Builder struct {
	Fn  *Func
	cur BlockID
}

func NewBuilder(f *Func) *Builder {
	return &Builder{Fn: f, cur: NoBlockID}
}

// NewBlock appends a block and makes it current. The first block becomes the
// function entry.
func (b *Builder) NewBlock() BlockID {
	id := BlockID(len(b.Fn.Blocks))
	b.Fn.Blocks = append(b.Fn.Blocks, Block{ID: id})
	if b.Fn.Entry == NoBlockID {
		b.Fn.Entry = id
	}
	b.cur = id
	return id
}

// SetBlock positions the builder at an existing block.
func (b *Builder) SetBlock(id BlockID) {
	if b.Fn.Block(id) == nil {
		panic(fmt.Errorf("lir: SetBlock on unknown block bb%d", id))
	}
	b.cur = id
}

// Current returns the block the builder emits into.
func (b *Builder) Current() BlockID {
	return b.cur
}

func (b *Builder) addValue(v Value) ValueID {
	lenValues, err := safecast.Conv[int32](len(b.Fn.Values))
	if err != nil {
		panic(fmt.Errorf("len(values) overflow: %w", err))
	}
	v.ID = ValueID(lenValues)
	b.Fn.Values = append(b.Fn.Values, v)
	return v.ID
}

// AddParam appends a function parameter. Parameters live in the entry block.
func (b *Builder) AddParam(ty types.TypeID, name string) ValueID {
	idx, err := safecast.Conv[uint32](len(b.Fn.Params))
	if err != nil {
		panic(fmt.Errorf("len(params) overflow: %w", err))
	}
	id := b.addValue(Value{
		Kind:  ValueParam,
		Type:  ty,
		Name:  name,
		Def:   NoInstrRef,
		Block: b.Fn.Entry,
		Index: idx,
	})
	b.Fn.Params = append(b.Fn.Params, id)
	return id
}

// AddBlockParam appends a block parameter (phi) to the given block.
func (b *Builder) AddBlockParam(block BlockID, ty types.TypeID, name string) ValueID {
	bb := b.Fn.Block(block)
	if bb == nil {
		panic(fmt.Errorf("lir: AddBlockParam on unknown block bb%d", block))
	}
	idx, err := safecast.Conv[uint32](len(bb.Params))
	if err != nil {
		panic(fmt.Errorf("len(block params) overflow: %w", err))
	}
	id := b.addValue(Value{
		Kind:  ValueBlockParam,
		Type:  ty,
		Name:  name,
		Def:   NoInstrRef,
		Block: block,
		Index: idx,
	})
	bb.Params = append(bb.Params, id)
	return id
}

// emit appends the instruction to the current block and allocates result
// values of the given types.
func (b *Builder) emit(ins Instr, resultTypes []types.TypeID) []ValueID {
	bb := b.Fn.Block(b.cur)
	if bb == nil {
		panic("lir: emit without a current block")
	}
	if bb.Terminated() {
		panic(fmt.Errorf("lir: emit into terminated block bb%d", b.cur))
	}

	idx, err := safecast.Conv[int32](len(bb.Instrs))
	if err != nil {
		panic(fmt.Errorf("len(instrs) overflow: %w", err))
	}
	ref := InstrRef{Block: b.cur, Index: idx}

	results := make([]ValueID, 0, len(resultTypes))
	for i, ty := range resultTypes {
		resIdx, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("result index overflow: %w", err))
		}
		results = append(results, b.addValue(Value{
			Kind:  ValueResult,
			Type:  ty,
			Span:  ins.Span,
			Def:   ref,
			Block: b.cur,
			Index: resIdx,
		}))
	}
	ins.Results = results
	bb.Instrs = append(bb.Instrs, ins)
	return results
}

// Emit appends a generic instruction; returns its result values.
func (b *Builder) Emit(kind InstrKind, operands []ValueID, resultTypes []types.TypeID, span source.Span) []ValueID {
	return b.emit(Instr{Kind: kind, Operands: operands, Span: span}, resultTypes)
}

// Emit1 appends an instruction with exactly one result.
func (b *Builder) Emit1(kind InstrKind, operands []ValueID, resultType types.TypeID, span source.Span) ValueID {
	return b.Emit(kind, operands, []types.TypeID{resultType}, span)[0]
}

// Emit0 appends an instruction with no results.
func (b *Builder) Emit0(kind InstrKind, operands []ValueID, span source.Span) {
	b.Emit(kind, operands, nil, span)
}

// EmitLiteral materializes a constant.
func (b *Builder) EmitLiteral(c Const, ty types.TypeID, span source.Span) ValueID {
	return b.emit(Instr{Kind: InstrLiteral, Const: c, Span: span}, []types.TypeID{ty})[0]
}

// EmitFunctionRef yields a reference to a named function.
func (b *Builder) EmitFunctionRef(name string, ty types.TypeID, span source.Span) ValueID {
	return b.emit(Instr{
		Kind:   InstrFunctionRef,
		Callee: Callee{Kind: CalleeFunc, Name: name},
		Span:   span,
	}, []types.TypeID{ty})[0]
}

// EmitProjection appends a single-operand projection with an element index.
func (b *Builder) EmitProjection(kind InstrKind, operand ValueID, field uint32, ty types.TypeID, span source.Span) ValueID {
	return b.emit(Instr{
		Kind:     kind,
		Operands: []ValueID{operand},
		Field:    field,
		Span:     span,
	}, []types.TypeID{ty})[0]
}

// EmitApply appends a call. Pass types.NoTypeID as resultType for calls that
// produce no value.
func (b *Builder) EmitApply(callee Callee, crosses bool, args []ValueID, resultType types.TypeID, span source.Span) ValueID {
	ins := Instr{
		Kind:     InstrApply,
		Operands: args,
		Callee:   callee,
		Crosses:  crosses,
		Span:     span,
	}
	if resultType == types.NoTypeID {
		b.emit(ins, nil)
		return NoValueID
	}
	return b.emit(ins, []types.TypeID{resultType})[0]
}

// EmitPartialApply appends a closure capture.
func (b *Builder) EmitPartialApply(callee Callee, captures []ValueID, resultType types.TypeID, span source.Span) ValueID {
	return b.emit(Instr{
		Kind:     InstrPartialApply,
		Operands: captures,
		Callee:   callee,
		Span:     span,
	}, []types.TypeID{resultType})[0]
}

func (b *Builder) setTerm(t Terminator) {
	bb := b.Fn.Block(b.cur)
	if bb == nil {
		panic("lir: terminator without a current block")
	}
	if bb.Terminated() {
		panic(fmt.Errorf("lir: block bb%d already terminated", b.cur))
	}
	bb.Term = t
}

// Return terminates the current block with a return.
func (b *Builder) Return(value ValueID, span source.Span) {
	b.setTerm(Terminator{
		Kind:   TermReturn,
		Span:   span,
		Return: ReturnTerm{HasValue: value != NoValueID, Value: value},
	})
}

// Goto terminates the current block with an unconditional branch.
func (b *Builder) Goto(target BlockID, args []ValueID, span source.Span) {
	b.setTerm(Terminator{
		Kind: TermGoto,
		Span: span,
		Goto: GotoTerm{Target: target, Args: args},
	})
}

// If terminates the current block with a conditional branch.
func (b *Builder) If(cond ValueID, then BlockID, thenArgs []ValueID, els BlockID, elseArgs []ValueID, span source.Span) {
	b.setTerm(Terminator{
		Kind: TermIf,
		Span: span,
		If: IfTerm{
			Cond:     cond,
			Then:     then,
			ThenArgs: thenArgs,
			Else:     els,
			ElseArgs: elseArgs,
		},
	})
}

// Switch terminates the current block with an integer dispatch.
func (b *Builder) Switch(value ValueID, targets []BlockID, def BlockID, span source.Span) {
	b.setTerm(Terminator{
		Kind:   TermSwitch,
		Span:   span,
		Switch: SwitchTerm{Value: value, Targets: targets, Default: def},
	})
}

// Unreachable terminates the current block as unreachable.
func (b *Builder) Unreachable(span source.Span) {
	b.setTerm(Terminator{Kind: TermUnreachable, Span: span})
}
