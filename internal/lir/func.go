package lir

import (
	"regionck/internal/source"
	"regionck/internal/types"
)

type Func struct {
	ID   FuncID
	Name string
	Span source.Span

	Result types.TypeID

	Params []ValueID
	Values []Value
	Blocks []Block
	Entry  BlockID
}

// Value returns the value record for the given ID, or nil when out of range.
func (f *Func) Value(id ValueID) *Value {
	if id == NoValueID || int(id) >= len(f.Values) {
		return nil
	}
	return &f.Values[id]
}

// Block returns the block with the given ID, or nil when out of range.
func (f *Func) Block(id BlockID) *Block {
	if id == NoBlockID || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// InstrAt returns the instruction addressed by ref, or nil when ref points at
// a terminator or outside the function.
func (f *Func) InstrAt(ref InstrRef) *Instr {
	b := f.Block(ref.Block)
	if b == nil || ref.IsTerm() || int(ref.Index) >= len(b.Instrs) {
		return nil
	}
	return &b.Instrs[ref.Index]
}

// SpanAt resolves the source span of the instruction or terminator at ref.
func (f *Func) SpanAt(ref InstrRef) source.Span {
	b := f.Block(ref.Block)
	if b == nil {
		return source.Span{}
	}
	if ref.IsTerm() {
		return b.Term.Span
	}
	if int(ref.Index) >= len(b.Instrs) {
		return source.Span{}
	}
	return b.Instrs[ref.Index].Span
}

// Preds computes the predecessor lists for every block.
func (f *Func) Preds() [][]BlockID {
	preds := make([][]BlockID, len(f.Blocks))
	var succs []BlockID
	for i := range f.Blocks {
		succs = f.Blocks[i].Term.Successors(succs[:0])
		for _, s := range succs {
			if s != NoBlockID && int(s) < len(f.Blocks) {
				preds[s] = append(preds[s], f.Blocks[i].ID)
			}
		}
	}
	return preds
}
