package lir

type Block struct {
	ID     BlockID
	Params []ValueID
	Instrs []Instr
	Term   Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
