package lir

import "regionck/internal/source"

type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermIf
	TermSwitch
	TermUnreachable
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermReturn:
		return "return"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermSwitch:
		return "switch"
	case TermUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

type Terminator struct {
	Kind TermKind
	Span source.Span

	Return      ReturnTerm
	Goto        GotoTerm
	If          IfTerm
	Switch      SwitchTerm
	Unreachable struct{}
}

type ReturnTerm struct {
	HasValue bool
	Value    ValueID
}

// GotoTerm passes Args to the target's block parameters.
type GotoTerm struct {
	Target BlockID
	Args   []ValueID
}

type IfTerm struct {
	Cond     ValueID
	Then     BlockID
	ThenArgs []ValueID
	Else     BlockID
	ElseArgs []ValueID
}

// SwitchTerm dispatches on an integer discriminator. Switch edges carry no
// block arguments.
type SwitchTerm struct {
	Value   ValueID
	Targets []BlockID
	Default BlockID
}

// Successors appends all successor block IDs to dst and returns it.
func (t *Terminator) Successors(dst []BlockID) []BlockID {
	switch t.Kind {
	case TermGoto:
		dst = append(dst, t.Goto.Target)
	case TermIf:
		dst = append(dst, t.If.Then, t.If.Else)
	case TermSwitch:
		dst = append(dst, t.Switch.Targets...)
		if t.Switch.Default != NoBlockID {
			dst = append(dst, t.Switch.Default)
		}
	}
	return dst
}
