package lir

import (
	"fmt"
	"io"
	"strings"

	"regionck/internal/types"
)

// DumpOptions configures LIR module dumping.
type DumpOptions struct{}

// DumpModule writes a human-readable representation of a LIR module.
func DumpModule(w io.Writer, m *Module, typesIn *types.Interner, _ DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}

	fmt.Fprintf(w, "module %s funcs=%d\n", m.Name, len(m.Funcs))
	if m.Features.DeferredThreadSafety {
		fmt.Fprintf(w, "  feature deferred-thread-safety-checking\n")
	}
	if m.Features.MarkerProtocol {
		fmt.Fprintf(w, "  feature thread-safety-marker\n")
	}

	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := dumpFunc(w, f, typesIn); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunc(w io.Writer, f *Func, typesIn *types.Interner) error {
	if w == nil || f == nil {
		return nil
	}
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, fmt.Sprintf("v%d: %s", p, typeStr(typesIn, f.Values[p].Type)))
	}
	fmt.Fprintf(w, "\nfn %s(%s) -> %s:\n", f.Name, strings.Join(params, ", "), typeStr(typesIn, f.Result))

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if len(bb.Params) > 0 {
			fmt.Fprintf(w, "  bb%d(%s):\n", bb.ID, valueList(bb.Params))
		} else {
			fmt.Fprintf(w, "  bb%d:\n", bb.ID)
		}
		for j := range bb.Instrs {
			fmt.Fprintf(w, "    %s\n", formatInstr(&bb.Instrs[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}
	return nil
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil {
		return fmt.Sprintf("t%d", id)
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case types.KindNominal:
		if info, ok := typesIn.NominalInfo(id); ok {
			return info.Name
		}
	case types.KindAddress:
		return "*" + typeStr(typesIn, tt.Elem)
	case types.KindArray:
		return "[]" + typeStr(typesIn, tt.Elem)
	case types.KindTuple:
		if info, ok := typesIn.TupleInfo(id); ok {
			elems := make([]string, 0, len(info.Elems))
			for _, e := range info.Elems {
				elems = append(elems, typeStr(typesIn, e))
			}
			return "(" + strings.Join(elems, ", ") + ")"
		}
	}
	return tt.Kind.String()
}

func valueList(ids []ValueID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == NoValueID {
			parts = append(parts, "_")
			continue
		}
		parts = append(parts, fmt.Sprintf("v%d", id))
	}
	return strings.Join(parts, ", ")
}

func formatInstr(ins *Instr) string {
	var b strings.Builder
	if len(ins.Results) > 0 {
		fmt.Fprintf(&b, "%s = ", valueList(ins.Results))
	}
	b.WriteString(ins.Kind.String())

	switch ins.Kind {
	case InstrLiteral:
		fmt.Fprintf(&b, " %s", formatConst(ins.Const))
	case InstrFunctionRef, InstrMethodRef:
		fmt.Fprintf(&b, " @%s", ins.Callee.Name)
	case InstrApply, InstrPartialApply:
		if ins.Callee.Kind == CalleeFunc {
			fmt.Fprintf(&b, " @%s", ins.Callee.Name)
		} else {
			fmt.Fprintf(&b, " v%d", ins.Callee.Value)
		}
		fmt.Fprintf(&b, "(%s)", valueList(ins.Operands))
		if ins.Crosses {
			b.WriteString(" crosses")
		}
		return b.String()
	case InstrStructExtract, InstrTupleExtract,
		InstrStructElementAddr, InstrTupleElementAddr,
		InstrRefElementAddr:
		fmt.Fprintf(&b, " v%d #%d", ins.Operands[0], ins.Field)
		return b.String()
	case InstrStore, InstrCopyAddr:
		fmt.Fprintf(&b, " v%d to v%d", ins.Operands[0], ins.Operands[1])
		return b.String()
	}

	if len(ins.Operands) > 0 {
		fmt.Fprintf(&b, " %s", valueList(ins.Operands))
	}
	return b.String()
}

func formatConst(c Const) string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.IntValue)
	case ConstUint:
		return fmt.Sprintf("%du", c.UintValue)
	case ConstFloat:
		return fmt.Sprintf("%g", c.FloatValue)
	case ConstBool:
		return fmt.Sprintf("%t", c.BoolValue)
	case ConstString:
		return fmt.Sprintf("%q", c.StringValue)
	case ConstUnit:
		return "()"
	default:
		return "?"
	}
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return fmt.Sprintf("return v%d", t.Return.Value)
		}
		return "return"
	case TermGoto:
		if len(t.Goto.Args) > 0 {
			return fmt.Sprintf("goto bb%d(%s)", t.Goto.Target, valueList(t.Goto.Args))
		}
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if v%d then bb%d(%s) else bb%d(%s)",
			t.If.Cond, t.If.Then, valueList(t.If.ThenArgs), t.If.Else, valueList(t.If.ElseArgs))
	case TermSwitch:
		var cases []string
		for i, target := range t.Switch.Targets {
			cases = append(cases, fmt.Sprintf("%d: bb%d", i, target))
		}
		if t.Switch.Default != NoBlockID {
			cases = append(cases, fmt.Sprintf("default: bb%d", t.Switch.Default))
		}
		return fmt.Sprintf("switch v%d [%s]", t.Switch.Value, strings.Join(cases, ", "))
	case TermUnreachable:
		return "unreachable"
	default:
		return "<unterminated>"
	}
}
