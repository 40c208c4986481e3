package lir

import (
	"errors"
	"fmt"

	"regionck/internal/types"
)

// arity bounds per instruction kind. resMax == -1 means unbounded.
type signature struct {
	opMin, opMax   int
	resMin, resMax int
}

var signatures = map[InstrKind]signature{
	InstrNop:                 {0, 0, 0, 0},
	InstrAllocStack:          {0, 0, 1, 1},
	InstrAllocBox:            {0, 0, 1, 1},
	InstrAllocRef:            {0, 0, 1, 1},
	InstrLiteral:             {0, 0, 1, 1},
	InstrFunctionRef:         {0, 0, 1, 1},
	InstrMethodRef:           {0, 1, 1, 1},
	InstrCopyValue:           {1, 1, 1, 1},
	InstrMoveValue:           {1, 1, 1, 1},
	InstrBeginBorrow:         {1, 1, 1, 1},
	InstrBeginAccess:         {1, 1, 1, 1},
	InstrLoad:                {1, 1, 1, 1},
	InstrUpcast:              {1, 1, 1, 1},
	InstrRefCast:             {1, 1, 1, 1},
	InstrConvertFunction:     {1, 1, 1, 1},
	InstrAddressToPointer:    {1, 1, 1, 1},
	InstrPointerToAddress:    {1, 1, 1, 1},
	InstrInitExistentialAddr: {1, 1, 1, 1},
	InstrOpenExistentialAddr: {1, 1, 1, 1},
	InstrStructExtract:       {1, 1, 1, 1},
	InstrTupleExtract:        {1, 1, 1, 1},
	InstrStructElementAddr:   {1, 1, 1, 1},
	InstrTupleElementAddr:    {1, 1, 1, 1},
	InstrRefElementAddr:      {1, 1, 1, 1},
	InstrRefTailAddr:         {1, 1, 1, 1},
	InstrProjectBox:          {1, 1, 1, 1},
	InstrIndexAddr:           {2, 2, 1, 1},
	InstrDestructureTuple:    {1, 1, 1, -1},
	InstrStore:               {2, 2, 0, 0},
	InstrCopyAddr:            {2, 2, 0, 0},
	InstrApply:               {0, -1, 0, 1},
	InstrPartialApply:        {0, -1, 1, 1},
	InstrEndBorrow:           {1, 1, 0, 0},
	InstrEndAccess:           {1, 1, 0, 0},
	InstrDestroyValue:        {1, 1, 0, 0},
	InstrDestroyAddr:         {1, 1, 0, 0},
	InstrDeallocStack:        {1, 1, 0, 0},
	InstrDeallocBox:          {1, 1, 0, 0},
	InstrDebugValue:          {1, 1, 0, 0},
	InstrCondFail:            {1, 1, 0, 0},
}

// Validate checks LIR module invariants.
// Returns error if any invariant is violated.
func Validate(m *Module, typesIn *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(f, typesIn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(f *Func, typesIn *types.Interner) error {
	if f == nil {
		return nil
	}

	var errs []error

	if len(f.Blocks) == 0 {
		return errors.New("function has no blocks")
	}
	if f.Block(f.Entry) == nil {
		errs = append(errs, fmt.Errorf("entry block bb%d does not exist", f.Entry))
	}

	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateValues(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateArity(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTypes(f, typesIn); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if f.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that branch targets exist and branch argument
// counts match the target's block parameters.
func validateBlockTargets(f *Func) error {
	var errs []error

	blockExists := func(id BlockID) bool {
		return id >= 0 && int(id) < len(f.Blocks)
	}

	checkEdge := func(from int, target BlockID, args []ValueID, what string) {
		if !blockExists(target) {
			errs = append(errs, fmt.Errorf("bb%d: %s target bb%d does not exist", from, what, target))
			return
		}
		want := len(f.Blocks[target].Params)
		if len(args) != want {
			errs = append(errs, fmt.Errorf("bb%d: %s passes %d args, bb%d expects %d",
				from, what, len(args), target, want))
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermGoto:
			checkEdge(i, bb.Term.Goto.Target, bb.Term.Goto.Args, "goto")
		case TermIf:
			checkEdge(i, bb.Term.If.Then, bb.Term.If.ThenArgs, "if then")
			checkEdge(i, bb.Term.If.Else, bb.Term.If.ElseArgs, "if else")
		case TermSwitch:
			for j, target := range bb.Term.Switch.Targets {
				if !blockExists(target) {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d target bb%d does not exist", i, j, target))
					continue
				}
				if len(f.Blocks[target].Params) != 0 {
					errs = append(errs, fmt.Errorf("bb%d: switch case %d targets bb%d which expects block args", i, j, target))
				}
			}
			if bb.Term.Switch.Default != NoBlockID && !blockExists(bb.Term.Switch.Default) {
				errs = append(errs, fmt.Errorf("bb%d: switch default target bb%d does not exist", i, bb.Term.Switch.Default))
			}
		}
	}
	return errors.Join(errs...)
}

// validateValues checks that every ValueID reference is in range and that
// each value's Def record points back at the instruction defining it.
func validateValues(f *Func) error {
	var errs []error

	valueExists := func(id ValueID) bool {
		return id >= 0 && int(id) < len(f.Values)
	}

	checkUse := func(id ValueID, context string) {
		if id != NoValueID && !valueExists(id) {
			errs = append(errs, fmt.Errorf("%s: value v%d does not exist", context, id))
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for _, p := range bb.Params {
			ctx := fmt.Sprintf("bb%d params", i)
			checkUse(p, ctx)
			if valueExists(p) && f.Values[p].Kind == ValueResult {
				errs = append(errs, fmt.Errorf("%s: v%d is an instruction result", ctx, p))
			}
		}

		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			ctx := fmt.Sprintf("bb%d instr %d (%s)", i, j, ins.Kind)
			for _, op := range ins.Operands {
				checkUse(op, ctx)
			}
			if ins.Kind == InstrApply || ins.Kind == InstrPartialApply {
				if ins.Callee.Kind == CalleeValue {
					checkUse(ins.Callee.Value, ctx)
				}
			}
			for ri, res := range ins.Results {
				checkUse(res, ctx)
				if !valueExists(res) {
					continue
				}
				v := &f.Values[res]
				want := InstrRef{Block: bb.ID, Index: int32(j)}
				if v.Kind != ValueResult || v.Def != want || int(v.Index) != ri {
					errs = append(errs, fmt.Errorf("%s: result v%d has inconsistent def record", ctx, res))
				}
			}
		}

		ctx := fmt.Sprintf("bb%d terminator", i)
		switch bb.Term.Kind {
		case TermReturn:
			if bb.Term.Return.HasValue {
				checkUse(bb.Term.Return.Value, ctx)
			}
		case TermGoto:
			for _, a := range bb.Term.Goto.Args {
				checkUse(a, ctx)
			}
		case TermIf:
			checkUse(bb.Term.If.Cond, ctx)
			for _, a := range bb.Term.If.ThenArgs {
				checkUse(a, ctx)
			}
			for _, a := range bb.Term.If.ElseArgs {
				checkUse(a, ctx)
			}
		case TermSwitch:
			checkUse(bb.Term.Switch.Value, ctx)
		}
	}

	return errors.Join(errs...)
}

// validateArity checks per-kind operand and result counts.
func validateArity(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			ins := &bb.Instrs[j]
			sig, ok := signatures[ins.Kind]
			if !ok {
				// Unknown kinds are tolerated: the analysis skips them.
				continue
			}
			ctx := fmt.Sprintf("bb%d instr %d (%s)", i, j, ins.Kind)
			if n := len(ins.Operands); n < sig.opMin || (sig.opMax >= 0 && n > sig.opMax) {
				errs = append(errs, fmt.Errorf("%s: %d operands", ctx, n))
			}
			if n := len(ins.Results); n < sig.resMin || (sig.resMax >= 0 && n > sig.resMax) {
				errs = append(errs, fmt.Errorf("%s: %d results", ctx, n))
			}
		}
	}
	return errors.Join(errs...)
}

// validateTypes checks that every value carries a resolved type.
func validateTypes(f *Func, typesIn *types.Interner) error {
	if typesIn == nil {
		return nil
	}
	var errs []error
	for i := range f.Values {
		v := &f.Values[i]
		if v.Type == types.NoTypeID {
			errs = append(errs, fmt.Errorf("value v%d (%s): unknown type", i, v.Name))
			continue
		}
		if _, ok := typesIn.Lookup(v.Type); !ok {
			errs = append(errs, fmt.Errorf("value v%d (%s): type %d not interned", i, v.Name, v.Type))
		}
	}
	return errors.Join(errs...)
}
