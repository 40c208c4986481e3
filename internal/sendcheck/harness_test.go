package sendcheck

import (
	"bytes"
	"testing"

	"regionck/internal/diag"
	"regionck/internal/lir"
	"regionck/internal/regions"
	"regionck/internal/source"
	"regionck/internal/types"
)

// env builds synthetic LIR functions for checker tests: one non-thread-safe
// reference type ("Cache") plus builtins.
type env struct {
	t   *testing.T
	in  *types.Interner
	fs  *source.FileSet
	fid source.FileID
	fn  *lir.Func
	b   *lir.Builder
	off uint32

	cacheT types.TypeID
	addrT  types.TypeID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	in := types.NewInterner()
	cacheT := in.RegisterNominal(types.NominalInfo{Name: "Cache", Reference: true})
	addrT := in.Intern(types.MakeAddress(cacheT))
	fs := source.NewFileSet()
	fid := fs.AddVirtual("races.sw", bytes.Repeat([]byte{'x'}, 4096))
	fn := lir.NewFunc("worker", in.Builtins().Unit, source.Span{File: fid})
	return &env{
		t:      t,
		in:     in,
		fs:     fs,
		fid:    fid,
		fn:     fn,
		b:      lir.NewBuilder(fn),
		cacheT: cacheT,
		addrT:  addrT,
	}
}

// span hands out a distinct location per emitted instruction so diagnostics
// order deterministically.
func (e *env) span() source.Span {
	s := source.Span{File: e.fid, Start: e.off, End: e.off + 1}
	e.off += 2
	return s
}

func (e *env) allocCache(name string) lir.ValueID {
	v := e.b.Emit1(lir.InstrAllocRef, nil, e.cacheT, e.span())
	if name != "" {
		e.fn.Values[v].Name = name
	}
	return v
}

func (e *env) allocSlot(name string) lir.ValueID {
	v := e.b.Emit1(lir.InstrAllocStack, nil, e.addrT, e.span())
	if name != "" {
		e.fn.Values[v].Name = name
	}
	return v
}

func (e *env) boolLit() lir.ValueID {
	return e.b.EmitLiteral(lir.Const{Kind: lir.ConstBool, BoolValue: true}, e.in.Builtins().Bool, e.span())
}

// crossing models a call into another isolation domain.
func (e *env) crossing(args ...lir.ValueID) {
	e.b.EmitApply(lir.Callee{Kind: lir.CalleeFunc, Name: "task"}, true, args, types.NoTypeID, e.span())
}

// use models an ordinary same-domain call on one value.
func (e *env) use(v lir.ValueID) {
	e.b.EmitApply(lir.Callee{Kind: lir.CalleeFunc, Name: "touch"}, false, []lir.ValueID{v}, types.NoTypeID, e.span())
}

func (e *env) store(src, dst lir.ValueID) {
	e.b.Emit0(lir.InstrStore, []lir.ValueID{src, dst}, e.span())
}

func (e *env) load(slot lir.ValueID) lir.ValueID {
	return e.b.Emit1(lir.InstrLoad, []lir.ValueID{slot}, e.cacheT, e.span())
}

func (e *env) check() *diag.Bag {
	e.t.Helper()
	bag := diag.NewBag(128)
	CheckFunc(e.fn, e.in, diag.BagReporter{Bag: bag}, Options{})
	return bag
}

// solved runs the pre-diagnosis phases and returns the checker for
// inspecting internal state.
func (e *env) solved() *checker {
	e.t.Helper()
	c := newChecker(e.fn, e.in, nil, Options{})
	c.markCaptured()
	c.solve()
	return c
}

func (e *env) elt(c *checker, v lir.ValueID) regions.Elt {
	e.t.Helper()
	el, ok := c.reg.lookup(c.canonical(v))
	if !ok {
		e.t.Fatalf("value v%d was never registered", v)
	}
	return el
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}
