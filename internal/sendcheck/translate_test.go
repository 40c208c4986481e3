package sendcheck

import (
	"testing"

	"regionck/internal/lir"
	"regionck/internal/regions"
	"regionck/internal/types"
)

// entryOps translates the entry block without solving.
func entryOps(e *env) (*checker, []regions.Op) {
	c := newChecker(e.fn, e.in, nil, Options{})
	c.markCaptured()
	return c, c.blockOps(e.fn.Entry)
}

// wantOps compares kinds and elements, ignoring origins.
func wantOps(t *testing.T, got []regions.Op, want ...regions.Op) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d ops %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].A != want[i].A || got[i].B != want[i].B {
			t.Errorf("op %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTranslateFreshProducers(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	a := e.allocCache("a")
	e.b.EmitLiteral(lir.Const{Kind: lir.ConstInt, IntValue: 7}, e.in.Builtins().Int, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops, regions.AssignFresh(e.elt(c, a), lir.NoInstrRef))
}

func TestTranslateFunctionRefOverride(t *testing.T) {
	e := newEnv(t)
	unsafeFn := e.in.Intern(types.MakeFunction(e.in.Builtins().Unit, false))
	e.b.NewBlock()
	e.b.EmitFunctionRef("task", unsafeFn, e.span())
	e.b.Return(lir.NoValueID, e.span())

	_, ops := entryOps(e)
	wantOps(t, ops)
}

func TestTranslateCopyElides(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	a := e.allocCache("a")
	e.b.Emit1(lir.InstrCopyValue, []lir.ValueID{a}, e.cacheT, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	// The copy shares a's canonical root, so only the alloc shows up.
	wantOps(t, ops, regions.AssignFresh(e.elt(c, a), lir.NoInstrRef))
}

func TestTranslateLoadAssigns(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	slot := e.allocSlot("s")
	ld := e.load(slot)
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, slot), lir.NoInstrRef),
		regions.Assign(e.elt(c, ld), e.elt(c, slot), lir.NoInstrRef),
	)
}

func TestTranslateStoreWriteThrough(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	slot := e.allocSlot("s")
	c0 := e.allocCache("c0")
	e.store(c0, slot)
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, slot), lir.NoInstrRef),
		regions.AssignFresh(e.elt(c, c0), lir.NoInstrRef),
		regions.Assign(e.elt(c, slot), e.elt(c, c0), lir.NoInstrRef),
	)
}

func TestTranslateStoreToCapturedMerges(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	slot := e.allocSlot("s")
	e.use(slot) // the call may retain the address
	c0 := e.allocCache("c0")
	e.store(c0, slot)
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, slot), lir.NoInstrRef),
		regions.Require(e.elt(c, slot), lir.NoInstrRef),
		regions.AssignFresh(e.elt(c, c0), lir.NoInstrRef),
		regions.Merge(e.elt(c, slot), e.elt(c, c0), lir.NoInstrRef),
	)
}

func TestTranslateCrossingCall(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	a := e.allocCache("a")
	b := e.allocCache("b")
	res := e.b.EmitApply(lir.Callee{Kind: lir.CalleeFunc, Name: "task"}, true,
		[]lir.ValueID{a, b}, e.cacheT, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, a), lir.NoInstrRef),
		regions.AssignFresh(e.elt(c, b), lir.NoInstrRef),
		regions.Consume(e.elt(c, a), lir.NoInstrRef),
		regions.Consume(e.elt(c, b), lir.NoInstrRef),
		regions.AssignFresh(e.elt(c, res), lir.NoInstrRef),
	)
}

func TestTranslateNonCrossingCalls(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	a := e.allocCache("a")
	b := e.allocCache("b")
	e.use(a)
	res := e.b.EmitApply(lir.Callee{Kind: lir.CalleeFunc, Name: "combine"}, false,
		[]lir.ValueID{a, b}, e.cacheT, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, a), lir.NoInstrRef),
		regions.AssignFresh(e.elt(c, b), lir.NoInstrRef),
		regions.Require(e.elt(c, a), lir.NoInstrRef),
		regions.Merge(e.elt(c, a), e.elt(c, b), lir.NoInstrRef),
		regions.Assign(e.elt(c, res), e.elt(c, a), lir.NoInstrRef),
	)
}

func TestTranslateReturnRequires(t *testing.T) {
	e := newEnv(t)
	e.fn.Result = e.cacheT
	e.b.NewBlock()
	a := e.allocCache("a")
	e.b.Return(a, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, a), lir.NoInstrRef),
		regions.Require(e.elt(c, a), lir.NoInstrRef),
	)
}

func TestTranslateDestructureTuple(t *testing.T) {
	e := newEnv(t)
	tupT := e.in.RegisterTuple([]types.TypeID{e.cacheT, e.in.Builtins().Int})
	e.b.NewBlock()
	tup := e.b.EmitApply(lir.Callee{Kind: lir.CalleeFunc, Name: "make"}, false, nil, tupT, e.span())
	results := e.b.Emit(lir.InstrDestructureTuple, []lir.ValueID{tup},
		[]types.TypeID{e.cacheT, e.in.Builtins().Int}, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	// Only the non-thread-safe element tracks; the int half is dropped.
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, tup), lir.NoInstrRef),
		regions.Assign(e.elt(c, results[0]), e.elt(c, tup), lir.NoInstrRef),
	)
}

func TestTranslateIgnoredAndUnknownKinds(t *testing.T) {
	e := newEnv(t)
	e.b.NewBlock()
	a := e.allocCache("a")
	e.b.Emit0(lir.InstrDestroyValue, []lir.ValueID{a}, e.span())
	e.b.Emit0(lir.InstrDebugValue, []lir.ValueID{a}, e.span())
	e.b.Emit0(lir.InstrKind(200), []lir.ValueID{a}, e.span())
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops, regions.AssignFresh(e.elt(c, a), lir.NoInstrRef))
}

func TestTranslateBranchArgs(t *testing.T) {
	e := newEnv(t)
	entry := e.b.NewBlock()
	next := e.b.NewBlock()
	p := e.b.AddBlockParam(next, e.cacheT, "p")

	e.b.SetBlock(entry)
	a := e.allocCache("a")
	e.b.Goto(next, []lir.ValueID{a}, e.span())
	e.b.SetBlock(next)
	e.b.Return(lir.NoValueID, e.span())

	c, ops := entryOps(e)
	wantOps(t, ops,
		regions.AssignFresh(e.elt(c, a), lir.NoInstrRef),
		regions.Assign(e.elt(c, p), e.elt(c, a), lir.NoInstrRef),
	)
}
