package lir

import (
	"testing"

	"regionck/internal/source"
	"regionck/internal/types"
)

func TestAccessStorageStackSlot(t *testing.T) {
	in := types.NewInterner()
	intTy := in.Builtins().Int
	addr := in.Intern(types.MakeAddress(intTy))

	f := NewFunc("stack", in.Builtins().Unit, source.Span{})
	b := NewBuilder(f)
	b.NewBlock()
	slot := b.Emit1(InstrAllocStack, nil, addr, source.Span{})
	elem := b.EmitProjection(InstrTupleElementAddr, slot, 0, addr, source.Span{})
	access := b.Emit1(InstrBeginAccess, []ValueID{elem}, addr, source.Span{})
	b.Return(NoValueID, source.Span{})

	st := FindAccessStorage(f, access)
	if st.Root != slot {
		t.Errorf("expected root at alloc_stack v%d, got v%d", slot, st.Root)
	}
	if !st.UniquelyIdentified {
		t.Error("stack slot must be uniquely identified")
	}
}

func TestAccessStorageClassProperty(t *testing.T) {
	in := types.NewInterner()
	cache := in.RegisterNominal(types.NominalInfo{Name: "Cache", Reference: true})
	addr := in.Intern(types.MakeAddress(in.Builtins().Int))

	f := NewFunc("class", in.Builtins().Unit, source.Span{})
	b := NewBuilder(f)
	b.NewBlock()
	obj := b.AddParam(cache, "obj")
	field := b.EmitProjection(InstrRefElementAddr, obj, 2, addr, source.Span{})
	b.Return(NoValueID, source.Span{})

	st := FindAccessStorage(f, field)
	if st.Root != obj {
		t.Errorf("expected root at the reference v%d, got v%d", obj, st.Root)
	}
	if st.UniquelyIdentified {
		t.Error("class storage must not be uniquely identified")
	}
}

func TestAccessStorageArgumentAddress(t *testing.T) {
	in := types.NewInterner()
	addr := in.Intern(types.MakeAddress(in.Builtins().Int))

	f := NewFunc("arg", in.Builtins().Unit, source.Span{})
	b := NewBuilder(f)
	b.NewBlock()
	p := b.AddParam(addr, "inout")
	access := b.Emit1(InstrBeginAccess, []ValueID{p}, addr, source.Span{})
	b.Return(NoValueID, source.Span{})

	st := FindAccessStorage(f, access)
	if st.Root != p {
		t.Errorf("expected root at the parameter, got v%d", st.Root)
	}
	if st.UniquelyIdentified {
		t.Error("argument addresses may alias; must not be uniquely identified")
	}
}

func TestAccessStorageRawPointer(t *testing.T) {
	in := types.NewInterner()
	intTy := in.Builtins().Int
	addr := in.Intern(types.MakeAddress(intTy))

	f := NewFunc("raw", in.Builtins().Unit, source.Span{})
	b := NewBuilder(f)
	b.NewBlock()
	slot := b.Emit1(InstrAllocStack, nil, addr, source.Span{})
	ptr := b.Emit1(InstrAddressToPointer, []ValueID{slot}, in.Builtins().Uint, source.Span{})
	back := b.Emit1(InstrPointerToAddress, []ValueID{ptr}, addr, source.Span{})
	b.Return(NoValueID, source.Span{})

	st := FindAccessStorage(f, back)
	if st.Root != back {
		t.Errorf("pointer round-trip must stop the walk, got root v%d", st.Root)
	}
	if st.UniquelyIdentified {
		t.Error("storage behind a raw pointer must not be uniquely identified")
	}
}

func TestAccessStorageBox(t *testing.T) {
	in := types.NewInterner()
	cache := in.RegisterNominal(types.NominalInfo{Name: "Cache", Reference: true})
	boxTy := in.RegisterNominal(types.NominalInfo{Name: "Box", Reference: true})
	addr := in.Intern(types.MakeAddress(cache))

	f := NewFunc("box", in.Builtins().Unit, source.Span{})
	b := NewBuilder(f)
	b.NewBlock()
	box := b.Emit1(InstrAllocBox, nil, boxTy, source.Span{})
	payload := b.Emit1(InstrProjectBox, []ValueID{box}, addr, source.Span{})
	b.Return(NoValueID, source.Span{})

	st := FindAccessStorage(f, payload)
	if st.Root != box || !st.UniquelyIdentified {
		t.Errorf("box payload must root at the fresh box: %+v", st)
	}
}
