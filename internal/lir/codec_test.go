package lir

import (
	"bytes"
	"testing"

	"regionck/internal/source"
	"regionck/internal/types"
)

func TestModuleRoundTrip(t *testing.T) {
	in := types.NewInterner()
	cache := in.RegisterNominal(types.NominalInfo{Name: "Cache", Reference: true})

	fs := source.NewFileSet()
	fid := fs.AddVirtual("main.sw", []byte("line one\nline two\n"))
	span := source.Span{File: fid, Start: 9, End: 12}

	m := NewModule("demo")
	m.Features = Features{DeferredThreadSafety: true, MarkerProtocol: true}

	f := NewFunc("spawnTask", in.Builtins().Unit, span)
	b := NewBuilder(f)
	b.NewBlock()
	obj := b.Emit1(InstrAllocRef, nil, cache, span)
	b.EmitApply(Callee{Kind: CalleeFunc, Name: "task"}, true, []ValueID{obj}, types.NoTypeID, span)
	b.Return(NoValueID, span)
	m.AddFunc(f)

	var buf bytes.Buffer
	if err := EncodeModule(&buf, m, in, fs); err != nil {
		t.Fatalf("encode: %v", err)
	}

	m2, in2, fs2, err := DecodeModule(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if m2.Name != "demo" || !m2.Features.DeferredThreadSafety || !m2.Features.MarkerProtocol {
		t.Errorf("module header mismatch: %+v", m2)
	}

	f2, ok := m2.Lookup("spawnTask")
	if !ok {
		t.Fatal("function index not rebuilt")
	}
	if len(f2.Blocks) != 1 || len(f2.Blocks[0].Instrs) != 2 {
		t.Fatalf("function body mismatch: %+v", f2)
	}
	apply := f2.Blocks[0].Instrs[1]
	if apply.Kind != InstrApply || !apply.Crosses || apply.Callee.Name != "task" {
		t.Errorf("apply not preserved: %+v", apply)
	}

	if !in2.IsThreadSafe(in2.Builtins().Int) {
		t.Error("rebuilt interner lost builtins")
	}
	if in2.IsThreadSafe(cache) {
		t.Error("rebuilt interner lost nominal safety flags")
	}

	// Spans stay resolvable through the indexed file set.
	start, _ := fs2.Resolve(apply.Span)
	if start.Line != 2 {
		t.Errorf("span resolution after round-trip: got line %d, want 2", start.Line)
	}
	if got := fs2.Get(apply.Span.File).GetLine(2); got != "" {
		t.Errorf("indexed files must not carry content, got %q", got)
	}
}
