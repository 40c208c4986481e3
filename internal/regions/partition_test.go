package regions

import (
	"testing"

	"regionck/internal/lir"
)

func origin() lir.InstrRef {
	return lir.InstrRef{Block: 0, Index: 0}
}

func TestAssignFreshIdempotent(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	once := p.Clone()
	p.Apply(AssignFresh(0, origin()), nil)
	if !p.Equal(once) {
		t.Fatalf("double assign_fresh differs: %s vs %s", p, once)
	}
}

func TestAssignIdempotent(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(AssignFresh(1, origin()), nil)
	p.Apply(Assign(1, 0, origin()), nil)
	once := p.Clone()
	p.Apply(Assign(1, 0, origin()), nil)
	if !p.Equal(once) {
		t.Fatalf("double assign differs: %s vs %s", p, once)
	}
	if r0, _ := p.RegionOf(0); !p.Tracked(1) || p.labels[1] != r0 {
		t.Errorf("assign must co-locate dst with src: %s", p)
	}
}

func TestMergeSymmetric(t *testing.T) {
	build := func(first, second Elt) *Partition {
		p := NewPartition()
		p.Apply(AssignFresh(0, origin()), nil)
		p.Apply(AssignFresh(1, origin()), nil)
		p.Apply(Merge(first, second, origin()), nil)
		return p
	}
	if ab, ba := build(0, 1), build(1, 0); !ab.Equal(ba) {
		t.Fatalf("merge not symmetric: %s vs %s", ab, ba)
	}
}

func TestMergeConsumedFlagOrs(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(AssignFresh(1, origin()), nil)
	p.Apply(Consume(0, origin()), nil)
	p.Apply(Merge(0, 1, origin()), nil)
	if !p.IsConsumed(1) {
		t.Fatalf("merged region must inherit consumption: %s", p)
	}
}

func TestConsumeThenFreshRevives(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(AssignFresh(1, origin()), nil)
	p.Apply(Merge(0, 1, origin()), nil)
	p.Apply(Consume(0, origin()), nil)
	p.Apply(AssignFresh(0, origin()), nil)

	if p.IsConsumed(0) {
		t.Error("assign_fresh must revive the element")
	}
	if !p.IsConsumed(1) {
		t.Error("the old region stays consumed for remaining members")
	}
}

func TestAssignFromUntrackedBecomesFresh(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(Consume(0, origin()), nil)
	p.Apply(Assign(0, 7, origin()), nil) // 7 never tracked

	if !p.Tracked(0) || p.IsConsumed(0) {
		t.Fatalf("assign from untracked source must freshen dst: %s", p)
	}
	if p.Tracked(7) {
		t.Error("the untracked source must stay untracked")
	}
}

func TestConsumeOfUntrackedIntroducesFresh(t *testing.T) {
	p := NewPartition()
	p.Apply(Consume(5, origin()), nil) // 5 never tracked
	if !p.Tracked(5) || !p.IsConsumed(5) {
		t.Fatalf("consume must introduce the element and consume its region: %s", p)
	}
}

func TestMergeWithUntrackedIntroducesFresh(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(Consume(0, origin()), nil)
	p.Apply(Merge(0, 7, origin()), nil) // 7 never tracked

	r0, _ := p.RegionOf(0)
	r7, ok := p.RegionOf(7)
	if !ok || r0 != r7 {
		t.Fatalf("merge must introduce the untracked side into the union: %s", p)
	}
	if !p.IsConsumed(7) {
		t.Error("the union keeps the consumed bit")
	}
}

func TestRequireOfUntrackedNeverFails(t *testing.T) {
	p := NewPartition()
	var failed []Elt
	hooks := &Hooks{Failure: func(_ Op, x Elt) { failed = append(failed, x) }}
	p.Apply(Require(9, origin()), hooks)

	if len(failed) != 0 {
		t.Fatalf("a freshly introduced element is not consumed: %v", failed)
	}
	if !p.Tracked(9) {
		t.Error("require must leave the element tracked")
	}
}

func TestRequireHook(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(Consume(0, origin()), nil)

	var failed []Elt
	hooks := &Hooks{Failure: func(_ Op, x Elt) { failed = append(failed, x) }}
	before := p.Clone()
	p.Apply(Require(0, origin()), hooks)

	if len(failed) != 1 || failed[0] != 0 {
		t.Fatalf("expected one failure on elt 0, got %v", failed)
	}
	if !p.Equal(before) {
		t.Error("require must not change the partition")
	}
}

func TestRequireSuppressedWithoutHooks(t *testing.T) {
	p := NewPartition()
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(Consume(0, origin()), nil)
	p.Apply(Require(0, origin()), nil) // must not panic
}

func TestConsumeNonConsumableHook(t *testing.T) {
	p := EntryPartition([]Elt{0, 1})

	var flagged []Elt
	hooks := &Hooks{
		NonConsumable:        func(x Elt) bool { return x == 0 },
		ConsumeNonConsumable: func(_ Op, x Elt) { flagged = append(flagged, x) },
	}

	p.Apply(Consume(0, origin()), hooks)
	if len(flagged) != 1 || flagged[0] != 0 {
		t.Fatalf("expected non-consumable callback for elt 0, got %v", flagged)
	}
	if !p.IsConsumed(1) {
		t.Error("the region is still marked consumed")
	}

	flagged = nil
	p2 := EntryPartition([]Elt{0, 1})
	p2.Apply(Consume(1, origin()), hooks)
	if len(flagged) != 0 {
		t.Errorf("consuming a consumable element must not flag: %v", flagged)
	}
}

func TestCanonicalEquality(t *testing.T) {
	// Same classes built in different op orders get different labels.
	p := NewPartition()
	p.Apply(AssignFresh(2, origin()), nil)
	p.Apply(AssignFresh(0, origin()), nil)
	p.Apply(AssignFresh(1, origin()), nil)
	p.Apply(Merge(0, 1, origin()), nil)

	q := NewPartition()
	q.Apply(AssignFresh(1, origin()), nil)
	q.Apply(AssignFresh(2, origin()), nil)
	q.Apply(AssignFresh(0, origin()), nil)
	q.Apply(Merge(1, 0, origin()), nil)

	if !p.Equal(q) {
		t.Fatalf("label-independent equality failed: %s vs %s", p, q)
	}

	q.Apply(Consume(2, origin()), nil)
	if p.Equal(q) {
		t.Fatal("consumed bits must participate in equality")
	}
}

func TestMembers(t *testing.T) {
	p := EntryPartition([]Elt{3, 1, 2})
	got := p.Members(2)
	want := []Elt{1, 2, 3}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("Members = %v, want %v", got, want)
	}
	if p.Members(9) != nil {
		t.Error("untracked element must have no members")
	}
}
