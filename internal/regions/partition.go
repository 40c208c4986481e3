package regions

import (
	"fmt"
	"slices"
	"strings"
)

// Partition maps tracked elements to region labels with a per-region
// consumed flag.
//
// Invariants: every tracked element has exactly one label; every label in
// use has a consumed entry; labels are never reused within one partition's
// lifetime (fresh is monotone).
type Partition struct {
	labels   map[Elt]Region
	consumed map[Region]bool
	fresh    Region
}

// NewPartition returns an empty partition.
func NewPartition() *Partition {
	return &Partition{
		labels:   make(map[Elt]Region),
		consumed: make(map[Region]bool),
	}
}

// EntryPartition builds the function-entry partition: all the given elements
// share one non-consumed region.
func EntryPartition(elts []Elt) *Partition {
	p := NewPartition()
	if len(elts) == 0 {
		return p
	}
	r := p.newRegion()
	for _, e := range elts {
		p.labels[e] = r
	}
	return p
}

func (p *Partition) newRegion() Region {
	r := p.fresh
	p.fresh++
	p.consumed[r] = false
	return r
}

// Clone returns an independent copy.
func (p *Partition) Clone() *Partition {
	q := &Partition{
		labels:   make(map[Elt]Region, len(p.labels)),
		consumed: make(map[Region]bool, len(p.consumed)),
		fresh:    p.fresh,
	}
	for e, r := range p.labels {
		q.labels[e] = r
	}
	for r, c := range p.consumed {
		q.consumed[r] = c
	}
	return q
}

// Tracked reports whether the element appears in the partition.
func (p *Partition) Tracked(x Elt) bool {
	_, ok := p.labels[x]
	return ok
}

// RegionOf returns the region label of a tracked element.
func (p *Partition) RegionOf(x Elt) (Region, bool) {
	r, ok := p.labels[x]
	return r, ok
}

// IsConsumed reports whether the element's region is consumed. Untracked
// elements are never consumed.
func (p *Partition) IsConsumed(x Elt) bool {
	r, ok := p.labels[x]
	return ok && p.consumed[r]
}

// Len returns the number of tracked elements.
func (p *Partition) Len() int {
	return len(p.labels)
}

// Elts returns all tracked elements in ascending order.
func (p *Partition) Elts() []Elt {
	out := make([]Elt, 0, len(p.labels))
	for e := range p.labels {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Members returns the sorted elements sharing x's region, including x.
// Returns nil for untracked elements.
func (p *Partition) Members(x Elt) []Elt {
	r, ok := p.labels[x]
	if !ok {
		return nil
	}
	var out []Elt
	for e, re := range p.labels {
		if re == r {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// drop removes x from its region; the consumed entry goes away with the
// region's last member.
func (p *Partition) drop(x Elt) {
	r, ok := p.labels[x]
	if !ok {
		return
	}
	delete(p.labels, x)
	for _, re := range p.labels {
		if re == r {
			return
		}
	}
	delete(p.consumed, r)
}

// Hooks receive transition-function callbacks during Apply. A nil Hooks (or
// nil individual callback) suppresses failures; the solver runs this way.
type Hooks struct {
	// Failure is invoked when Require hits a consumed region.
	Failure func(op Op, x Elt)
	// ConsumeNonConsumable is invoked when Consume targets an element from
	// the non-consumable set.
	ConsumeNonConsumable func(op Op, x Elt)
	// NonConsumable classifies elements whose consumption is itself an
	// error (function arguments).
	NonConsumable func(x Elt) bool
}

// ensure returns x's region, introducing x as a fresh singleton when it was
// never tracked. Values the translator could not attribute (results of
// unrecognized instructions reaching an operand position) show up this way;
// they behave like freshly allocated non-consumed values.
func (p *Partition) ensure(x Elt) Region {
	if r, ok := p.labels[x]; ok {
		return r
	}
	r := p.newRegion()
	p.labels[x] = r
	return r
}

// Apply executes one op against the partition in place.
//
// Operands never seen before are introduced as fresh singleton regions; no
// op sequence can make Apply panic.
func (p *Partition) Apply(op Op, hooks *Hooks) {
	switch op.Kind {
	case OpAssignFresh:
		p.drop(op.A)
		p.labels[op.A] = p.newRegion()

	case OpAssign:
		src, ok := p.labels[op.B]
		if !ok {
			// Source never tracked here: the assignment introduces dst fresh.
			p.drop(op.A)
			p.labels[op.A] = p.newRegion()
			return
		}
		if cur, ok := p.labels[op.A]; ok && cur == src {
			return
		}
		p.drop(op.A)
		p.labels[op.A] = src

	case OpMerge:
		ra := p.ensure(op.A)
		rb := p.ensure(op.B)
		if ra == rb {
			return
		}
		c := p.consumed[ra] || p.consumed[rb]
		for e, re := range p.labels {
			if re == rb {
				p.labels[e] = ra
			}
		}
		delete(p.consumed, rb)
		p.consumed[ra] = c

	case OpConsume:
		r := p.ensure(op.A)
		if hooks != nil && hooks.NonConsumable != nil && hooks.NonConsumable(op.A) {
			if hooks.ConsumeNonConsumable != nil {
				hooks.ConsumeNonConsumable(op, op.A)
			}
		}
		p.consumed[r] = true

	case OpRequire:
		r := p.ensure(op.A)
		if p.consumed[r] && hooks != nil && hooks.Failure != nil {
			hooks.Failure(op, op.A)
		}
	}
}

// ApplyAll folds a sequence of ops over the partition.
func (p *Partition) ApplyAll(ops []Op, hooks *Hooks) {
	for _, op := range ops {
		p.Apply(op, hooks)
	}
}

// canonical produces the label-independent form: regions sorted by their
// smallest member, members sorted, consumed bit attached.
type canonRegion struct {
	members  []Elt
	consumed bool
}

func (p *Partition) canonical() []canonRegion {
	byRegion := make(map[Region][]Elt, len(p.consumed))
	for e, r := range p.labels {
		byRegion[r] = append(byRegion[r], e)
	}
	out := make([]canonRegion, 0, len(byRegion))
	for r, members := range byRegion {
		slices.Sort(members)
		out = append(out, canonRegion{members: members, consumed: p.consumed[r]})
	}
	slices.SortFunc(out, func(a, b canonRegion) int {
		if a.members[0] < b.members[0] {
			return -1
		}
		if a.members[0] > b.members[0] {
			return 1
		}
		return 0
	})
	return out
}

// Equal compares two partitions up to region relabeling: identical tracked
// sets, identical equivalence classes, identical consumed bits.
func (p *Partition) Equal(q *Partition) bool {
	if p == nil || q == nil {
		return p == q
	}
	if len(p.labels) != len(q.labels) {
		return false
	}
	cp, cq := p.canonical(), q.canonical()
	if len(cp) != len(cq) {
		return false
	}
	for i := range cp {
		if cp[i].consumed != cq[i].consumed {
			return false
		}
		if !slices.Equal(cp[i].members, cq[i].members) {
			return false
		}
	}
	return true
}

// String renders the canonical form, marking consumed regions with '!'.
func (p *Partition) String() string {
	var b strings.Builder
	for _, cr := range p.canonical() {
		b.WriteByte('{')
		for i, e := range cr.members {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", e)
		}
		if cr.consumed {
			b.WriteByte('!')
		}
		b.WriteByte('}')
	}
	if b.Len() == 0 {
		return "{}"
	}
	return b.String()
}
