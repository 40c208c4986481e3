package sendcheck

import (
	"fortio.org/safecast"

	"regionck/internal/lir"
	"regionck/internal/regions"
)

// registry assigns dense element IDs to canonical values on first encounter
// and keeps the reverse table for diagnostics. Argument elements are marked
// non-consumable: a value participating in the function signature must never
// be sent out of the caller's region.
type registry struct {
	elts map[lir.ValueID]regions.Elt
	vals []lir.ValueID
	args map[regions.Elt]struct{}
}

func newRegistry() *registry {
	return &registry{
		elts: make(map[lir.ValueID]regions.Elt),
		args: make(map[regions.Elt]struct{}),
	}
}

// elt returns the element for a canonical value, allocating one on first use.
func (r *registry) elt(v lir.ValueID) regions.Elt {
	if e, ok := r.elts[v]; ok {
		return e
	}
	e := regions.Elt(safecast.MustConvert[uint32](len(r.vals)))
	r.elts[v] = e
	r.vals = append(r.vals, v)
	return e
}

// lookup returns the element for a canonical value without allocating.
func (r *registry) lookup(v lir.ValueID) (regions.Elt, bool) {
	e, ok := r.elts[v]
	return e, ok
}

// value returns the canonical value an element was assigned for.
func (r *registry) value(e regions.Elt) lir.ValueID {
	if int(e) >= len(r.vals) {
		return lir.NoValueID
	}
	return r.vals[e]
}

func (r *registry) markArg(e regions.Elt) {
	r.args[e] = struct{}{}
}

func (r *registry) isArg(e regions.Elt) bool {
	_, ok := r.args[e]
	return ok
}
