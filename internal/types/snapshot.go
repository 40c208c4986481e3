package types

import "slices"

// Snapshot is a serializable image of an interner. TypeIDs remain valid
// across a snapshot round-trip because the descriptor tables are positional.
type Snapshot struct {
	Types    []Type
	Nominals []NominalInfo
	Tuples   []TupleInfo
}

// Snapshot exports the interner tables.
func (in *Interner) Snapshot() Snapshot {
	return Snapshot{
		Types:    slices.Clone(in.types),
		Nominals: slices.Clone(in.nominals),
		Tuples:   slices.Clone(in.tuples),
	}
}

// FromSnapshot rebuilds an interner from exported tables.
func FromSnapshot(s Snapshot) *Interner {
	in := NewInterner()
	// The snapshot always starts with the same builtin prefix NewInterner
	// seeds, so replay only the tail.
	for i := len(in.types); i < len(s.Types); i++ {
		in.internRaw(s.Types[i])
	}
	in.nominals = slices.Clone(s.Nominals)
	in.tuples = slices.Clone(s.Tuples)
	if len(in.nominals) == 0 {
		in.nominals = append(in.nominals, NominalInfo{})
	}
	if len(in.tuples) == 0 {
		in.tuples = append(in.tuples, TupleInfo{})
	}
	return in
}
