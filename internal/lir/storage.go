package lir

// Storage describes the root of an address computation.
type Storage struct {
	// Root is the value the address chain bottoms out at.
	Root ValueID
	// UniquelyIdentified is true when the root provably names storage no
	// other value aliases (fresh stack slots and boxes).
	UniquelyIdentified bool
}

// FindAccessStorage walks the defining chain of an address-typed value down
// to the storage it designates.
//
// Projections and access markers are transparent. Reference projections stop
// the walk at the reference itself: class storage is reachable through every
// copy of the reference, so it is never uniquely identified. Addresses coming
// in as parameters or through raw pointers may alias anything.
func FindAccessStorage(f *Func, addr ValueID) Storage {
	v := addr
	for {
		val := f.Value(v)
		if val == nil {
			return Storage{Root: v}
		}
		if val.Kind != ValueResult {
			// Parameter or block parameter: caller-controlled storage.
			return Storage{Root: v}
		}
		def := f.InstrAt(val.Def)
		if def == nil {
			return Storage{Root: v}
		}

		switch def.Kind {
		case InstrAllocStack, InstrAllocBox:
			return Storage{Root: v, UniquelyIdentified: true}

		case InstrRefElementAddr, InstrRefTailAddr:
			// The projected storage belongs to the class instance.
			return Storage{Root: def.Operands[0]}

		case InstrPointerToAddress:
			return Storage{Root: v}

		case InstrProjectBox,
			InstrStructElementAddr, InstrTupleElementAddr,
			InstrBeginAccess, InstrBeginBorrow,
			InstrCopyValue, InstrMoveValue,
			InstrUpcast, InstrRefCast,
			InstrInitExistentialAddr, InstrOpenExistentialAddr,
			InstrIndexAddr:
			if len(def.Operands) == 0 {
				return Storage{Root: v}
			}
			v = def.Operands[0]

		default:
			return Storage{Root: v}
		}
	}
}
