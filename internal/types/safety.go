package types

// IsThreadSafe reports whether values of the given type may cross an
// isolation boundary without risking shared mutable state.
//
// The raw platform object type is never thread-safe, regardless of any
// declared conformance: it is an untyped reference into managed memory and
// the checker cannot see what it aliases.
func (in *Interner) IsThreadSafe(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindUnit, KindBool, KindInt, KindUint, KindFloat, KindString:
		return true
	case KindRawObject:
		return false
	case KindAddress:
		// Address-ness is a storage property; safety is decided by the
		// pointee type.
		return in.IsThreadSafe(tt.Elem)
	case KindArray:
		return in.IsThreadSafe(tt.Elem)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, elem := range info.Elems {
			if !in.IsThreadSafe(elem) {
				return false
			}
		}
		return true
	case KindFunction, KindExistential:
		return tt.Safe
	case KindNominal:
		info, ok := in.NominalInfo(id)
		if !ok {
			return false
		}
		return info.ThreadSafe
	default:
		return false
	}
}
