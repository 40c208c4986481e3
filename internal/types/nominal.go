package types

import (
	"fmt"

	"fortio.org/safecast"

	"regionck/internal/source"
)

// NominalInfo stores metadata for a nominal (struct/class/enum) type.
type NominalInfo struct {
	Name       string
	Decl       source.Span
	ThreadSafe bool // declared conformance to the thread-safety marker protocol
	Reference  bool // reference semantics (class-like); value types copy on assign
}

// RegisterNominal allocates a nominal type slot and returns its TypeID.
func (in *Interner) RegisterNominal(info NominalInfo) TypeID {
	slot := in.appendNominalInfo(info)
	return in.internRaw(Type{Kind: KindNominal, Payload: slot})
}

// NominalInfo returns metadata for the provided nominal TypeID.
func (in *Interner) NominalInfo(typeID TypeID) (*NominalInfo, bool) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// SetNominalThreadSafe updates the declared thread-safety of a nominal type.
// Used when marker conformances are resolved after the type is registered.
func (in *Interner) SetNominalThreadSafe(typeID TypeID, safe bool) {
	info := in.nominalInfo(typeID)
	if info == nil {
		return
	}
	info.ThreadSafe = safe
}

func (in *Interner) nominalInfo(typeID TypeID) *NominalInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindNominal {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.nominals) {
		return nil
	}
	return &in.nominals[tt.Payload]
}

func (in *Interner) appendNominalInfo(info NominalInfo) uint32 {
	if in.nominals == nil {
		in.nominals = append(in.nominals, NominalInfo{})
	}
	in.nominals = append(in.nominals, info)
	slot, err := safecast.Conv[uint32](len(in.nominals) - 1)
	if err != nil {
		panic(fmt.Errorf("nominal info overflow: %w", err))
	}
	return slot
}
