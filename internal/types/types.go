package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindRawObject
	KindArray
	KindAddress
	KindFunction
	KindExistential
	KindNominal
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRawObject:
		return "rawobject"
	case KindArray:
		return "array"
	case KindAddress:
		return "address"
	case KindFunction:
		return "function"
	case KindExistential:
		return "existential"
	case KindNominal:
		return "nominal"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// ArrayDynamicLength marks arrays with unknown compile-time length.
const ArrayDynamicLength = ^uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for arrays (ArrayDynamicLength means dynamic)
	Width   Width  // for numeric primitives
	Safe    bool   // for functions/existentials declared thread-safe
	Payload uint32 // side-table slot for nominals and tuples
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width (WidthAny for "int").
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes an array of element type. Use ArrayDynamicLength for
// arrays whose length is not known statically.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeAddress describes the address of a value of element type. Address-typed
// values denote storage locations rather than the stored value itself.
func MakeAddress(elem TypeID) Type {
	return Type{Kind: KindAddress, Elem: elem}
}

// MakeFunction describes a function value. safe marks functions whose
// declaration carries the thread-safety annotation.
func MakeFunction(result TypeID, safe bool) Type {
	return Type{Kind: KindFunction, Elem: result, Safe: safe}
}

// MakeExistential describes an existential (protocol-typed) value. safe marks
// compositions that include the thread-safety marker protocol.
func MakeExistential(safe bool) Type {
	return Type{Kind: KindExistential, Safe: safe}
}
