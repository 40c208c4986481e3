package lir

import (
	"fmt"

	"regionck/internal/source"
)

// InstrKind enumerates instruction kinds in LIR.
type InstrKind uint8

const (
	// InstrNop represents a no-op instruction.
	InstrNop InstrKind = iota

	// Fresh producers: each allocates or materializes a brand-new value.

	// InstrAllocStack allocates a stack slot and yields its address.
	InstrAllocStack
	// InstrAllocBox allocates a heap box and yields the box value.
	InstrAllocBox
	// InstrAllocRef allocates a class instance and yields the reference.
	InstrAllocRef
	// InstrLiteral materializes a constant.
	InstrLiteral
	// InstrFunctionRef yields a reference to a named function.
	InstrFunctionRef
	// InstrMethodRef yields a reference to a class method.
	InstrMethodRef

	// Value forwarding: the result stands for the operand.

	// InstrCopyValue copies a value, retaining identity for aliasing purposes.
	InstrCopyValue
	// InstrMoveValue moves a value.
	InstrMoveValue
	// InstrBeginBorrow begins a borrow scope over the operand.
	InstrBeginBorrow
	// InstrBeginAccess begins a formal access to an address.
	InstrBeginAccess
	// InstrLoad loads the value stored at an address.
	InstrLoad
	// InstrUpcast converts a reference to a supertype reference.
	InstrUpcast
	// InstrRefCast reinterprets one reference type as another.
	InstrRefCast
	// InstrConvertFunction converts between function representations.
	InstrConvertFunction
	// InstrAddressToPointer erases an address into a raw pointer.
	InstrAddressToPointer
	// InstrPointerToAddress reinterprets a raw pointer as an address.
	InstrPointerToAddress
	// InstrInitExistentialAddr prepares existential storage for a concrete value.
	InstrInitExistentialAddr
	// InstrOpenExistentialAddr opens existential storage.
	InstrOpenExistentialAddr

	// Projections: the result designates a component of the operand.

	// InstrStructExtract projects a field out of a struct value.
	InstrStructExtract
	// InstrTupleExtract projects an element out of a tuple value.
	InstrTupleExtract
	// InstrStructElementAddr projects a field address out of a struct address.
	InstrStructElementAddr
	// InstrTupleElementAddr projects an element address out of a tuple address.
	InstrTupleElementAddr
	// InstrRefElementAddr projects a stored-property address out of a reference.
	InstrRefElementAddr
	// InstrRefTailAddr projects the tail-allocated storage of a reference.
	InstrRefTailAddr
	// InstrProjectBox projects the payload address of a box.
	InstrProjectBox
	// InstrIndexAddr offsets an address by an index.
	InstrIndexAddr
	// InstrDestructureTuple splits a tuple value into its elements.
	InstrDestructureTuple

	// Memory.

	// InstrStore writes a value into an address: store operand0 to operand1.
	InstrStore
	// InstrCopyAddr copies storage: copy_addr operand0 to operand1.
	InstrCopyAddr

	// Calls.

	// InstrApply calls a function. Crosses marks calls whose callee runs in a
	// different isolation domain.
	InstrApply
	// InstrPartialApply captures operands into a closure value.
	InstrPartialApply

	// Lifetime bookkeeping. These never affect region assignment.

	// InstrEndBorrow ends a borrow scope.
	InstrEndBorrow
	// InstrEndAccess ends a formal access.
	InstrEndAccess
	// InstrDestroyValue destroys a value.
	InstrDestroyValue
	// InstrDestroyAddr destroys the value stored at an address.
	InstrDestroyAddr
	// InstrDeallocStack frees a stack slot.
	InstrDeallocStack
	// InstrDeallocBox frees a heap box.
	InstrDeallocBox
	// InstrDebugValue attaches debug info to a value.
	InstrDebugValue
	// InstrCondFail traps when the operand is true.
	InstrCondFail

	numInstrKinds
)

func (k InstrKind) String() string {
	switch k {
	case InstrNop:
		return "nop"
	case InstrAllocStack:
		return "alloc_stack"
	case InstrAllocBox:
		return "alloc_box"
	case InstrAllocRef:
		return "alloc_ref"
	case InstrLiteral:
		return "literal"
	case InstrFunctionRef:
		return "function_ref"
	case InstrMethodRef:
		return "method_ref"
	case InstrCopyValue:
		return "copy_value"
	case InstrMoveValue:
		return "move_value"
	case InstrBeginBorrow:
		return "begin_borrow"
	case InstrBeginAccess:
		return "begin_access"
	case InstrLoad:
		return "load"
	case InstrUpcast:
		return "upcast"
	case InstrRefCast:
		return "ref_cast"
	case InstrConvertFunction:
		return "convert_function"
	case InstrAddressToPointer:
		return "address_to_pointer"
	case InstrPointerToAddress:
		return "pointer_to_address"
	case InstrInitExistentialAddr:
		return "init_existential_addr"
	case InstrOpenExistentialAddr:
		return "open_existential_addr"
	case InstrStructExtract:
		return "struct_extract"
	case InstrTupleExtract:
		return "tuple_extract"
	case InstrStructElementAddr:
		return "struct_element_addr"
	case InstrTupleElementAddr:
		return "tuple_element_addr"
	case InstrRefElementAddr:
		return "ref_element_addr"
	case InstrRefTailAddr:
		return "ref_tail_addr"
	case InstrProjectBox:
		return "project_box"
	case InstrIndexAddr:
		return "index_addr"
	case InstrDestructureTuple:
		return "destructure_tuple"
	case InstrStore:
		return "store"
	case InstrCopyAddr:
		return "copy_addr"
	case InstrApply:
		return "apply"
	case InstrPartialApply:
		return "partial_apply"
	case InstrEndBorrow:
		return "end_borrow"
	case InstrEndAccess:
		return "end_access"
	case InstrDestroyValue:
		return "destroy_value"
	case InstrDestroyAddr:
		return "destroy_addr"
	case InstrDeallocStack:
		return "dealloc_stack"
	case InstrDeallocBox:
		return "dealloc_box"
	case InstrDebugValue:
		return "debug_value"
	case InstrCondFail:
		return "cond_fail"
	default:
		return fmt.Sprintf("InstrKind(%d)", uint8(k))
	}
}

// Instr represents a LIR instruction.
type Instr struct {
	Kind     InstrKind
	Operands []ValueID
	Results  []ValueID
	Span     source.Span

	// Const is the payload for InstrLiteral.
	Const Const
	// Callee is the payload for InstrApply and InstrPartialApply.
	Callee Callee
	// Crosses marks InstrApply calls into a different isolation domain.
	Crosses bool
	// Field is the element index for projection instructions.
	Field uint32
}
