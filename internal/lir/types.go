package lir

type FuncID int32
type BlockID int32
type ValueID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoValueID ValueID = -1
)

// TermIndex is the InstrRef index that addresses a block terminator.
const TermIndex int32 = -1

// InstrRef addresses an instruction inside a function.
type InstrRef struct {
	Block BlockID
	Index int32
}

// NoInstrRef marks the absence of a defining instruction.
var NoInstrRef = InstrRef{Block: NoBlockID, Index: TermIndex}

func (r InstrRef) IsTerm() bool {
	return r.Index == TermIndex
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	// ConstInt represents an integer constant.
	ConstInt ConstKind = iota
	// ConstUint represents an unsigned integer constant.
	ConstUint
	// ConstFloat represents a float constant.
	ConstFloat
	// ConstBool represents a boolean constant.
	ConstBool
	// ConstString represents a string constant.
	ConstString
	// ConstUnit represents the unit constant.
	ConstUnit
)

// Const represents a literal payload.
type Const struct {
	Kind ConstKind

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

// CalleeKind distinguishes call target types.
type CalleeKind uint8

const (
	// CalleeFunc represents a direct call to a named function.
	CalleeFunc CalleeKind = iota
	// CalleeValue represents an indirect call through a value.
	CalleeValue
)

// Callee represents a call target.
type Callee struct {
	Kind  CalleeKind
	Name  string
	Value ValueID
}
