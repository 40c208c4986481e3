package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// LIR module validation
	IRInfo             Code = 1000
	IRUnknownValue     Code = 1001
	IREmptyFunction    Code = 1002
	IRMissingTerm      Code = 1003
	IRBadSuccessor     Code = 1004
	IROperandArity     Code = 1005
	IRResultArity      Code = 1006
	IRDuplicateDef     Code = 1007
	IRUnreachableBlock Code = 1008
	IRBadEntryArg      Code = 1009
	IRUnknownKind      Code = 1010
	IRInvalidModule    Code = 1011

	// Region analysis (резервируем)
	RaceInfo               Code = 3000
	RaceSendYieldsRace     Code = 3001
	RacePossibleRacyAccess Code = 3002
	RaceSendIsolatedRegion Code = 3003

	// Ошибки I/O
	IOLoadFileError    Code = 4001
	IODecodeModule     Code = 4002
	IOCacheReadFailed  Code = 4003
	IOCacheWriteFailed Code = 4004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:        "Unknown error",
		IRInfo:             "IR information",
		IRUnknownValue:     "Operand references an undefined value",
		IREmptyFunction:    "Function has no blocks",
		IRMissingTerm:      "Block has no terminator",
		IRBadSuccessor:     "Terminator targets an unknown block",
		IROperandArity:     "Instruction has wrong operand count",
		IRResultArity:      "Instruction has wrong result count",
		IRDuplicateDef:     "Value is defined more than once",
		IRUnreachableBlock: "Block is unreachable from entry",
		IRBadEntryArg:      "Argument value is not owned by the entry block",
		IRUnknownKind:      "Unknown instruction kind",
		IRInvalidModule:    "Module failed structural validation",

		RaceInfo:               "Region analysis information",
		RaceSendYieldsRace:     "Sending value risks a data race with later accesses",
		RacePossibleRacyAccess: "Access to a value after it was sent may race",
		RaceSendIsolatedRegion: "Cannot send value in the same region as an isolated argument",

		IOLoadFileError:    "I/O load file error",
		IODecodeModule:     "Failed to decode serialized module",
		IOCacheReadFailed:  "Failed to read analysis cache",
		IOCacheWriteFailed: "Failed to write analysis cache",

		ObsInfo:    "Observability information",
		ObsTimings: "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RACE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
