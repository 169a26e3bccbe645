package bytecode

import "errors"

// Sentinel error kinds for the linear decode pass (§7 "Bytecode/structure"
// category). Mirrors the package-level sentinel error style in
// gvm/vm/vm.go (errIllegalOperation, errUnknownInstruction, ...).
var (
	ErrUnknownOpcode          = errors.New("unknown opcode")
	ErrTruncatedInstruction   = errors.New("truncated instruction")
	ErrInvalidBranchTarget    = errors.New("branch target outside code bounds")
	ErrUnalignedSwitchPadding = errors.New("non-zero tableswitch/lookupswitch padding")
	ErrMalformedSwitch        = errors.New("malformed switch instruction")
	ErrMalformedDescriptor    = errors.New("malformed method or field descriptor")
)
