package rebuild

import "errors"

// Sentinel error kinds for the abstract-interpretation pass (§7
// "Bytecode/structure" category, method-scoped). A method-level error here
// becomes a Diagnostic and aborts only that method's reconstruction; it
// never aborts the whole class.
var (
	ErrStackUnderflow    = errors.New("operand stack underflow")
	ErrUnsupportedOpcode = errors.New("opcode not supported by the expression rebuilder")
	ErrUnresolvedPoolRef = errors.New("constant pool reference did not resolve to the expected entry kind")
	ErrBlockNotFound     = errors.New("successor block missing from control-flow graph")
	ErrStackMerge        = errors.New("operand stack height diverges across incoming control-flow edges")
)
