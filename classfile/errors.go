package classfile

import "errors"

// Container-level error kinds (§7 "IO/shape" and "Pool/reference" categories).
// Mirrors the package-level sentinel error style in vm.go
// (errProgramFinished, errSegmentationFault, ...) - one var per distinct
// failure kind, compared with errors.Is at call sites.
var (
	ErrUnexpectedEOF       = errors.New("unexpected end of file")
	ErrInvalidMagic        = errors.New("invalid magic number")
	ErrUnsupportedVersion  = errors.New("unsupported class file version")
	ErrCorruptedAttribute  = errors.New("corrupted attribute")
	ErrInvalidPoolIndex    = errors.New("invalid constant pool index")
	ErrUnexpectedPoolTag   = errors.New("unexpected constant pool entry tag")
	ErrInvalidFieldRef     = errors.New("invalid field reference")
	ErrInvalidMethodRef    = errors.New("invalid method reference")
)
