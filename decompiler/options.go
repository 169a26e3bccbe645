package decompiler

import "jdec/emit"

// Format selects the CodeGenerator's output shape, per §6's CLI surface.
type Format int

const (
	Java Format = iota
	Pseudocode
	JSONAST
)

// Options bundles every pipeline toggle §6's CLI exposes, following the
// teacher's NewVirtualMachine pattern (a plain struct plus a constructor
// with sane defaults) rather than a config-file loader - per §5/AMBIENT
// STACK, this system has no persistent configuration beyond CLI flags.
type Options struct {
	Format       Format
	NoOptimize   bool
	CodeGen      emit.Options
}

// DefaultOptions mirrors emit.DefaultOptions, plus optimization left on and
// java-format output.
func DefaultOptions() Options {
	return Options{Format: Java, CodeGen: emit.DefaultOptions()}
}
