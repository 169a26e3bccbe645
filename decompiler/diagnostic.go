package decompiler

import "fmt"

// Level is a diagnostic's severity, per §7's Diagnostic{level,...}.
type Level int

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic records one per-method recoverable problem, per §7's policy:
// "Per-method errors... are recorded as Diagnostic{level, message,
// {method_name, pc, line?}} and the method is emitted in a degraded form."
type Diagnostic struct {
	Level      Level
	Message    string
	MethodName string
	PC         int // -1 when not applicable
	Line       int // -1 when no LineNumberTable entry covers PC
}

func (d Diagnostic) String() string {
	if d.PC < 0 {
		return fmt.Sprintf("[%s] %s: %s", d.Level, d.MethodName, d.Message)
	}
	if d.Line >= 0 {
		return fmt.Sprintf("[%s] %s (pc=%d line=%d): %s", d.Level, d.MethodName, d.PC, d.Line, d.Message)
	}
	return fmt.Sprintf("[%s] %s (pc=%d): %s", d.Level, d.MethodName, d.PC, d.Message)
}

func newDiagnostic(level Level, method string, pc int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Level:      level,
		Message:    fmt.Sprintf(format, args...),
		MethodName: method,
		PC:         pc,
		Line:       -1,
	}
}
