package cfg

import "errors"

// ErrEmptyMethod is returned when a method's instruction list is empty;
// there is no entry block to anchor a CFG on.
var ErrEmptyMethod = errors.New("cannot build a control-flow graph from an empty instruction list")
