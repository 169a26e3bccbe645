package emit

import (
	"encoding/json"

	"jdec/ast"
)

// DumpJSON renders the subtree rooted at id as indented JSON, the json-ast
// output format. It bypasses Printer entirely and goes straight through
// ast.Arena.Dump, since a structural dump has no brace-style or indent-unit
// concerns - those are Options.Print-only knobs.
func DumpJSON(arena *ast.Arena, id ast.NodeID) ([]byte, error) {
	return json.MarshalIndent(arena.Dump(id), "", "  ")
}
