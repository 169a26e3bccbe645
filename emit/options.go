package emit

import "strings"

// BraceStyle selects where an opening brace lands relative to its header
// line, per §4.8's CodeGenOptions.
type BraceStyle int

const (
	SameLine BraceStyle = iota // if (cond) {
	NextLine                   // if (cond)\n{
)

func (b BraceStyle) String() string {
	if b == NextLine {
		return "next-line"
	}
	return "same-line"
}

// Options mirrors §4.8's CodeGenOptions record: indent size, tabs-vs-spaces,
// a soft line-length hint the printer does not hard-wrap on (advisory only,
// per spec), and brace placement.
type Options struct {
	IndentSize    int
	UseTabs       bool
	MaxLineLength int
	BraceStyle    BraceStyle
}

// DefaultOptions returns the printer's out-of-the-box configuration.
func DefaultOptions() Options {
	return Options{IndentSize: 4, UseTabs: false, MaxLineLength: 100, BraceStyle: SameLine}
}

func (o Options) indentUnit() string {
	if o.UseTabs {
		return "\t"
	}
	return strings.Repeat(" ", o.IndentSize)
}
